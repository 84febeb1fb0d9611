package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
)

// EntityStore serves ticker context lookups for the pipeline and alias
// matching for the feed ingestor. It holds an in-memory snapshot built from
// config entries merged with database rows; database rows win.
type EntityStore interface {
	Get(ticker string) *entity.TickerContext
	MatchTickers(text string) []string
	Reload(ctx context.Context) error
	Size() int
}

type entityStore struct {
	cfg  *config.Config
	log  *logger.Logger
	repo repository.TickerContextRepository

	mu       sync.RWMutex
	contexts map[string]*entity.TickerContext
	matchers []tickerMatcher
}

type tickerMatcher struct {
	ticker   string
	patterns []*regexp.Regexp
}

// NewEntityStore creates an EntityStore seeded from config entries. Call
// Reload to merge in database rows.
func NewEntityStore(cfg *config.Config, log *logger.Logger, repo repository.TickerContextRepository) EntityStore {
	s := &entityStore{
		cfg:  cfg,
		log:  log,
		repo: repo,
	}
	s.apply(cfg.ContextEntities())
	return s
}

// Get returns the context for a ticker, or nil when none is known.
func (s *entityStore) Get(ticker string) *entity.TickerContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contexts[strings.ToUpper(strings.TrimSpace(ticker))]
}

// MatchTickers returns the tickers whose symbol, cashtag or aliases appear
// in the text.
func (s *entityStore) MatchTickers(text string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tickers []string
	for _, m := range s.matchers {
		for _, re := range m.patterns {
			if re.MatchString(text) {
				tickers = append(tickers, m.ticker)
				break
			}
		}
	}
	return tickers
}

// Reload rebuilds the snapshot from config entries merged with database rows.
func (s *entityStore) Reload(ctx context.Context) error {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ticker contexts: %w", err)
	}

	merged := make(map[string]entity.TickerContext)
	for _, e := range s.cfg.ContextEntities() {
		merged[e.Ticker] = e
	}
	for _, row := range rows {
		merged[strings.ToUpper(row.Ticker)] = row
	}

	entries := make([]entity.TickerContext, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	s.apply(entries)

	s.log.Info("Ticker contexts reloaded",
		logger.IntField("config_entries", len(s.cfg.ContextEntities())),
		logger.IntField("database_rows", len(rows)),
		logger.IntField("total", len(entries)))
	return nil
}

// Size returns the number of tickers in the current snapshot.
func (s *entityStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

func (s *entityStore) apply(entries []entity.TickerContext) {
	contexts := make(map[string]*entity.TickerContext, len(entries))
	matchers := make([]tickerMatcher, 0, len(entries))
	for i := range entries {
		e := entries[i]
		e.Ticker = strings.ToUpper(strings.TrimSpace(e.Ticker))
		if e.Ticker == "" {
			continue
		}
		contexts[e.Ticker] = &e
		matchers = append(matchers, buildTickerMatcher(&e))
	}
	sort.Slice(matchers, func(i, j int) bool { return matchers[i].ticker < matchers[j].ticker })

	s.mu.Lock()
	s.contexts = contexts
	s.matchers = matchers
	s.mu.Unlock()
}

func buildTickerMatcher(e *entity.TickerContext) tickerMatcher {
	m := tickerMatcher{ticker: e.Ticker}

	// Cashtags always identify the ticker.
	m.patterns = append(m.patterns, regexp.MustCompile(`\$`+regexp.QuoteMeta(e.Ticker)+`\b`))

	// Bare symbols match in exact case only, and single-letter symbols not
	// at all. "T" and "A" collide with ordinary words.
	if len(e.Ticker) >= 2 {
		m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(e.Ticker)+`\b`))
	}

	names := append([]string{e.Name}, e.Aliases...)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m.patterns = append(m.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(name)+`\b`))
	}
	return m
}
