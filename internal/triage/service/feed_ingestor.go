package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// Items older than this are not enqueued.
const maxHeadlineAge = 48 * time.Hour

// FeedIngestor polls configured RSS feeds and enqueues fresh headlines onto
// the triage request stream.
type FeedIngestor interface {
	Start(ctx context.Context) error
	Stop()
	PollFeed(ctx context.Context, feed config.Feed)
}

type feedIngestor struct {
	cfg      *config.Config
	log      *logger.Logger
	triage   TriageService
	entities EntityStore
	parser   *gofeed.Parser
	cron     *cron.Cron
	seen     *cache.Cache
}

// NewFeedIngestor creates a FeedIngestor.
func NewFeedIngestor(cfg *config.Config, log *logger.Logger, triage TriageService, entities EntityStore) FeedIngestor {
	return &feedIngestor{
		cfg:      cfg,
		log:      log,
		triage:   triage,
		entities: entities,
		parser:   gofeed.NewParser(),
		cron:     cron.New(),
		seen:     cache.New(maxHeadlineAge, 2*maxHeadlineAge),
	}
}

// Start schedules every configured feed on its cron expression.
func (f *feedIngestor) Start(ctx context.Context) error {
	if !f.cfg.Ingest.Enabled {
		f.log.Info("Feed ingestor disabled")
		return nil
	}

	for _, feed := range f.cfg.Ingest.Feeds {
		feed := feed
		if _, err := f.cron.AddFunc(feed.Cron, func() {
			pollCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			f.PollFeed(pollCtx, feed)
		}); err != nil {
			return fmt.Errorf("failed to schedule feed %s: %w", feed.Name, err)
		}
		f.log.Info("Feed scheduled",
			logger.StringField("feed", feed.Name),
			logger.StringField("cron", feed.Cron))
	}

	f.cron.Start()
	return nil
}

// Stop halts the schedule and waits for running polls to finish.
func (f *feedIngestor) Stop() {
	<-f.cron.Stop().Done()
}

// PollFeed fetches one feed and enqueues its unseen items.
func (f *feedIngestor) PollFeed(ctx context.Context, feedCfg config.Feed) {
	parsed, err := f.parser.ParseURLWithContext(feedCfg.URL, ctx)
	if err != nil {
		f.log.Error("Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("feed", feedCfg.Name))
		return
	}

	// Oldest first so downstream sees headlines in publication order.
	sort.Slice(parsed.Items, func(i, j int) bool {
		if parsed.Items[i].PublishedParsed == nil || parsed.Items[j].PublishedParsed == nil {
			return false
		}
		return parsed.Items[i].PublishedParsed.Before(*parsed.Items[j].PublishedParsed)
	})

	enqueued := 0
	for _, item := range parsed.Items {
		if !utils.ShouldContinue(ctx, f.log) {
			return
		}
		if f.ingestItem(ctx, feedCfg, item) {
			enqueued++
		}
	}

	f.log.Info("Feed polled",
		logger.StringField("feed", feedCfg.Name),
		logger.IntField("items", len(parsed.Items)),
		logger.IntField("enqueued", enqueued))
}

func (f *feedIngestor) ingestItem(ctx context.Context, feedCfg config.Feed, item *gofeed.Item) bool {
	hashIdentifier := md5.Sum([]byte(item.Link + "|" + item.Published))
	hashString := hex.EncodeToString(hashIdentifier[:])
	if _, found := f.seen.Get(hashString); found {
		return false
	}

	if item.PublishedParsed != nil && time.Since(*item.PublishedParsed) > maxHeadlineAge {
		return false
	}

	title := cleanFeedTitle(item.Title)
	if title == "" {
		return false
	}

	req := &dto.StreamDataTriageRequest{
		Headline: title,
		Tickers:  f.resolveTickers(feedCfg, title),
		Source:   feedCfg.Name,
	}
	if item.PublishedParsed != nil {
		req.PublishedAt = item.PublishedParsed.Format(time.RFC3339)
	}

	if err := f.triage.PublishRequest(ctx, req); err != nil {
		f.log.Error("Failed to enqueue headline", logger.ErrorField(err), logger.StringField("feed", feedCfg.Name))
		return false
	}

	f.seen.Set(hashString, struct{}{}, cache.DefaultExpiration)
	return true
}

// resolveTickers unions the feed's static tickers with symbols and aliases
// matched in the title.
func (f *feedIngestor) resolveTickers(feedCfg config.Feed, title string) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, t := range append(append([]string{}, feedCfg.Tickers...), f.entities.MatchTickers(title)...) {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	return tickers
}

// cleanFeedTitle strips markup some feeds embed in titles and drops the
// short trailing "- Publisher" suffix Google News style feeds append.
func cleanFeedTitle(raw string) string {
	text := raw
	if strings.Contains(raw, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	text = utils.SafeText(utils.CleanToValidUTF8(text))
	if idx := strings.LastIndex(text, " - "); idx > 0 && len(text)-idx < 40 {
		text = strings.TrimSpace(text[:idx])
	}
	return text
}
