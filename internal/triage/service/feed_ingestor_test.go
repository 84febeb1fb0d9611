package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

type stubTriageService struct {
	mu        sync.Mutex
	published []*dto.StreamDataTriageRequest
	err       error
}

func (s *stubTriageService) ProcessTask(ctx context.Context)    {}
func (s *stubTriageService) ProcessRetries(ctx context.Context) {}
func (s *stubTriageService) FlushDigest()                       {}

func (s *stubTriageService) Evaluate(ctx context.Context, h *dto.Headline) (*dto.PipelineResult, error) {
	return nil, nil
}

func (s *stubTriageService) PublishRequest(ctx context.Context, req *dto.StreamDataTriageRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, req)
	return nil
}

func newTestIngestor(t *testing.T, triage TriageService) *feedIngestor {
	t.Helper()
	cfg := storeConfig()
	log := storeLogger(t)
	store := NewEntityStore(cfg, log, nil)
	return NewFeedIngestor(cfg, log, triage, store).(*feedIngestor)
}

func feedItem(title, link string, published time.Time) *gofeed.Item {
	p := published
	return &gofeed.Item{
		Title:           title,
		Link:            link,
		Published:       published.Format(time.RFC1123Z),
		PublishedParsed: &p,
	}
}

func TestCleanFeedTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain title unchanged",
			raw:  "Acme Wins $5M Defense Contract",
			want: "Acme Wins $5M Defense Contract",
		},
		{
			name: "markup stripped",
			raw:  "<b>Acme</b> Wins $5M Defense Contract",
			want: "Acme Wins $5M Defense Contract",
		},
		{
			name: "trailing publisher suffix dropped",
			raw:  "Acme Wins $5M Defense Contract - Benzinga",
			want: "Acme Wins $5M Defense Contract",
		},
		{
			name: "long trailing segment kept",
			raw:  "EchoStar - AT&T Deal Gets Regulatory Green Light Following Extended Review Period",
			want: "EchoStar - AT&T Deal Gets Regulatory Green Light Following Extended Review Period",
		},
		{
			name: "markup only becomes empty",
			raw:  "<img src=\"banner.png\"/>",
			want: "",
		},
		{
			name: "empty stays empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanFeedTitle(tt.raw))
		})
	}
}

func TestResolveTickers_UnionsStaticAndMatched(t *testing.T) {
	ingestor := newTestIngestor(t, &stubTriageService{})
	feedCfg := config.Feed{Name: "benzinga", Tickers: []string{"nvda"}}

	tickers := ingestor.resolveTickers(feedCfg, "AT&T Expands Fiber Footprint In Texas")

	assert.Equal(t, []string{"NVDA", "T"}, tickers)
}

func TestResolveTickers_Deduplicates(t *testing.T) {
	ingestor := newTestIngestor(t, &stubTriageService{})
	feedCfg := config.Feed{Name: "benzinga", Tickers: []string{"SATS"}}

	tickers := ingestor.resolveTickers(feedCfg, "EchoStar Announces Satellite Launch")

	assert.Equal(t, []string{"SATS"}, tickers)
}

func TestIngestItem_EnqueuesFreshItem(t *testing.T) {
	triage := &stubTriageService{}
	ingestor := newTestIngestor(t, triage)
	feedCfg := config.Feed{Name: "benzinga"}
	published := utils.TimeNowET().Add(-time.Hour)

	ok := ingestor.ingestItem(context.Background(), feedCfg, feedItem(
		"EchoStar To Sell Spectrum Licenses - Benzinga",
		"https://example.com/echostar-spectrum",
		published,
	))

	require.True(t, ok)
	require.Len(t, triage.published, 1)
	req := triage.published[0]
	assert.Equal(t, "EchoStar To Sell Spectrum Licenses", req.Headline)
	assert.Equal(t, "benzinga", req.Source)
	assert.Equal(t, []string{"SATS"}, req.Tickers)
	assert.Equal(t, published.Format(time.RFC3339), req.PublishedAt)
}

func TestIngestItem_SkipsSeenItem(t *testing.T) {
	triage := &stubTriageService{}
	ingestor := newTestIngestor(t, triage)
	feedCfg := config.Feed{Name: "benzinga"}
	item := feedItem("Acme Wins $5M Defense Contract", "https://example.com/acme", utils.TimeNowET().Add(-time.Hour))

	require.True(t, ingestor.ingestItem(context.Background(), feedCfg, item))
	assert.False(t, ingestor.ingestItem(context.Background(), feedCfg, item))
	assert.Len(t, triage.published, 1)
}

func TestIngestItem_SkipsStaleItem(t *testing.T) {
	triage := &stubTriageService{}
	ingestor := newTestIngestor(t, triage)
	feedCfg := config.Feed{Name: "benzinga"}

	ok := ingestor.ingestItem(context.Background(), feedCfg, feedItem(
		"Acme Wins $5M Defense Contract",
		"https://example.com/acme-old",
		utils.TimeNowET().Add(-72*time.Hour),
	))

	assert.False(t, ok)
	assert.Empty(t, triage.published)
}

func TestIngestItem_SkipsEmptyTitle(t *testing.T) {
	triage := &stubTriageService{}
	ingestor := newTestIngestor(t, triage)
	feedCfg := config.Feed{Name: "benzinga"}

	ok := ingestor.ingestItem(context.Background(), feedCfg, feedItem(
		"<img src=\"banner.png\"/>",
		"https://example.com/banner",
		utils.TimeNowET().Add(-time.Hour),
	))

	assert.False(t, ok)
	assert.Empty(t, triage.published)
}

func TestIngestItem_RetriesAfterPublishFailure(t *testing.T) {
	triage := &stubTriageService{err: errors.New("stream unavailable")}
	ingestor := newTestIngestor(t, triage)
	feedCfg := config.Feed{Name: "benzinga"}
	item := feedItem("Acme Wins $5M Defense Contract", "https://example.com/acme", utils.TimeNowET().Add(-time.Hour))

	require.False(t, ingestor.ingestItem(context.Background(), feedCfg, item))

	// A failed publish must not mark the item as seen.
	triage.err = nil
	require.True(t, ingestor.ingestItem(context.Background(), feedCfg, item))
	assert.Len(t, triage.published, 1)
}
