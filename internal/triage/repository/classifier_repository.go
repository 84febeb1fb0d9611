package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
)

// classifierScoringRepository talks to the external classification service
// over HTTP. Responses are cached because the oracle is pure: identical
// inputs inside the TTL are served from memory.
type classifierScoringRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	cache          *cache.Cache
}

// NewClassifierScoringRepository creates a ScoringRepository backed by the
// external classification service.
func NewClassifierScoringRepository(cfg *config.Config, log *logger.Logger) ScoringRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Classifier.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &classifierScoringRepository{
		client: &http.Client{
			Timeout: cfg.Classifier.Timeout,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		cache:          cache.New(cfg.Classifier.CacheTTL, 2*cfg.Classifier.CacheTTL),
	}
}

// ClassifyHeadline answers the opinion question for a headline.
func (r *classifierScoringRepository) ClassifyHeadline(ctx context.Context, headline string) (*dto.ClassifyResponse, error) {
	cacheKey := "classify|" + headline
	if v, found := r.cache.Get(cacheKey); found {
		resp := v.(dto.ClassifyResponse)
		return &resp, nil
	}

	var out dto.ClassifyResponse
	if err := r.post(ctx, "/classify", dto.ClassifyRequest{Headline: headline}, &out); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, out, cache.DefaultExpiration)
	return &out, nil
}

// ClassifyRoutineOperation answers the routine question for one ticker. The
// wire interface is fixed and carries no entity context, so the ticker
// context parameter is unused here. A single-element ticker list is sent per
// call so each sub-query carries its own timeout.
func (r *classifierScoringRepository) ClassifyRoutineOperation(ctx context.Context, headline, ticker string, _ *entity.TickerContext) (*dto.RoutineOperationResult, error) {
	cacheKey := "routine|" + ticker + "|" + headline
	if v, found := r.cache.Get(cacheKey); found {
		resp := v.(dto.RoutineOperationResult)
		return &resp, nil
	}

	var out dto.RoutineOperationsResponse
	req := dto.RoutineOperationsRequest{Headline: headline, TickerSymbols: []string{ticker}}
	if err := r.post(ctx, "/routine-operations", req, &out); err != nil {
		return nil, err
	}

	// A ticker missing from the response map is "no determination", which
	// aggregation treats as material.
	result, ok := out.RoutineOperationsByTicker[ticker]
	if !ok {
		r.logger.Warn("Ticker missing from routine-operations response", logger.StringField("ticker", ticker))
		result = dto.RoutineOperationResult{}
	}

	r.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return &result, nil
}

// DetectQuantitativeCatalyst answers the quantitative catalyst question.
func (r *classifierScoringRepository) DetectQuantitativeCatalyst(ctx context.Context, headline string) (*dto.QuantitativeCatalystResponse, error) {
	cacheKey := "quantitative|" + headline
	if v, found := r.cache.Get(cacheKey); found {
		resp := v.(dto.QuantitativeCatalystResponse)
		return &resp, nil
	}

	var out dto.QuantitativeCatalystResponse
	if err := r.post(ctx, "/detect-quantitative-catalyst", dto.QuantitativeCatalystRequest{Headline: headline}, &out); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, out, cache.DefaultExpiration)
	return &out, nil
}

// DetectStrategicCatalyst answers the strategic catalyst question.
func (r *classifierScoringRepository) DetectStrategicCatalyst(ctx context.Context, headline string) (*dto.StrategicCatalystResponse, error) {
	cacheKey := "strategic|" + headline
	if v, found := r.cache.Get(cacheKey); found {
		resp := v.(dto.StrategicCatalystResponse)
		return &resp, nil
	}

	var out dto.StrategicCatalystResponse
	if err := r.post(ctx, "/detect-strategic-catalyst", dto.StrategicCatalystRequest{Headline: headline}, &out); err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, out, cache.DefaultExpiration)
	return &out, nil
}

func (r *classifierScoringRepository) post(ctx context.Context, path string, payload, v interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Classifier.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, r.cfg.Classifier.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		// Caller cancellation is not an oracle outage.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("Classifier request failed", logger.StringField("path", path), logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		r.logger.Error("Classifier returned non-OK status", logger.IntField("status", resp.StatusCode), logger.StringField("path", path))
		return fmt.Errorf("%w: status %d - %s", ErrScoringUnavailable, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		r.logger.Error("Failed to decode classifier response", logger.StringField("path", path), logger.ErrorField(err))
		return fmt.Errorf("%w: decode response: %v", ErrScoringUnavailable, err)
	}
	return nil
}
