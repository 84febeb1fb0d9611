package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/ratelimit"
)

// geminiScoringRepository answers the classification questions with the
// Google Gemini API via strict-JSON prompts.
type geminiScoringRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiScoringRepository creates a ScoringRepository backed by Gemini.
func NewGeminiScoringRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (ScoringRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiScoringRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiScoringRepository) ClassifyHeadline(ctx context.Context, headline string) (*dto.ClassifyResponse, error) {
	var out dto.ClassifyResponse
	if err := r.generateJSON(ctx, BuildClassifyHeadlinePrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *geminiScoringRepository) ClassifyRoutineOperation(ctx context.Context, headline, ticker string, tickerCtx *entity.TickerContext) (*dto.RoutineOperationResult, error) {
	var out dto.RoutineOperationResult
	if err := r.generateJSON(ctx, BuildRoutineOperationPrompt(headline, ticker, tickerCtx), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *geminiScoringRepository) DetectQuantitativeCatalyst(ctx context.Context, headline string) (*dto.QuantitativeCatalystResponse, error) {
	var out dto.QuantitativeCatalystResponse
	if err := r.generateJSON(ctx, BuildQuantitativeCatalystPrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *geminiScoringRepository) DetectStrategicCatalyst(ctx context.Context, headline string) (*dto.StrategicCatalystResponse, error) {
	var out dto.StrategicCatalystResponse
	if err := r.generateJSON(ctx, BuildStrategicCatalystPrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *geminiScoringRepository) generateJSON(ctx context.Context, prompt string, result interface{}) error {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: count tokens: %v", ErrScoringUnavailable, err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(tokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("Gemini request failed", logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	return parseModelJSON(resp.Text(), result)
}

// parseModelJSON strips the markdown fences models wrap around JSON output
// and unmarshals the remainder.
func parseModelJSON(raw string, result interface{}) error {
	jsonString := strings.TrimSpace(raw)
	jsonString = strings.Trim(jsonString, "`json\n`")
	if jsonString == "" {
		return fmt.Errorf("%w: empty model response", ErrScoringUnavailable)
	}
	if err := json.Unmarshal([]byte(jsonString), result); err != nil {
		return fmt.Errorf("%w: unmarshal model response: %v", ErrScoringUnavailable, err)
	}
	return nil
}
