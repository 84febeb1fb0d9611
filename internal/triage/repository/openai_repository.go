package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
)

// openaiScoringRepository answers the classification questions with an
// OpenAI-compatible chat-completions API, same prompt contract as Gemini.
type openaiScoringRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	client         *openai.Client
	requestLimiter *rate.Limiter
}

// NewOpenAIScoringRepository creates a ScoringRepository backed by an
// OpenAI-compatible endpoint.
func NewOpenAIScoringRepository(cfg *config.Config, log *logger.Logger) ScoringRepository {
	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}

	maxPerMinute := cfg.OpenAI.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)

	return &openaiScoringRepository{
		cfg:            cfg,
		logger:         log,
		client:         openai.NewClientWithConfig(clientConfig),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *openaiScoringRepository) ClassifyHeadline(ctx context.Context, headline string) (*dto.ClassifyResponse, error) {
	var out dto.ClassifyResponse
	if err := r.generateJSON(ctx, BuildClassifyHeadlinePrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *openaiScoringRepository) ClassifyRoutineOperation(ctx context.Context, headline, ticker string, tickerCtx *entity.TickerContext) (*dto.RoutineOperationResult, error) {
	var out dto.RoutineOperationResult
	if err := r.generateJSON(ctx, BuildRoutineOperationPrompt(headline, ticker, tickerCtx), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *openaiScoringRepository) DetectQuantitativeCatalyst(ctx context.Context, headline string) (*dto.QuantitativeCatalystResponse, error) {
	var out dto.QuantitativeCatalystResponse
	if err := r.generateJSON(ctx, BuildQuantitativeCatalystPrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *openaiScoringRepository) DetectStrategicCatalyst(ctx context.Context, headline string) (*dto.StrategicCatalystResponse, error) {
	var out dto.StrategicCatalystResponse
	if err := r.generateJSON(ctx, BuildStrategicCatalystPrompt(headline), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *openaiScoringRepository) generateJSON(ctx context.Context, prompt string, result interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: r.cfg.OpenAI.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("OpenAI request failed", logger.StringField("model", r.cfg.OpenAI.Model), logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no response choices", ErrScoringUnavailable)
	}

	return parseModelJSON(resp.Choices[0].Message.Content, result)
}
