package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// ErrMalformedInput marks inputs the pipeline refuses to evaluate.
var ErrMalformedInput = errors.New("malformed headline input")

// TriagePipeline evaluates headlines through the staged relevance filter.
type TriagePipeline interface {
	Evaluate(ctx context.Context, h *dto.Headline) (*dto.PipelineResult, error)
}

type triagePipeline struct {
	cfg       *config.Config
	log       *logger.Logger
	scoring   repository.ScoringRepository
	overrides *override.Registry
	entities  EntityStore
}

// NewTriagePipeline creates a TriagePipeline.
func NewTriagePipeline(
	cfg *config.Config,
	log *logger.Logger,
	scoring repository.ScoringRepository,
	overrides *override.Registry,
	entities EntityStore,
) TriagePipeline {
	return &triagePipeline{
		cfg:       cfg,
		log:       log,
		scoring:   scoring,
		overrides: overrides,
		entities:  entities,
	}
}

// Evaluate runs the headline through the stages in order: opinion, routine
// operation, then the two catalyst stages concurrently. The first two stages
// can reject and short-circuit; the catalyst stages only rank. A scoring
// outage surfaces as an error, never as a verdict.
func (p *triagePipeline) Evaluate(ctx context.Context, h *dto.Headline) (*dto.PipelineResult, error) {
	text, tickers, err := normalizeHeadline(h)
	if err != nil {
		return nil, err
	}

	result := &dto.PipelineResult{
		EvaluationID:   uuid.New(),
		RejectionStage: dto.RejectionNone,
		EvaluatedAt:    utils.TimeNowET(),
	}

	if len(tickers) == 0 && p.cfg.Triage.TickerlessPolicy == config.TickerlessReject {
		result.RejectionStage = dto.RejectionTickerless
		p.log.Info("Headline rejected by tickerless policy",
			logger.StringField("evaluation_id", result.EvaluationID.String()))
		return result, nil
	}

	matches := p.overrides.Evaluate(text)

	opinionStage, err := p.runOpinionStage(ctx, text, matches)
	if err != nil {
		return nil, err
	}
	result.Stages = append(result.Stages, *opinionStage)
	if !opinionStage.Passed {
		result.RejectionStage = dto.RejectionOpinion
		return result, nil
	}

	// A tickerless headline under the headline_level policy skips the
	// routine stage entirely.
	materialTickers := []string{}
	if len(tickers) > 0 {
		routineStage, material, err := p.runRoutineStage(ctx, text, tickers, matches)
		if err != nil {
			return nil, err
		}
		result.Stages = append(result.Stages, *routineStage)
		if !routineStage.Passed {
			result.RejectionStage = dto.RejectionRoutine
			return result, nil
		}
		materialTickers = material
	}

	// The catalyst stages are independent of each other, so they run
	// concurrently.
	var (
		wg         sync.WaitGroup
		quantStage *dto.StageResult
		stratStage *dto.StageResult
		quantErr   error
		stratErr   error
	)
	wg.Add(2)
	utils.GoSafe(func() {
		defer wg.Done()
		quantStage, quantErr = p.runQuantitativeStage(ctx, text)
	})
	utils.GoSafe(func() {
		defer wg.Done()
		stratStage, stratErr = p.runStrategicStage(ctx, text)
	})
	wg.Wait()

	if quantErr != nil {
		return nil, quantErr
	}
	if stratErr != nil {
		return nil, stratErr
	}

	result.Stages = append(result.Stages, *quantStage, *stratStage)
	result.Accepted = true
	result.Recipe = selectRecipe(quantStage.Quantitative, stratStage.Strategic, materialTickers, matches)

	p.log.Info("Headline accepted",
		logger.StringField("evaluation_id", result.EvaluationID.String()),
		logger.StringField("recipe", result.Recipe.Recipe),
		logger.IntField("material_tickers", len(result.Recipe.MaterialTickers)))
	return result, nil
}

// selectRecipe picks the highest-priority recipe the stage outputs justify.
// Quantitative beats strategic beats pattern-based, regardless of relative
// confidences.
func selectRecipe(quant *dto.QuantitativeFields, strat *dto.StrategicFields, materialTickers []string, matches []override.Match) *dto.RecipeSelection {
	selection := &dto.RecipeSelection{
		Priority:           dto.PriorityPatternBased,
		Recipe:             dto.RecipePatternBased,
		MaterialTickers:    materialTickers,
		OverrideCategories: override.Categories(matches),
	}
	switch {
	case quant != nil && quant.HasQuantitativeCatalyst:
		selection.Priority = dto.PriorityQuantitative
		selection.Recipe = dto.RecipeQuantitativeCatalyst
	case strat != nil && strat.HasStrategicCatalyst:
		selection.Priority = dto.PriorityStrategic
		selection.Recipe = dto.RecipeStrategicCatalyst
	}
	return selection
}

func normalizeHeadline(h *dto.Headline) (string, []string, error) {
	if h == nil {
		return "", nil, fmt.Errorf("%w: headline is nil", ErrMalformedInput)
	}
	text := utils.SafeText(h.Text)
	if text == "" {
		return "", nil, fmt.Errorf("%w: headline text is empty", ErrMalformedInput)
	}

	seen := make(map[string]struct{}, len(h.Tickers))
	tickers := make([]string, 0, len(h.Tickers))
	for _, raw := range h.Tickers {
		t := strings.ToUpper(strings.TrimSpace(raw))
		if t == "" {
			return "", nil, fmt.Errorf("%w: blank ticker symbol", ErrMalformedInput)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	return text, tickers, nil
}
