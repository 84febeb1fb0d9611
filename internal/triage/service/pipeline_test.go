package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/config"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

type stubScoring struct {
	mu sync.Mutex

	classifyResp *dto.ClassifyResponse
	classifyErr  error
	routineResp  map[string]*dto.RoutineOperationResult
	routineErr   map[string]error
	quantResp    *dto.QuantitativeCatalystResponse
	quantErr     error
	stratResp    *dto.StrategicCatalystResponse
	stratErr     error

	classifyCalls int
	routineCalls  []string
}

func newStubScoring() *stubScoring {
	return &stubScoring{
		classifyResp: &dto.ClassifyResponse{
			TemporalCategory:  dto.TemporalPresent,
			OpinionConfidence: utils.ToPointer(0.1),
		},
		routineResp: map[string]*dto.RoutineOperationResult{},
		routineErr:  map[string]error{},
		quantResp:   &dto.QuantitativeCatalystResponse{},
		stratResp:   &dto.StrategicCatalystResponse{},
	}
}

func (s *stubScoring) setRoutine(ticker string, routine bool, confidence float64) {
	s.routineResp[ticker] = &dto.RoutineOperationResult{
		RoutineOperation:  utils.ToPointer(routine),
		RoutineConfidence: utils.ToPointer(confidence),
	}
}

func (s *stubScoring) ClassifyHeadline(ctx context.Context, headline string) (*dto.ClassifyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.classifyCalls++
	s.mu.Unlock()
	if s.classifyErr != nil {
		return nil, s.classifyErr
	}
	return s.classifyResp, nil
}

func (s *stubScoring) ClassifyRoutineOperation(ctx context.Context, headline, ticker string, _ *entity.TickerContext) (*dto.RoutineOperationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.routineCalls = append(s.routineCalls, ticker)
	s.mu.Unlock()
	if err, ok := s.routineErr[ticker]; ok {
		return nil, err
	}
	if resp, ok := s.routineResp[ticker]; ok {
		return resp, nil
	}
	return &dto.RoutineOperationResult{
		RoutineOperation:  utils.ToPointer(false),
		RoutineConfidence: utils.ToPointer(0.2),
	}, nil
}

func (s *stubScoring) DetectQuantitativeCatalyst(ctx context.Context, headline string) (*dto.QuantitativeCatalystResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.quantErr != nil {
		return nil, s.quantErr
	}
	return s.quantResp, nil
}

func (s *stubScoring) DetectStrategicCatalyst(ctx context.Context, headline string) (*dto.StrategicCatalystResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.stratErr != nil {
		return nil, s.stratErr
	}
	return s.stratResp, nil
}

func pipelineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Triage.OpinionThreshold = 0.5
	cfg.Triage.RoutineThreshold = 0.6
	cfg.Triage.MaxConcurrentScores = 4
	cfg.Triage.TickerlessPolicy = config.TickerlessHeadlineLevel
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config, scoring repository.ScoringRepository) TriagePipeline {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	reg, err := override.NewRegistry(true, nil)
	require.NoError(t, err)
	return NewTriagePipeline(cfg, log, scoring, reg, NewEntityStore(cfg, log, nil))
}

func stageByName(t *testing.T, result *dto.PipelineResult, name string) *dto.StageResult {
	t.Helper()
	for i := range result.Stages {
		if result.Stages[i].Stage == name {
			return &result.Stages[i]
		}
	}
	t.Fatalf("stage %s not found in result", name)
	return nil
}

func TestEvaluate_OpinionRejectionShortCircuits(t *testing.T) {
	scoring := newStubScoring()
	scoring.classifyResp = &dto.ClassifyResponse{
		IsOpinion:         true,
		TemporalCategory:  dto.TemporalUnknown,
		OpinionConfidence: utils.ToPointer(0.9),
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Why This Fund Manager Loves Small Caps",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionOpinion, result.RejectionStage)
	require.Len(t, result.Stages, 1)
	assert.Equal(t, dto.ReasonOpinionContent, result.Stages[0].ReasonCode)
	assert.Nil(t, result.Recipe)
	assert.Empty(t, scoring.routineCalls)
}

func TestEvaluate_OpinionThresholdIsInclusive(t *testing.T) {
	scoring := newStubScoring()
	scoring.classifyResp = &dto.ClassifyResponse{
		IsOpinion:         true,
		TemporalCategory:  dto.TemporalUnknown,
		OpinionConfidence: utils.ToPointer(0.5),
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Three Stocks That Could Shine",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionOpinion, result.RejectionStage)
}

func TestEvaluate_FarFutureRejectsDespiteForceNonOpinion(t *testing.T) {
	// The headline matches the earnings_release force_non_opinion rule, which
	// only suppresses the confidence rejection.
	scoring := newStubScoring()
	scoring.classifyResp = &dto.ClassifyResponse{
		IsOpinion:         true,
		TemporalCategory:  dto.TemporalFutureFar,
		FarFutureForecast: true,
		OpinionConfidence: utils.ToPointer(0.9),
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Reports Third Quarter Revenue Up 12%, EPS Beats Estimates",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionOpinion, result.RejectionStage)
	require.Len(t, result.Stages, 1)
	assert.Equal(t, dto.ReasonFarFutureForecast, result.Stages[0].ReasonCode)
}

func TestEvaluate_ForceNonOpinionSuppressesScoreRejection(t *testing.T) {
	scoring := newStubScoring()
	scoring.classifyResp = &dto.ClassifyResponse{
		IsOpinion:         true,
		TemporalCategory:  dto.TemporalPresent,
		OpinionConfidence: utils.ToPointer(0.9),
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Reports Third Quarter Revenue Up 12%, EPS Beats Estimates",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.True(t, stageByName(t, result, dto.StageOpinion).Passed)
}

func TestEvaluate_AllTickersRoutineRejects(t *testing.T) {
	scoring := newStubScoring()
	scoring.setRoutine("ACME", true, 0.9)
	scoring.setRoutine("BETA", true, 0.8)
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme And Beta Open New Regional Sales Offices",
		Tickers: []string{"ACME", "BETA"},
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionRoutine, result.RejectionStage)
	require.Len(t, result.Stages, 2)
	routineStage := stageByName(t, result, dto.StageRoutine)
	assert.Equal(t, dto.ReasonAllTickersRoutine, routineStage.ReasonCode)
	assert.Len(t, routineStage.Routine.ByTicker, 2)
}

func TestEvaluate_RoutineThresholdIsStrict(t *testing.T) {
	// Confidence exactly at the threshold does not clear it.
	scoring := newStubScoring()
	scoring.setRoutine("ACME", true, 0.6)
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Renews Office Lease Agreement In Austin",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, []string{"ACME"}, result.Recipe.MaterialTickers)
}

func TestEvaluate_PerTickerOutageCountsMaterial(t *testing.T) {
	scoring := newStubScoring()
	scoring.setRoutine("ACME", true, 0.9)
	scoring.routineErr["BETA"] = repository.ErrScoringUnavailable
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme And Beta Sign Distribution Pact",
		Tickers: []string{"ACME", "BETA"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, []string{"BETA"}, result.Recipe.MaterialTickers)

	routineStage := stageByName(t, result, dto.StageRoutine)
	assert.Nil(t, routineStage.Routine.ByTicker["BETA"].Routine)
	require.NotNil(t, routineStage.Routine.ByTicker["ACME"].Routine)
	assert.True(t, *routineStage.Routine.ByTicker["ACME"].Routine)
}

func TestEvaluate_ForceMaterialOverrideSkipsScoring(t *testing.T) {
	// Even a high-confidence routine score must not outrank the override.
	scoring := newStubScoring()
	scoring.setRoutine("ACME", true, 0.743)
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Halts Phase 3 Clinical Trial Enrollment",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, []string{"ACME"}, result.Recipe.MaterialTickers)
	assert.Contains(t, result.Recipe.OverrideCategories, "pharma_trials")
	assert.Empty(t, scoring.routineCalls)

	routineStage := stageByName(t, result, dto.StageRoutine)
	assert.True(t, routineStage.Routine.ByTicker["ACME"].Overridden)
}

func TestEvaluate_ForceRoutineOverrideRejects(t *testing.T) {
	scoring := newStubScoring()
	scoring.setRoutine("ACME", false, 0.1)
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Declares Quarterly Cash Dividend Of $0.25",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionRoutine, result.RejectionStage)
	assert.Empty(t, scoring.routineCalls)
}

func TestEvaluate_QuantitativeRecipeWinsOverStrategic(t *testing.T) {
	// Strategic confidence is higher, but recipe precedence is fixed.
	scoring := newStubScoring()
	scoring.setRoutine("SATS", false, 0.1)
	scoring.setRoutine("T", false, 0.2)
	scoring.quantResp = &dto.QuantitativeCatalystResponse{
		HasQuantitativeCatalyst: true,
		CatalystType:            utils.ToPointer("acquisition_value"),
		CatalystValues:          []string{"$23B"},
		Confidence:              0.93,
	}
	scoring.stratResp = &dto.StrategicCatalystResponse{
		HasStrategicCatalyst: true,
		CatalystSubtype:      utils.ToPointer("M&A"),
		Confidence:           0.98,
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "EchoStar To Sell Spectrum Licenses To AT&T For $23B",
		Tickers: []string{"SATS", "T"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	require.NotNil(t, result.Recipe)
	assert.Equal(t, dto.RecipeQuantitativeCatalyst, result.Recipe.Recipe)
	assert.Equal(t, dto.PriorityQuantitative, result.Recipe.Priority)
	assert.Equal(t, []string{"SATS", "T"}, result.Recipe.MaterialTickers)
	assert.Contains(t, stageByName(t, result, dto.StageQuantitative).Quantitative.CatalystValues, "$23B")
	require.Len(t, result.Stages, 4)
}

func TestEvaluate_StrategicRecipeWhenNoQuantitative(t *testing.T) {
	scoring := newStubScoring()
	scoring.stratResp = &dto.StrategicCatalystResponse{
		HasStrategicCatalyst: true,
		CatalystSubtype:      utils.ToPointer("restructuring"),
		Confidence:           0.7,
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Unveils Companywide Restructuring Plan",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.Equal(t, dto.RecipeStrategicCatalyst, result.Recipe.Recipe)
	assert.Equal(t, dto.PriorityStrategic, result.Recipe.Priority)
}

func TestEvaluate_PatternBasedFallback(t *testing.T) {
	scoring := newStubScoring()
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Names Industry Veteran To Board Of Directors",
		Tickers: []string{"ACME"},
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, dto.RecipePatternBased, result.Recipe.Recipe)
	assert.Equal(t, dto.PriorityPatternBased, result.Recipe.Priority)
}

func TestEvaluate_MalformedInput(t *testing.T) {
	pipeline := newTestPipeline(t, pipelineConfig(), newStubScoring())

	_, err := pipeline.Evaluate(context.Background(), &dto.Headline{Text: "   "})
	assert.True(t, errors.Is(err, ErrMalformedInput))

	_, err = pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Wins Defense Contract",
		Tickers: []string{"ACME", " "},
	})
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestEvaluate_TickerlessHeadlineLevel(t *testing.T) {
	scoring := newStubScoring()
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text: "Treasury Yields Climb After Inflation Data",
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	require.Len(t, result.Stages, 3)
	assert.Equal(t, dto.StageOpinion, result.Stages[0].Stage)
	assert.Equal(t, dto.StageQuantitative, result.Stages[1].Stage)
	assert.Equal(t, dto.StageStrategic, result.Stages[2].Stage)
	assert.Empty(t, result.Recipe.MaterialTickers)
	assert.Empty(t, scoring.routineCalls)
}

func TestEvaluate_TickerlessRejectPolicy(t *testing.T) {
	cfg := pipelineConfig()
	cfg.Triage.TickerlessPolicy = config.TickerlessReject
	scoring := newStubScoring()
	pipeline := newTestPipeline(t, cfg, scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text: "Treasury Yields Climb After Inflation Data",
	})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, dto.RejectionTickerless, result.RejectionStage)
	assert.Empty(t, result.Stages)
	assert.Equal(t, 0, scoring.classifyCalls)
}

func TestEvaluate_ScoringOutageIsNotAVerdict(t *testing.T) {
	scoring := newStubScoring()
	scoring.classifyErr = repository.ErrScoringUnavailable
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Wins Defense Contract",
		Tickers: []string{"ACME"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrScoringUnavailable))
	assert.Nil(t, result)
}

func TestEvaluate_CatalystStageOutageAborts(t *testing.T) {
	scoring := newStubScoring()
	scoring.quantErr = repository.ErrScoringUnavailable
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "Acme Wins Defense Contract",
		Tickers: []string{"ACME"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrScoringUnavailable))
	assert.Nil(t, result)
}

func TestEvaluate_CancellationPropagates(t *testing.T) {
	pipeline := newTestPipeline(t, pipelineConfig(), newStubScoring())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Evaluate(ctx, &dto.Headline{
		Text:    "Acme Wins Defense Contract",
		Tickers: []string{"ACME"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, repository.ErrScoringUnavailable))
}

func TestEvaluate_IsIdempotentForIdenticalInput(t *testing.T) {
	scoring := newStubScoring()
	scoring.setRoutine("SATS", false, 0.1)
	scoring.quantResp = &dto.QuantitativeCatalystResponse{
		HasQuantitativeCatalyst: true,
		CatalystType:            utils.ToPointer("contract_value"),
		CatalystValues:          []string{"$2.5B"},
		Confidence:              0.9,
	}
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	h := &dto.Headline{
		Text:    "EchoStar Wins $2.5B Satellite Services Contract",
		Tickers: []string{"SATS"},
	}
	first, err := pipeline.Evaluate(context.Background(), h)
	require.NoError(t, err)
	second, err := pipeline.Evaluate(context.Background(), h)
	require.NoError(t, err)

	assert.Equal(t, first.Accepted, second.Accepted)
	assert.Equal(t, first.Recipe.Recipe, second.Recipe.Recipe)
	assert.Equal(t, first.Recipe.Priority, second.Recipe.Priority)
	assert.Equal(t, first.Recipe.MaterialTickers, second.Recipe.MaterialTickers)
	// Each evaluation gets its own id.
	assert.NotEqual(t, first.EvaluationID, second.EvaluationID)
}

func TestEvaluate_DeduplicatesTickers(t *testing.T) {
	scoring := newStubScoring()
	pipeline := newTestPipeline(t, pipelineConfig(), scoring)

	result, err := pipeline.Evaluate(context.Background(), &dto.Headline{
		Text:    "EchoStar Expands Direct To Device Coverage",
		Tickers: []string{"SATS", "sats", " SATS "},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SATS"}, result.Recipe.MaterialTickers)
	assert.Equal(t, []string{"SATS"}, scoring.routineCalls)
}
