package dto

import (
	"time"

	"github.com/google/uuid"
)

// Stage names in pipeline order.
const (
	StageOpinion      = "opinion"
	StageRoutine      = "routine_operation"
	StageQuantitative = "quantitative_catalyst"
	StageStrategic    = "strategic_catalyst"
)

// Rejection stages. Only the first two stages can reject a headline, plus
// the pre-stage tickerless policy check.
const (
	RejectionNone       = "none"
	RejectionOpinion    = "opinion"
	RejectionRoutine    = "routine_operation"
	RejectionTickerless = "tickerless"
)

// Reason codes attached to rejecting stage results.
const (
	ReasonOpinionContent    = "opinion_content"
	ReasonFarFutureForecast = "far_future_forecast"
	ReasonAllTickersRoutine = "all_tickers_routine"
)

// Recipe names and their priority ranks. Lower rank wins.
const (
	RecipeQuantitativeCatalyst = "QUANTITATIVE_CATALYST"
	RecipeStrategicCatalyst    = "STRATEGIC_CATALYST"
	RecipePatternBased         = "PATTERN_BASED"

	PriorityQuantitative = 1
	PriorityStrategic    = 2
	PriorityPatternBased = 3
)

// Temporal categories reported by the opinion classifier.
const (
	TemporalPast       = "past"
	TemporalPresent    = "present"
	TemporalFutureNear = "future_near"
	TemporalFutureFar  = "future_far"
	TemporalUnknown    = "unknown"
)

// Headline is the immutable input of one pipeline evaluation.
type Headline struct {
	Text        string     `json:"text"`
	Tickers     []string   `json:"tickers"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// OpinionFields holds the structured output of the opinion stage.
type OpinionFields struct {
	IsOpinion           bool   `json:"is_opinion"`
	TemporalCategory    string `json:"temporal_category"`
	FarFutureForecast   bool   `json:"far_future_forecast"`
	ConditionalLanguage *bool  `json:"conditional_language"`
}

// PerTickerRoutine is the routine verdict for a single ticker. A nil
// Routine means no determination was possible and the ticker counts as
// material during aggregation.
type PerTickerRoutine struct {
	Routine    *bool    `json:"routine"`
	Confidence *float64 `json:"confidence"`
	Overridden bool     `json:"overridden,omitempty"`
}

// RoutineFields holds the per-ticker routine verdicts of stage 2.
type RoutineFields struct {
	ByTicker map[string]PerTickerRoutine `json:"by_ticker"`
}

// QuantitativeFields holds the output of the quantitative catalyst stage.
type QuantitativeFields struct {
	HasQuantitativeCatalyst bool     `json:"has_quantitative_catalyst"`
	CatalystType            *string  `json:"catalyst_type"`
	CatalystValues          []string `json:"catalyst_values"`
	Confidence              float64  `json:"confidence"`
}

// StrategicFields holds the output of the strategic catalyst stage.
type StrategicFields struct {
	HasStrategicCatalyst bool    `json:"has_strategic_catalyst"`
	CatalystSubtype      *string `json:"catalyst_subtype"`
	Confidence           float64 `json:"confidence"`
}

// StageResult is the record of one executed stage. Stages skipped by
// short-circuit are absent from the result, not present-and-empty.
type StageResult struct {
	Stage        string              `json:"stage"`
	Passed       bool                `json:"passed"`
	Confidence   *float64            `json:"confidence"`
	ReasonCode   string              `json:"reason_code,omitempty"`
	Opinion      *OpinionFields      `json:"opinion,omitempty"`
	Routine      *RoutineFields      `json:"routine,omitempty"`
	Quantitative *QuantitativeFields `json:"quantitative,omitempty"`
	Strategic    *StrategicFields    `json:"strategic,omitempty"`
}

// RecipeSelection is the downstream-processing hint for an accepted headline.
type RecipeSelection struct {
	Priority           int      `json:"priority"`
	Recipe             string   `json:"recipe"`
	MaterialTickers    []string `json:"material_tickers"`
	OverrideCategories []string `json:"override_categories,omitempty"`
}

// PipelineResult is the terminal output of one headline evaluation.
type PipelineResult struct {
	EvaluationID   uuid.UUID        `json:"evaluation_id"`
	Accepted       bool             `json:"accepted"`
	RejectionStage string           `json:"rejection_stage"`
	Stages         []StageResult    `json:"stages"`
	Recipe         *RecipeSelection `json:"recipe,omitempty"`
	EvaluatedAt    time.Time        `json:"evaluated_at"`
}

// StreamDataTriageRequest is the payload consumed from the triage request stream.
type StreamDataTriageRequest struct {
	Headline    string   `json:"headline"`
	Tickers     []string `json:"tickers"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"published_at"`
}

// StreamDataTriageAccepted is the payload published for accepted headlines.
type StreamDataTriageAccepted struct {
	EvaluationID    string   `json:"evaluation_id"`
	Headline        string   `json:"headline"`
	Source          string   `json:"source"`
	Recipe          string   `json:"recipe"`
	Priority        int      `json:"priority"`
	MaterialTickers []string `json:"material_tickers"`
	EvaluatedAt     string   `json:"evaluated_at"`
}

// TriageDigestEntry is one accepted headline inside a periodic digest.
type TriageDigestEntry struct {
	Headline        string    `json:"headline"`
	Recipe          string    `json:"recipe"`
	Priority        int       `json:"priority"`
	MaterialTickers []string  `json:"material_tickers"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}
