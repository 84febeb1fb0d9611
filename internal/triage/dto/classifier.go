package dto

// ClassifyRequest is the request body for POST /classify.
type ClassifyRequest struct {
	Headline string `json:"headline"`
}

// ClassifyResponse is the response body of POST /classify. OpinionConfidence
// is optional on the wire; when the service omits it the boolean verdict is
// mapped to 1.0 or 0.0.
type ClassifyResponse struct {
	IsOpinion           bool     `json:"is_opinion"`
	TemporalCategory    string   `json:"temporal_category"`
	FarFutureForecast   bool     `json:"far_future_forecast"`
	ConditionalLanguage *bool    `json:"conditional_language"`
	OpinionConfidence   *float64 `json:"opinion_confidence"`
}

// RoutineOperationsRequest is the request body for POST /routine-operations.
type RoutineOperationsRequest struct {
	Headline      string   `json:"headline"`
	TickerSymbols []string `json:"ticker_symbols"`
}

// RoutineOperationResult is the per-ticker verdict inside a
// RoutineOperationsResponse. Both fields are nullable on the wire.
type RoutineOperationResult struct {
	RoutineOperation  *bool    `json:"routine_operation"`
	RoutineConfidence *float64 `json:"routine_confidence"`
}

// RoutineOperationsResponse is the response body of POST /routine-operations.
type RoutineOperationsResponse struct {
	RoutineOperationsByTicker map[string]RoutineOperationResult `json:"routine_operations_by_ticker"`
}

// QuantitativeCatalystRequest is the request body for POST /detect-quantitative-catalyst.
type QuantitativeCatalystRequest struct {
	Headline string `json:"headline"`
}

// QuantitativeCatalystResponse is the response body of POST /detect-quantitative-catalyst.
type QuantitativeCatalystResponse struct {
	HasQuantitativeCatalyst bool     `json:"has_quantitative_catalyst"`
	CatalystType            *string  `json:"catalyst_type"`
	CatalystValues          []string `json:"catalyst_values"`
	Confidence              float64  `json:"confidence"`
}

// StrategicCatalystRequest is the request body for POST /detect-strategic-catalyst.
type StrategicCatalystRequest struct {
	Headline string `json:"headline"`
}

// StrategicCatalystResponse is the response body of POST /detect-strategic-catalyst.
type StrategicCatalystResponse struct {
	HasStrategicCatalyst bool    `json:"has_strategic_catalyst"`
	CatalystSubtype      *string `json:"catalyst_subtype"`
	Confidence           float64 `json:"confidence"`
}
