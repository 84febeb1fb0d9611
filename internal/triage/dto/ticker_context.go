package dto

import (
	"encoding/json"
	"time"
)

// CreateTickerContextRequest is the DTO for creating or replacing a ticker context.
type CreateTickerContextRequest struct {
	Ticker          string          `json:"ticker"`
	Name            string          `json:"name"`
	Sector          string          `json:"sector"`
	MarketCapBucket string          `json:"market_cap_bucket"`
	Aliases         []string        `json:"aliases"`
	Profile         json.RawMessage `json:"profile" swaggertype:"object"`
}

// TickerContextResponse is the DTO for API responses containing a ticker context.
type TickerContextResponse struct {
	ID              uint            `json:"id"`
	Ticker          string          `json:"ticker"`
	Name            string          `json:"name"`
	Sector          string          `json:"sector"`
	MarketCapBucket string          `json:"market_cap_bucket"`
	Aliases         []string        `json:"aliases"`
	Profile         json.RawMessage `json:"profile" swaggertype:"object"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OverridePatternResponse describes one registered override pattern.
type OverridePatternResponse struct {
	Category string `json:"category"`
	Outcome  string `json:"outcome"`
	Pattern  string `json:"pattern"`
	Builtin  bool   `json:"builtin"`
}

// TriageHTTPRequest is the request body for synchronous headline evaluation.
type TriageHTTPRequest struct {
	Headline    string   `json:"headline"`
	Tickers     []string `json:"tickers"`
	Source      string   `json:"source,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
}
