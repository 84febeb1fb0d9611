package repository

import (
	"fmt"
	"strings"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
)

// BuildClassifyHeadlinePrompt asks whether a headline is opinion content and
// how it sits in time.
func BuildClassifyHeadlinePrompt(headline string) string {
	return fmt.Sprintf(`You are a financial news triage system. Classify the headline below.

Criteria:
- Opinion content is editorial or speculative text (analyst takes, "could", "top picks"), as opposed to factual reporting of an event.
- temporal_category: when the reported event sits in time. One of "past", "present", "future_near", "future_far", "unknown".
- far_future_forecast: true when the headline is a forecast about a distant horizon (multi-year predictions, decade outlooks).
- conditional_language: true when the headline hinges on "if"/"would"/"may"-style conditions, null when not determinable.
- opinion_confidence: your confidence that this is opinion content, 0.0 to 1.0.

Respond with JSON only, using exactly this structure:
{
  "is_opinion": <bool>,
  "temporal_category": "past | present | future_near | future_far | unknown",
  "far_future_forecast": <bool>,
  "conditional_language": <bool or null>,
  "opinion_confidence": <float 0.0-1.0>
}

Headline: %s`, headline)
}

// BuildRoutineOperationPrompt asks whether a headline describes an
// ordinary-course corporate action for one specific company. Ticker context
// sharpens the judgment when available.
func BuildRoutineOperationPrompt(headline, ticker string, tickerCtx *entity.TickerContext) string {
	var ctxBuilder strings.Builder
	ctxBuilder.WriteString(fmt.Sprintf("Ticker: %s\n", ticker))
	if tickerCtx != nil {
		if tickerCtx.Name != "" {
			ctxBuilder.WriteString(fmt.Sprintf("Company: %s\n", tickerCtx.Name))
		}
		if tickerCtx.Sector != "" {
			ctxBuilder.WriteString(fmt.Sprintf("Sector: %s\n", tickerCtx.Sector))
		}
		if tickerCtx.MarketCapBucket != "" {
			ctxBuilder.WriteString(fmt.Sprintf("Market cap bucket: %s\n", tickerCtx.MarketCapBucket))
		}
		if len(tickerCtx.Profile) > 0 {
			ctxBuilder.WriteString(fmt.Sprintf("Profile: %s\n", string(tickerCtx.Profile)))
		}
	}

	return fmt.Sprintf(`You are a financial news triage system. Decide whether the headline below describes a routine operation for the specific company given.

Criteria:
- A routine operation is an ordinary-course corporate action with no material information content for this company: regular dividends, scheduled earnings dates, routine filings, small ordinary contracts.
- Scale matters: a $2M contract is routine for a mega cap but material for a micro cap.
- routine_operation: true if routine, false if material, null if you cannot determine.
- routine_confidence: your confidence that this is routine, 0.0 to 1.0, null if not determinable.

Respond with JSON only, using exactly this structure:
{
  "routine_operation": <bool or null>,
  "routine_confidence": <float 0.0-1.0 or null>
}

%s
Headline: %s`, ctxBuilder.String(), headline)
}

// BuildQuantitativeCatalystPrompt asks whether a headline carries a
// quantitative catalyst and which literals express it.
func BuildQuantitativeCatalystPrompt(headline string) string {
	return fmt.Sprintf(`You are a financial news triage system. Decide whether the headline below contains a quantitative catalyst.

Criteria:
- A quantitative catalyst is an event whose financial magnitude is stated numerically: deal values, guidance changes with figures, dividend changes, buyback sizes.
- catalyst_type: a short category such as "acquisition_value", "dividend_increase", "guidance_change", "buyback_size", or null if none.
- catalyst_values: the numeric/currency literals from the headline, as strings, in order of appearance (e.g. "$23B", "15%%"). Empty list if none.
- confidence: 0.0 to 1.0.

Respond with JSON only, using exactly this structure:
{
  "has_quantitative_catalyst": <bool>,
  "catalyst_type": "<string or null>",
  "catalyst_values": ["<string>"],
  "confidence": <float 0.0-1.0>
}

Headline: %s`, headline)
}

// BuildStrategicCatalystPrompt asks whether a headline carries a strategic
// catalyst.
func BuildStrategicCatalystPrompt(headline string) string {
	return fmt.Sprintf(`You are a financial news triage system. Decide whether the headline below contains a strategic catalyst.

Criteria:
- A strategic catalyst is a structural event with material impact that is not primarily numeric: M&A, executive changes, partnerships, major product launches, regulatory actions.
- catalyst_subtype: one of "M&A", "executive_change", "partnership", "product_launch", "regulatory", or null if none.
- confidence: 0.0 to 1.0.

Respond with JSON only, using exactly this structure:
{
  "has_strategic_catalyst": <bool>,
  "catalyst_subtype": "<string or null>",
  "confidence": <float 0.0-1.0>
}

Headline: %s`, headline)
}
