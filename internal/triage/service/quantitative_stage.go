package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

var quantValueRe = regexp.MustCompile(`(?i)[$€£]\s?\d+(?:[.,]\d+)*(?:\s?(?:billion|million|trillion|thousand)\b|[bmkt]n?\b)?|\b\d+(?:[.,]\d+)?\s?%`)

// runQuantitativeStage asks the scoring service for a quantitative catalyst
// and unions its values with literals extracted from the text. The stage is
// advisory; it ranks but never rejects.
func (p *triagePipeline) runQuantitativeStage(ctx context.Context, text string) (*dto.StageResult, error) {
	resp, err := p.scoring.DetectQuantitativeCatalyst(ctx, text)
	if err != nil {
		p.log.Error("Quantitative stage scoring failed", logger.ErrorField(err))
		return nil, err
	}

	return &dto.StageResult{
		Stage:      dto.StageQuantitative,
		Passed:     true,
		Confidence: utils.ToPointer(resp.Confidence),
		Quantitative: &dto.QuantitativeFields{
			HasQuantitativeCatalyst: resp.HasQuantitativeCatalyst,
			CatalystType:            resp.CatalystType,
			CatalystValues:          mergeCatalystValues(resp.CatalystValues, extractQuantitativeValues(text)),
			Confidence:              resp.Confidence,
		},
	}, nil
}

// extractQuantitativeValues pulls currency and percentage literals out of a
// headline. The scoring service's values are authoritative; these cover
// literals it dropped.
func extractQuantitativeValues(text string) []string {
	raw := quantValueRe.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, strings.TrimSpace(v))
	}
	return values
}

// mergeCatalystValues unions the two slices, keeping the scoring service's
// order first and deduplicating on a spacing and case insensitive key.
func mergeCatalystValues(oracle, extracted []string) []string {
	seen := make(map[string]struct{}, len(oracle)+len(extracted))
	merged := make([]string, 0, len(oracle)+len(extracted))
	for _, v := range append(append([]string{}, oracle...), extracted...) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToUpper(strings.ReplaceAll(v, " ", ""))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, v)
	}
	return merged
}
