package service

import (
	"context"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
)

// runOpinionStage rejects opinion and far-future forecast content. A
// force_non_opinion override suppresses the confidence rejection but never
// the far-future one.
func (p *triagePipeline) runOpinionStage(ctx context.Context, text string, matches []override.Match) (*dto.StageResult, error) {
	resp, err := p.scoring.ClassifyHeadline(ctx, text)
	if err != nil {
		p.log.Error("Opinion stage scoring failed", logger.ErrorField(err))
		return nil, err
	}

	if resp.TemporalCategory == dto.TemporalUnknown {
		p.log.Warn("Classifier returned unknown temporal category", logger.StringField("headline", text))
	}

	confidence := opinionConfidence(resp)
	stage := &dto.StageResult{
		Stage:      dto.StageOpinion,
		Passed:     true,
		Confidence: &confidence,
		Opinion: &dto.OpinionFields{
			IsOpinion:           resp.IsOpinion,
			TemporalCategory:    resp.TemporalCategory,
			FarFutureForecast:   resp.FarFutureForecast,
			ConditionalLanguage: resp.ConditionalLanguage,
		},
	}

	scoreReject := confidence >= p.cfg.Triage.OpinionThreshold &&
		!override.HasOutcome(matches, override.ForceNonOpinion)

	switch {
	case resp.FarFutureForecast:
		stage.Passed = false
		stage.ReasonCode = dto.ReasonFarFutureForecast
	case scoreReject:
		stage.Passed = false
		stage.ReasonCode = dto.ReasonOpinionContent
	}
	return stage, nil
}

// opinionConfidence prefers the classifier's score and falls back to the
// boolean flag when the score is absent.
func opinionConfidence(resp *dto.ClassifyResponse) float64 {
	if resp.OpinionConfidence != nil {
		return *resp.OpinionConfidence
	}
	if resp.IsOpinion {
		return 1.0
	}
	return 0.0
}
