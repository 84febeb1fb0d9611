package service

import (
	"context"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// runStrategicStage asks the scoring service for a strategic catalyst such
// as M&A, restructuring or a major partnership. Advisory, like the
// quantitative stage.
func (p *triagePipeline) runStrategicStage(ctx context.Context, text string) (*dto.StageResult, error) {
	resp, err := p.scoring.DetectStrategicCatalyst(ctx, text)
	if err != nil {
		p.log.Error("Strategic stage scoring failed", logger.ErrorField(err))
		return nil, err
	}

	return &dto.StageResult{
		Stage:      dto.StageStrategic,
		Passed:     true,
		Confidence: utils.ToPointer(resp.Confidence),
		Strategic: &dto.StrategicFields{
			HasStrategicCatalyst: resp.HasStrategicCatalyst,
			CatalystSubtype:      resp.CatalystSubtype,
			Confidence:           resp.Confidence,
		},
	}, nil
}
