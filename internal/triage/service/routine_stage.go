package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"
)

// runRoutineStage scores every ticker and rejects the headline only when all
// of them come back routine. Override matches pin every ticker without
// scoring; force_material wins over force_routine when both match.
func (p *triagePipeline) runRoutineStage(ctx context.Context, text string, tickers []string, matches []override.Match) (*dto.StageResult, []string, error) {
	byTicker := make(map[string]dto.PerTickerRoutine, len(tickers))

	switch {
	case override.HasOutcome(matches, override.ForceMaterial):
		for _, t := range tickers {
			byTicker[t] = dto.PerTickerRoutine{Routine: utils.ToPointer(false), Overridden: true}
		}
	case override.HasOutcome(matches, override.ForceRoutine):
		for _, t := range tickers {
			byTicker[t] = dto.PerTickerRoutine{Routine: utils.ToPointer(true), Overridden: true}
		}
	default:
		if err := p.scoreRoutineTickers(ctx, text, tickers, byTicker); err != nil {
			return nil, nil, err
		}
	}

	material := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !tickerIsRoutine(byTicker[t], p.cfg.Triage.RoutineThreshold) {
			material = append(material, t)
		}
	}

	stage := &dto.StageResult{
		Stage:   dto.StageRoutine,
		Passed:  len(material) > 0,
		Routine: &dto.RoutineFields{ByTicker: byTicker},
	}
	if !stage.Passed {
		stage.ReasonCode = dto.ReasonAllTickersRoutine
	}
	return stage, material, nil
}

// scoreRoutineTickers fans out one scoring call per ticker, capped by the
// configured concurrency. One ticker's scoring outage does not abort the
// stage; that ticker keeps a nil determination and counts as material.
func (p *triagePipeline) scoreRoutineTickers(ctx context.Context, text string, tickers []string, byTicker map[string]dto.PerTickerRoutine) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, p.cfg.Triage.MaxConcurrentScores)

	for _, ticker := range tickers {
		ticker := ticker
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if !utils.ShouldContinue(ctx, p.log) {
				return
			}

			res, err := p.scoring.ClassifyRoutineOperation(ctx, text, ticker, p.entities.Get(ticker))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, repository.ErrScoringUnavailable) && ctx.Err() == nil {
					p.log.Warn("Routine scoring unavailable for ticker",
						logger.StringField("ticker", ticker), logger.ErrorField(err))
					byTicker[ticker] = dto.PerTickerRoutine{}
					return
				}
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			byTicker[ticker] = dto.PerTickerRoutine{
				Routine:    res.RoutineOperation,
				Confidence: res.RoutineConfidence,
			}
		})
	}
	wg.Wait()

	if firstErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return firstErr
	}
	// Goroutines skipped by cancellation leave tickers unscored.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// tickerIsRoutine applies the routine threshold. A nil determination or a
// missing confidence never clears the bar; an overridden verdict skips it.
func tickerIsRoutine(v dto.PerTickerRoutine, threshold float64) bool {
	if v.Routine == nil || !*v.Routine {
		return false
	}
	if v.Overridden {
		return true
	}
	return v.Confidence != nil && *v.Confidence > threshold
}
