package repository

import (
	"context"
	"errors"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
)

// ErrScoringUnavailable marks a timeout or transport failure reaching the
// scoring service. It is never a classification verdict: callers must keep
// it distinct from a rejection.
var ErrScoringUnavailable = errors.New("scoring unavailable")

// ScoringRepository answers the four classification questions the filter
// pipeline asks about a headline. Implementations are pure from the
// pipeline's point of view: same inputs, same answers.
type ScoringRepository interface {
	ClassifyHeadline(ctx context.Context, headline string) (*dto.ClassifyResponse, error)
	ClassifyRoutineOperation(ctx context.Context, headline, ticker string, tickerCtx *entity.TickerContext) (*dto.RoutineOperationResult, error)
	DetectQuantitativeCatalyst(ctx context.Context, headline string) (*dto.QuantitativeCatalystResponse, error)
	DetectStrategicCatalyst(ctx context.Context, headline string) (*dto.StrategicCatalystResponse, error)
}
