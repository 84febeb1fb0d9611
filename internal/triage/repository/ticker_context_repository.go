package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
)

// TickerContextRepository persists per-ticker reference data.
type TickerContextRepository interface {
	GetAll(ctx context.Context) ([]entity.TickerContext, error)
	GetByTicker(ctx context.Context, ticker string) (*entity.TickerContext, error)
	Upsert(ctx context.Context, tc *entity.TickerContext) error
	Delete(ctx context.Context, ticker string) error
}

type tickerContextRepository struct {
	db *gorm.DB
}

// NewTickerContextRepository creates a new TickerContextRepository.
func NewTickerContextRepository(db *gorm.DB) TickerContextRepository {
	return &tickerContextRepository{db: db}
}

func (r *tickerContextRepository) GetAll(ctx context.Context) ([]entity.TickerContext, error) {
	var contexts []entity.TickerContext
	if err := r.db.WithContext(ctx).Find(&contexts).Error; err != nil {
		return nil, err
	}
	return contexts, nil
}

func (r *tickerContextRepository) GetByTicker(ctx context.Context, ticker string) (*entity.TickerContext, error) {
	var tc entity.TickerContext
	err := r.db.WithContext(ctx).Where("ticker = ?", strings.ToUpper(ticker)).First(&tc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tc, nil
}

func (r *tickerContextRepository) Upsert(ctx context.Context, tc *entity.TickerContext) error {
	tc.Ticker = strings.ToUpper(tc.Ticker)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "sector", "market_cap_bucket", "aliases", "profile", "updated_at"}),
	}).Create(tc).Error
}

func (r *tickerContextRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).Where("ticker = ?", strings.ToUpper(ticker)).Delete(&entity.TickerContext{}).Error
}
