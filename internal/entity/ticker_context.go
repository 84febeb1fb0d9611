package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Market cap buckets for TickerContext.MarketCapBucket.
const (
	MarketCapMicro = "micro"
	MarketCapSmall = "small"
	MarketCapMid   = "mid"
	MarketCapLarge = "large"
	MarketCapMega  = "mega"
)

// TickerContext holds per-company reference data that sharpens routine
// classification, e.g. a $2M contract is routine for a mega cap but
// material for a micro cap.
type TickerContext struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Ticker          string         `gorm:"unique;not null" json:"ticker"`
	Name            string         `gorm:"not null" json:"name"`
	Sector          string         `json:"sector"`
	MarketCapBucket string         `json:"market_cap_bucket"`
	Aliases         pq.StringArray `gorm:"type:text[]" json:"aliases"`
	Profile         datatypes.JSON `json:"profile"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the TickerContext model.
func (TickerContext) TableName() string {
	return "ticker_contexts"
}
