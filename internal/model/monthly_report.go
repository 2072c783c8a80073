package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyReport is a per-MR monthly rollup of approved visit activity,
// persisted so historical months survive catalog changes.
type MonthlyReport struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MRID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_monthly_reports_mr_period,unique" json:"mr_id"`
	Month       int             `gorm:"not null;index:idx_monthly_reports_mr_period,unique" json:"month"`
	Year        int             `gorm:"not null;index:idx_monthly_reports_mr_period,unique" json:"year"`
	TotalVisits int             `gorm:"not null;default:0" json:"total_visits"`
	TotalOrders int             `gorm:"not null;default:0" json:"total_orders"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"total_value"`
	Status      string          `gorm:"type:varchar(20);not null;default:'generated'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
