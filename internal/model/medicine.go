package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine is a catalog entity referenced by order lines; no approval workflow
type Medicine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    string          `gorm:"type:varchar(100);not null" json:"category"`
	Type        string          `gorm:"type:varchar(100);not null" json:"type"`
	Description string          `gorm:"type:text" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"unit_price"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
