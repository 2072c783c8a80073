package model

import (
	"time"

	"github.com/google/uuid"
)

// Medical is a pharmacy / medical facility counterparty
type Medical struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Area      string    `gorm:"type:varchar(255);not null" json:"area"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
