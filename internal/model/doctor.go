package model

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a visit counterparty. MR-submitted doctors start unverified and
// sit in the approval queue; rejection deletes the row outright since an
// unverified doctor has no other consumer.
type Doctor struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Specialization string    `gorm:"type:varchar(255);not null" json:"specialization"`
	Hospital       string    `gorm:"type:varchar(255);not null" json:"hospital"`
	Address        string    `gorm:"type:text" json:"address"`
	Phone          string    `gorm:"type:varchar(20)" json:"phone"`
	Email          string    `gorm:"type:varchar(255)" json:"email"`
	IsVerified     bool      `gorm:"not null;default:false;index" json:"is_verified"`
	AddedBy        uuid.UUID `gorm:"type:uuid;not null" json:"added_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
