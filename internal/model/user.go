package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enum constants
const (
	RoleAdmin = "admin"
	RoleMR    = "mr"
)

// UserStatus enum constants. Self-registered MRs start as pending and only
// become active through admin approval; inactive is a reversible admin toggle.
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusRejected = "rejected"
)

// User represents an account: an administrator or a medical representative
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role      string    `gorm:"type:varchar(20);not null;index" json:"role"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Region    string    `gorm:"type:varchar(100)" json:"region"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
