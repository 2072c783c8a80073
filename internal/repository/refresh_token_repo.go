package repository

import (
	"context"
	"time"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshTokenRepository defines the interface for data access of RefreshToken entities
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetValid(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository returns a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

// GetValid returns the token row only while it has not expired
func (r *refreshTokenRepository) GetValid(ctx context.Context, token string) (*model.RefreshToken, error) {
	var row model.RefreshToken
	if err := GetDB(ctx, r.db).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *refreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return GetDB(ctx, r.db).Where("token = ?", token).Delete(&model.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
