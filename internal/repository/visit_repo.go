package repository

import (
	"context"
	"time"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitFilter narrows visit reads at the store instead of client-side.
// Nil fields are not applied.
type VisitFilter struct {
	MRID   *uuid.UUID
	Status string
	Start  *time.Time
	End    *time.Time
}

// VisitRepository defines the interface for data access of Visit entities
type VisitRepository interface {
	Create(ctx context.Context, visit *model.Visit) error
	GetByIDWithOrders(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	ListWithOrders(ctx context.Context, filter VisitFilter) ([]model.Visit, error)
	ListPending(ctx context.Context) ([]model.Visit, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

// NewVisitRepository returns a new instance of VisitRepository
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

// Create inserts the visit together with its order lines (gorm association)
func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	return GetDB(ctx, r.db).Create(visit).Error
}

func (r *visitRepository) GetByIDWithOrders(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	if err := GetDB(ctx, r.db).Preload("Orders").First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

// ListWithOrders fetches visits and their line items in one round trip,
// newest first. Scope narrowing happens here, not in memory.
func (r *visitRepository) ListWithOrders(ctx context.Context, filter VisitFilter) ([]model.Visit, error) {
	query := GetDB(ctx, r.db).Preload("Orders")
	if filter.MRID != nil {
		query = query.Where("mr_id = ?", *filter.MRID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Start != nil {
		query = query.Where("date >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("date <= ?", *filter.End)
	}

	var visits []model.Visit
	if err := query.Order("date DESC").Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *visitRepository) ListPending(ctx context.Context) ([]model.Visit, error) {
	var visits []model.Visit
	if err := GetDB(ctx, r.db).
		Where("status = ?", model.VisitStatusPending).
		Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

// UpdateStatusFrom flips status only while the current value still matches;
// callers treat zero affected rows as a lost race.
func (r *visitRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Visit{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *visitRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Visit{}).Count(&total).Error
	return total, err
}
