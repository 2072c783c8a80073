package repository

import (
	"context"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalVisitRepository defines the interface for data access of MedicalVisit entities
type MedicalVisitRepository interface {
	Create(ctx context.Context, visit *model.MedicalVisit) error
	GetByIDWithOrders(ctx context.Context, id uuid.UUID) (*model.MedicalVisit, error)
	ListWithOrders(ctx context.Context, filter VisitFilter) ([]model.MedicalVisit, error)
	ListPending(ctx context.Context) ([]model.MedicalVisit, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type medicalVisitRepository struct {
	db *gorm.DB
}

// NewMedicalVisitRepository returns a new instance of MedicalVisitRepository
func NewMedicalVisitRepository(db *gorm.DB) MedicalVisitRepository {
	return &medicalVisitRepository{db: db}
}

func (r *medicalVisitRepository) Create(ctx context.Context, visit *model.MedicalVisit) error {
	return GetDB(ctx, r.db).Create(visit).Error
}

func (r *medicalVisitRepository) GetByIDWithOrders(ctx context.Context, id uuid.UUID) (*model.MedicalVisit, error) {
	var visit model.MedicalVisit
	if err := GetDB(ctx, r.db).Preload("Orders").First(&visit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *medicalVisitRepository) ListWithOrders(ctx context.Context, filter VisitFilter) ([]model.MedicalVisit, error) {
	query := GetDB(ctx, r.db).Preload("Orders")
	if filter.MRID != nil {
		query = query.Where("mr_id = ?", *filter.MRID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Start != nil {
		query = query.Where("visit_date >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("visit_date <= ?", *filter.End)
	}

	var visits []model.MedicalVisit
	if err := query.Order("visit_date DESC").Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *medicalVisitRepository) ListPending(ctx context.Context) ([]model.MedicalVisit, error) {
	var visits []model.MedicalVisit
	if err := GetDB(ctx, r.db).
		Where("status = ?", model.VisitStatusPending).
		Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *medicalVisitRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.MedicalVisit{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *medicalVisitRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.MedicalVisit{}).Count(&total).Error
	return total, err
}
