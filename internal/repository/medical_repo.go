package repository

import (
	"context"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalRepository defines the interface for data access of Medical entities
type MedicalRepository interface {
	Create(ctx context.Context, medical *model.Medical) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Medical, error)
	List(ctx context.Context, page, limit int) ([]model.Medical, int64, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Update(ctx context.Context, medical *model.Medical) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type medicalRepository struct {
	db *gorm.DB
}

// NewMedicalRepository returns a new instance of MedicalRepository
func NewMedicalRepository(db *gorm.DB) MedicalRepository {
	return &medicalRepository{db: db}
}

func (r *medicalRepository) Create(ctx context.Context, medical *model.Medical) error {
	return GetDB(ctx, r.db).Create(medical).Error
}

func (r *medicalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Medical, error) {
	var medical model.Medical
	if err := GetDB(ctx, r.db).First(&medical, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medical, nil
}

func (r *medicalRepository) List(ctx context.Context, page, limit int) ([]model.Medical, int64, error) {
	var medicals []model.Medical
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Medical{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&medicals).Error; err != nil {
		return nil, 0, err
	}

	return medicals, total, nil
}

func (r *medicalRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := GetDB(ctx, r.db).Model(&model.Medical{}).
		Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *medicalRepository) Update(ctx context.Context, medical *model.Medical) error {
	return GetDB(ctx, r.db).Save(medical).Error
}

func (r *medicalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Medical{}).Error
}

func (r *medicalRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Medical{}).Count(&total).Error
	return total, err
}
