package repository

import (
	"context"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicineRepository defines the interface for data access of Medicine entities
type MedicineRepository interface {
	Create(ctx context.Context, medicine *model.Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
	List(ctx context.Context, page, limit int) ([]model.Medicine, int64, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Medicine, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Update(ctx context.Context, medicine *model.Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type medicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository returns a new instance of MedicineRepository
func NewMedicineRepository(db *gorm.DB) MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	return GetDB(ctx, r.db).Create(medicine).Error
}

func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	var medicine model.Medicine
	if err := GetDB(ctx, r.db).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *medicineRepository) List(ctx context.Context, page, limit int) ([]model.Medicine, int64, error) {
	var medicines []model.Medicine
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Medicine{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&medicines).Error; err != nil {
		return nil, 0, err
	}

	return medicines, total, nil
}

func (r *medicineRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Medicine, error) {
	var medicines []model.Medicine
	if len(ids) == 0 {
		return medicines, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *medicineRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := GetDB(ctx, r.db).Model(&model.Medicine{}).
		Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *medicineRepository) Update(ctx context.Context, medicine *model.Medicine) error {
	return GetDB(ctx, r.db).Save(medicine).Error
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Medicine{}).Error
}
