package repository

import (
	"context"

	"mrtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorRepository defines the interface for data access of Doctor entities
type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context, page, limit int) ([]model.Doctor, int64, error)
	ListUnverified(ctx context.Context) ([]model.Doctor, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	Verify(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteUnverified(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type doctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository returns a new instance of DoctorRepository
func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return GetDB(ctx, r.db).Create(doctor).Error
}

func (r *doctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := GetDB(ctx, r.db).First(&doctor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, page, limit int) ([]model.Doctor, int64, error) {
	var doctors []model.Doctor
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Doctor{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&doctors).Error; err != nil {
		return nil, 0, err
	}

	return doctors, total, nil
}

func (r *doctorRepository) ListUnverified(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := GetDB(ctx, r.db).Where("is_verified = ?", false).Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := GetDB(ctx, r.db).Model(&model.Doctor{}).
		Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return GetDB(ctx, r.db).Save(doctor).Error
}

// Verify flips is_verified only while still false; zero rows means the record
// was already verified or removed by a concurrent admin.
func (r *doctorRepository) Verify(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Doctor{}).
		Where("id = ? AND is_verified = ?", id, false).
		Update("is_verified", true)
	return res.RowsAffected, res.Error
}

// DeleteUnverified removes a rejected doctor outright. Rejection is deletion
// here, not a status flip: an unverified doctor has no other consumer.
func (r *doctorRepository) DeleteUnverified(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).
		Where("id = ? AND is_verified = ?", id, false).
		Delete(&model.Doctor{})
	return res.RowsAffected, res.Error
}

func (r *doctorRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Doctor{}).Count(&total).Error
	return total, err
}
