package service

import (
	"context"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for Request validation
type CreateMedicineRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type UpdateMedicineRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// MedicineService defines the interface for business logic related to Medicine
type MedicineService interface {
	CreateMedicine(ctx context.Context, req CreateMedicineRequest) (*model.Medicine, error)
	GetMedicineByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
	ListMedicines(ctx context.Context, page, limit int) ([]model.Medicine, int64, error)
	UpdateMedicine(ctx context.Context, id uuid.UUID, req UpdateMedicineRequest) (*model.Medicine, error)
	DeleteMedicine(ctx context.Context, id uuid.UUID) error
}

type medicineService struct {
	repo repository.MedicineRepository
}

// NewMedicineService returns a new instance of MedicineService
func NewMedicineService(repo repository.MedicineRepository) MedicineService {
	return &medicineService{repo: repo}
}

func (s *medicineService) CreateMedicine(ctx context.Context, req CreateMedicineRequest) (*model.Medicine, error) {
	if req.UnitPrice.IsNegative() {
		return nil, apperror.Validation("unit price cannot be negative")
	}

	medicine := &model.Medicine{
		Name:        req.Name,
		Category:    req.Category,
		Type:        req.Type,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
	}
	if err := s.repo.Create(ctx, medicine); err != nil {
		return nil, apperror.Unavailable(err, "failed to create medicine")
	}
	return medicine, nil
}

func (s *medicineService) GetMedicineByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	medicine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "medicine")
	}
	return medicine, nil
}

func (s *medicineService) ListMedicines(ctx context.Context, page, limit int) ([]model.Medicine, int64, error) {
	medicines, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to list medicines")
	}
	return medicines, total, nil
}

func (s *medicineService) UpdateMedicine(ctx context.Context, id uuid.UUID, req UpdateMedicineRequest) (*model.Medicine, error) {
	medicine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "medicine")
	}

	if req.Name != "" {
		medicine.Name = req.Name
	}
	if req.Category != "" {
		medicine.Category = req.Category
	}
	if req.Type != "" {
		medicine.Type = req.Type
	}
	if req.Description != "" {
		medicine.Description = req.Description
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, apperror.Validation("unit price cannot be negative")
		}
		medicine.UnitPrice = *req.UnitPrice
	}

	if err := s.repo.Update(ctx, medicine); err != nil {
		return nil, apperror.Unavailable(err, "failed to update medicine")
	}
	return medicine, nil
}

func (s *medicineService) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFoundOrUnavailable(err, "medicine")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Unavailable(err, "failed to delete medicine")
	}
	return nil
}
