package service

import (
	"context"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateMedicalRequest struct {
	Name string `json:"name" binding:"required"`
	Area string `json:"area" binding:"required"`
}

type UpdateMedicalRequest struct {
	Name string `json:"name"`
	Area string `json:"area"`
}

// MedicalService defines the interface for business logic related to Medical
type MedicalService interface {
	CreateMedical(ctx context.Context, req CreateMedicalRequest) (*model.Medical, error)
	GetMedicalByID(ctx context.Context, id uuid.UUID) (*model.Medical, error)
	ListMedicals(ctx context.Context, page, limit int) ([]model.Medical, int64, error)
	UpdateMedical(ctx context.Context, id uuid.UUID, req UpdateMedicalRequest) (*model.Medical, error)
	DeleteMedical(ctx context.Context, id uuid.UUID) error
}

type medicalService struct {
	repo repository.MedicalRepository
}

// NewMedicalService returns a new instance of MedicalService
func NewMedicalService(repo repository.MedicalRepository) MedicalService {
	return &medicalService{repo: repo}
}

func (s *medicalService) CreateMedical(ctx context.Context, req CreateMedicalRequest) (*model.Medical, error) {
	medical := &model.Medical{Name: req.Name, Area: req.Area}
	if err := s.repo.Create(ctx, medical); err != nil {
		return nil, apperror.Unavailable(err, "failed to create medical facility")
	}
	return medical, nil
}

func (s *medicalService) GetMedicalByID(ctx context.Context, id uuid.UUID) (*model.Medical, error) {
	medical, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "medical facility")
	}
	return medical, nil
}

func (s *medicalService) ListMedicals(ctx context.Context, page, limit int) ([]model.Medical, int64, error) {
	medicals, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to list medical facilities")
	}
	return medicals, total, nil
}

func (s *medicalService) UpdateMedical(ctx context.Context, id uuid.UUID, req UpdateMedicalRequest) (*model.Medical, error) {
	medical, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "medical facility")
	}

	if req.Name != "" {
		medical.Name = req.Name
	}
	if req.Area != "" {
		medical.Area = req.Area
	}

	if err := s.repo.Update(ctx, medical); err != nil {
		return nil, apperror.Unavailable(err, "failed to update medical facility")
	}
	return medical, nil
}

func (s *medicalService) DeleteMedical(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFoundOrUnavailable(err, "medical facility")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Unavailable(err, "failed to delete medical facility")
	}
	return nil
}
