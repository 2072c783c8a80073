package service

import (
	"context"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Specialization string `json:"specialization" binding:"required"`
	Hospital       string `json:"hospital" binding:"required"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
}

type UpdateDoctorRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Hospital       string `json:"hospital"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
}

// DoctorService defines the interface for business logic related to Doctor
type DoctorService interface {
	CreateDoctor(ctx context.Context, addedBy uuid.UUID, role string, req CreateDoctorRequest) (*model.Doctor, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListDoctors(ctx context.Context, page, limit int) ([]model.Doctor, int64, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req UpdateDoctorRequest) (*model.Doctor, error)
}

type doctorService struct {
	repo      repository.DoctorRepository
	publisher Publisher
}

// NewDoctorService returns a new instance of DoctorService
func NewDoctorService(repo repository.DoctorRepository, publisher Publisher) DoctorService {
	return &doctorService{repo: repo, publisher: publisher}
}

// CreateDoctor inserts a new doctor. Admin submissions are verified
// immediately; MR submissions start unverified and enter the approval queue.
func (s *doctorService) CreateDoctor(ctx context.Context, addedBy uuid.UUID, role string, req CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		Hospital:       req.Hospital,
		Address:        req.Address,
		Phone:          req.Phone,
		Email:          req.Email,
		IsVerified:     role == model.RoleAdmin,
		AddedBy:        addedBy,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperror.Unavailable(err, "failed to create doctor")
	}

	if !doctor.IsVerified {
		publishApprovalEvent(s.publisher, model.KindDoctor, doctor.ID, "submitted")
	}
	return doctor, nil
}

func (s *doctorService) GetDoctorByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "doctor")
	}
	return doctor, nil
}

func (s *doctorService) ListDoctors(ctx context.Context, page, limit int) ([]model.Doctor, int64, error) {
	doctors, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to list doctors")
	}
	return doctors, total, nil
}

func (s *doctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, req UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "doctor")
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Hospital != "" {
		doctor.Hospital = req.Hospital
	}
	if req.Address != "" {
		doctor.Address = req.Address
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.Email != "" {
		doctor.Email = req.Email
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, apperror.Unavailable(err, "failed to update doctor")
	}
	return doctor, nil
}
