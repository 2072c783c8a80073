package service

import (
	"context"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
)

// DTOs for Request validation
type OrderLineRequest struct {
	MedicineID uuid.UUID `json:"medicine_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
}

type CreateVisitRequest struct {
	DoctorID uuid.UUID          `json:"doctor_id" binding:"required"`
	Date     string             `json:"date" binding:"required"` // YYYY-MM-DD
	Notes    string             `json:"notes"`
	Orders   []OrderLineRequest `json:"orders" binding:"dive"`
}

type CreateMedicalVisitRequest struct {
	MedicalID uuid.UUID          `json:"medical_id" binding:"required"`
	Date      string             `json:"date" binding:"required"` // YYYY-MM-DD
	Notes     string             `json:"notes"`
	Orders    []OrderLineRequest `json:"orders" binding:"dive"`
}

// VisitService covers MR-side visit submission and retrieval for both visit
// kinds. Visits are born pending and immutable afterwards except through the
// approval workflow.
type VisitService interface {
	CreateVisit(ctx context.Context, mrID uuid.UUID, req CreateVisitRequest) (*model.Visit, error)
	CreateMedicalVisit(ctx context.Context, mrID uuid.UUID, req CreateMedicalVisitRequest) (*model.MedicalVisit, error)
	GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	GetMedicalVisit(ctx context.Context, id uuid.UUID) (*model.MedicalVisit, error)
	ListVisits(ctx context.Context, filter repository.VisitFilter) ([]model.Visit, error)
	ListMedicalVisits(ctx context.Context, filter repository.VisitFilter) ([]model.MedicalVisit, error)
}

type visitService struct {
	visits        repository.VisitRepository
	medicalVisits repository.MedicalVisitRepository
	doctors       repository.DoctorRepository
	medicals      repository.MedicalRepository
	medicines     repository.MedicineRepository
	users         repository.UserRepository
	txManager     repository.TxManager
	publisher     Publisher
}

// NewVisitService returns a new instance of VisitService
func NewVisitService(
	visits repository.VisitRepository,
	medicalVisits repository.MedicalVisitRepository,
	doctors repository.DoctorRepository,
	medicals repository.MedicalRepository,
	medicines repository.MedicineRepository,
	users repository.UserRepository,
	txManager repository.TxManager,
	publisher Publisher,
) VisitService {
	return &visitService{
		visits:        visits,
		medicalVisits: medicalVisits,
		doctors:       doctors,
		medicals:      medicals,
		medicines:     medicines,
		users:         users,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// CreateVisit validates the references and inserts the visit with its order
// lines atomically. Only an active MR account may submit.
func (s *visitService) CreateVisit(ctx context.Context, mrID uuid.UUID, req CreateVisitRequest) (*model.Visit, error) {
	date, err := parseVisitDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMR(ctx, mrID); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "doctor")
	}
	if !doctor.IsVerified {
		return nil, apperror.Validation("doctor is not verified yet")
	}

	if err := s.validateOrderLines(ctx, req.Orders); err != nil {
		return nil, err
	}

	visit := &model.Visit{
		MRID:     mrID,
		DoctorID: req.DoctorID,
		Date:     date,
		Notes:    req.Notes,
		Status:   model.VisitStatusPending,
	}
	for _, line := range req.Orders {
		visit.Orders = append(visit.Orders, model.VisitOrder{
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.visits.Create(txCtx, visit)
	})
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to create visit")
	}

	publishApprovalEvent(s.publisher, model.KindVisit, visit.ID, "submitted")
	return visit, nil
}

// CreateMedicalVisit is the facility-visit counterpart of CreateVisit
func (s *visitService) CreateMedicalVisit(ctx context.Context, mrID uuid.UUID, req CreateMedicalVisitRequest) (*model.MedicalVisit, error) {
	date, err := parseVisitDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMR(ctx, mrID); err != nil {
		return nil, err
	}

	if _, err := s.medicals.GetByID(ctx, req.MedicalID); err != nil {
		return nil, notFoundOrUnavailable(err, "medical facility")
	}

	if err := s.validateOrderLines(ctx, req.Orders); err != nil {
		return nil, err
	}

	visit := &model.MedicalVisit{
		MRID:      mrID,
		MedicalID: req.MedicalID,
		VisitDate: date,
		Notes:     req.Notes,
		Status:    model.VisitStatusPending,
	}
	for _, line := range req.Orders {
		visit.Orders = append(visit.Orders, model.MedicalVisitOrder{
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.medicalVisits.Create(txCtx, visit)
	})
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to create medical visit")
	}

	publishApprovalEvent(s.publisher, model.KindMedicalVisit, visit.ID, "submitted")
	return visit, nil
}

func (s *visitService) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.visits.GetByIDWithOrders(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "visit")
	}
	return visit, nil
}

func (s *visitService) GetMedicalVisit(ctx context.Context, id uuid.UUID) (*model.MedicalVisit, error) {
	visit, err := s.medicalVisits.GetByIDWithOrders(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "medical visit")
	}
	return visit, nil
}

func (s *visitService) ListVisits(ctx context.Context, filter repository.VisitFilter) ([]model.Visit, error) {
	visits, err := s.visits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to list visits")
	}
	return visits, nil
}

func (s *visitService) ListMedicalVisits(ctx context.Context, filter repository.VisitFilter) ([]model.MedicalVisit, error) {
	visits, err := s.medicalVisits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to list medical visits")
	}
	return visits, nil
}

// requireActiveMR blocks submissions from pending, rejected, and deactivated
// accounts even if they somehow hold a valid token.
func (s *visitService) requireActiveMR(ctx context.Context, mrID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, mrID)
	if err != nil {
		return notFoundOrUnavailable(err, "user")
	}
	if user.Role != model.RoleMR {
		return apperror.Validation("only MR accounts can submit visits")
	}
	if user.Status != model.UserStatusActive {
		return apperror.Validation("account is %s and cannot submit visits", user.Status)
	}
	return nil
}

// validateOrderLines checks quantities and that every referenced medicine
// exists before anything is written.
func (s *visitService) validateOrderLines(ctx context.Context, lines []OrderLineRequest) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperror.Validation("order quantity must be a positive integer")
		}
		ids = append(ids, line.MedicineID)
	}

	medicines, err := s.medicines.ListByIDs(ctx, dedupe(ids))
	if err != nil {
		return apperror.Unavailable(err, "failed to verify medicines")
	}
	known := make(map[uuid.UUID]struct{}, len(medicines))
	for _, m := range medicines {
		known[m.ID] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := known[line.MedicineID]; !ok {
			return apperror.Validation("medicine %s does not exist", line.MedicineID)
		}
	}
	return nil
}

func parseVisitDate(s string) (time.Time, error) {
	date, err := time.Parse(reportDateFormat, s)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return date, nil
}
