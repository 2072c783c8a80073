package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const queueDateFormat = "Jan 2, 2006"

// Publisher pushes queue-change events to connected admin dashboards.
// Nil is a valid publisher (no-op).
type Publisher interface {
	Publish(message []byte)
}

// ApprovalService is the unified approval queue: one ordered list across the
// four approvable kinds, kind-dispatched approve/reject transitions, and
// enriched per-item detail. It holds no cache; every list re-queries the
// store, and callers re-list after any mutation.
type ApprovalService interface {
	ListPending(ctx context.Context) ([]model.PendingApprovalItem, error)
	GetDetail(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) (*model.ApprovalDetail, error)
	Approve(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) error
	Reject(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) error
	ToggleUserActive(ctx context.Context, id uuid.UUID) (string, error)
}

type approvalService struct {
	visits        repository.VisitRepository
	medicalVisits repository.MedicalVisitRepository
	doctors       repository.DoctorRepository
	users         repository.UserRepository
	medicals      repository.MedicalRepository
	medicines     repository.MedicineRepository
	tokens        repository.RefreshTokenRepository
	publisher     Publisher
}

// NewApprovalService returns a new instance of ApprovalService
func NewApprovalService(
	visits repository.VisitRepository,
	medicalVisits repository.MedicalVisitRepository,
	doctors repository.DoctorRepository,
	users repository.UserRepository,
	medicals repository.MedicalRepository,
	medicines repository.MedicineRepository,
	tokens repository.RefreshTokenRepository,
	publisher Publisher,
) ApprovalService {
	return &approvalService{
		visits:        visits,
		medicalVisits: medicalVisits,
		doctors:       doctors,
		users:         users,
		medicals:      medicals,
		medicines:     medicines,
		tokens:        tokens,
		publisher:     publisher,
	}
}

// ListPending issues the four kind-specific pending reads and concatenates
// them in fixed order: visits, medical visits, doctors, users. Per-kind order
// is the store default.
func (s *approvalService) ListPending(ctx context.Context) ([]model.PendingApprovalItem, error) {
	pendingVisits, err := s.visits.ListPending(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch pending visits")
	}

	pendingMedicalVisits, err := s.medicalVisits.ListPending(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch pending medical visits")
	}

	unverifiedDoctors, err := s.doctors.ListUnverified(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch unverified doctors")
	}

	pendingUsers, err := s.users.ListPendingMRs(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch pending users")
	}

	// Secondary lookups return only foreign-key ids, so resolve display names
	// in batched reads. A failed or missing lookup degrades the field, never
	// the queue.
	mrIDs := make([]uuid.UUID, 0, len(pendingVisits)+len(pendingMedicalVisits))
	doctorIDs := make([]uuid.UUID, 0, len(pendingVisits))
	medicalIDs := make([]uuid.UUID, 0, len(pendingMedicalVisits))
	for _, v := range pendingVisits {
		mrIDs = append(mrIDs, v.MRID)
		doctorIDs = append(doctorIDs, v.DoctorID)
	}
	for _, mv := range pendingMedicalVisits {
		mrIDs = append(mrIDs, mv.MRID)
		medicalIDs = append(medicalIDs, mv.MedicalID)
	}

	mrNames := s.resolveUserNames(ctx, mrIDs)
	doctorNames := s.resolveDoctorNames(ctx, doctorIDs)
	medicalNames := s.resolveMedicalNames(ctx, medicalIDs)

	items := make([]model.PendingApprovalItem, 0,
		len(pendingVisits)+len(pendingMedicalVisits)+len(unverifiedDoctors)+len(pendingUsers))

	for _, v := range pendingVisits {
		items = append(items, model.PendingApprovalItem{
			Kind:  model.KindVisit,
			ID:    v.ID,
			Name:  nameOrUnknown(mrNames, v.MRID),
			Date:  v.Date.Format(queueDateFormat),
			Extra: nameOrNA(doctorNames, v.DoctorID),
		})
	}
	for _, mv := range pendingMedicalVisits {
		items = append(items, model.PendingApprovalItem{
			Kind:  model.KindMedicalVisit,
			ID:    mv.ID,
			Name:  nameOrUnknown(mrNames, mv.MRID),
			Date:  mv.VisitDate.Format(queueDateFormat),
			Extra: nameOrNA(medicalNames, mv.MedicalID),
		})
	}
	for _, d := range unverifiedDoctors {
		items = append(items, model.PendingApprovalItem{
			Kind: model.KindDoctor,
			ID:   d.ID,
			Name: d.Name,
		})
	}
	for _, u := range pendingUsers {
		items = append(items, model.PendingApprovalItem{
			Kind:  model.KindUser,
			ID:    u.ID,
			Name:  u.Name,
			Extra: u.Email,
		})
	}

	return items, nil
}

// GetDetail performs the kind-specific enriched fetch for one queue entry.
// Only a missing primary record is an error; failed name lookups degrade.
func (s *approvalService) GetDetail(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) (*model.ApprovalDetail, error) {
	switch kind {
	case model.KindVisit:
		visit, err := s.visits.GetByIDWithOrders(ctx, id)
		if err != nil {
			return nil, notFoundOrUnavailable(err, "visit")
		}
		detail := &model.ApprovalDetail{
			Kind:             model.KindVisit,
			Visit:            visit,
			MRName:           s.singleUserName(ctx, visit.MRID),
			CounterpartyName: nameOrNA(s.resolveDoctorNames(ctx, []uuid.UUID{visit.DoctorID}), visit.DoctorID),
		}
		detail.Medicines = s.resolveOrderLines(ctx, visitOrderLines(visit.Orders))
		return detail, nil

	case model.KindMedicalVisit:
		visit, err := s.medicalVisits.GetByIDWithOrders(ctx, id)
		if err != nil {
			return nil, notFoundOrUnavailable(err, "medical visit")
		}
		detail := &model.ApprovalDetail{
			Kind:             model.KindMedicalVisit,
			MedicalVisit:     visit,
			MRName:           s.singleUserName(ctx, visit.MRID),
			CounterpartyName: nameOrNA(s.resolveMedicalNames(ctx, []uuid.UUID{visit.MedicalID}), visit.MedicalID),
		}
		detail.Medicines = s.resolveOrderLines(ctx, medicalVisitOrderLines(visit.Orders))
		return detail, nil

	case model.KindDoctor:
		doctor, err := s.doctors.GetByID(ctx, id)
		if err != nil {
			return nil, notFoundOrUnavailable(err, "doctor")
		}
		return &model.ApprovalDetail{Kind: model.KindDoctor, Doctor: doctor}, nil

	case model.KindUser:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, notFoundOrUnavailable(err, "user")
		}
		return &model.ApprovalDetail{Kind: model.KindUser, User: user}, nil

	default:
		return nil, apperror.Validation("unknown approval kind: %s", kind)
	}
}

// Approve applies the kind-specific approving transition: visits and medical
// visits go pending→approved, doctors unverified→verified, users
// pending→active. Exactly one guarded mutation per call.
func (s *approvalService) Approve(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) error {
	var affected int64
	var err error

	switch kind {
	case model.KindVisit:
		affected, err = s.visits.UpdateStatusFrom(ctx, id, model.VisitStatusPending, model.VisitStatusApproved)
	case model.KindMedicalVisit:
		affected, err = s.medicalVisits.UpdateStatusFrom(ctx, id, model.VisitStatusPending, model.VisitStatusApproved)
	case model.KindDoctor:
		affected, err = s.doctors.Verify(ctx, id)
	case model.KindUser:
		affected, err = s.users.UpdateStatusFrom(ctx, id, model.UserStatusPending, model.UserStatusActive)
	default:
		return apperror.Validation("unknown approval kind: %s", kind)
	}

	if err != nil {
		return apperror.Unavailable(err, "failed to approve %s", kind)
	}
	if affected == 0 {
		return apperror.NotFound("%s %s is not pending or no longer exists", kind, id)
	}

	s.publishQueueChanged(kind, id, "approved")
	return nil
}

// Reject applies the kind-specific rejecting transition. Rejection is a
// status flip for every kind except doctors, where it deletes the record:
// an unverified doctor has no other valid state, so the dispatch here cannot
// collapse into a generic "set status=rejected".
func (s *approvalService) Reject(ctx context.Context, kind model.ApprovalKind, id uuid.UUID) error {
	var affected int64
	var err error

	switch kind {
	case model.KindVisit:
		affected, err = s.visits.UpdateStatusFrom(ctx, id, model.VisitStatusPending, model.VisitStatusRejected)
	case model.KindMedicalVisit:
		affected, err = s.medicalVisits.UpdateStatusFrom(ctx, id, model.VisitStatusPending, model.VisitStatusRejected)
	case model.KindDoctor:
		affected, err = s.doctors.DeleteUnverified(ctx, id)
	case model.KindUser:
		affected, err = s.users.UpdateStatusFrom(ctx, id, model.UserStatusPending, model.UserStatusRejected)
	default:
		return apperror.Validation("unknown approval kind: %s", kind)
	}

	if err != nil {
		return apperror.Unavailable(err, "failed to reject %s", kind)
	}
	if affected == 0 {
		return apperror.NotFound("%s %s is not pending or no longer exists", kind, id)
	}

	if kind == model.KindUser {
		s.revokeRefreshTokens(ctx, id)
	}

	s.publishQueueChanged(kind, id, "rejected")
	return nil
}

// ToggleUserActive flips an MR account between active and inactive. This is
// an admin lifecycle action outside the approval flow; pending and rejected
// accounts are not toggleable.
func (s *approvalService) ToggleUserActive(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", notFoundOrUnavailable(err, "user")
	}
	if user.Role != model.RoleMR {
		return "", apperror.Validation("only MR accounts can be toggled")
	}

	var next string
	switch user.Status {
	case model.UserStatusActive:
		next = model.UserStatusInactive
	case model.UserStatusInactive:
		next = model.UserStatusActive
	default:
		return "", apperror.Validation("account is %s and cannot be toggled", user.Status)
	}

	affected, err := s.users.UpdateStatusFrom(ctx, id, user.Status, next)
	if err != nil {
		return "", apperror.Unavailable(err, "failed to update user status")
	}
	if affected == 0 {
		return "", apperror.Conflict("user status changed concurrently")
	}

	// A deactivated account must not be able to mint new access tokens
	if next == model.UserStatusInactive {
		s.revokeRefreshTokens(ctx, id)
	}

	return next, nil
}

// --- Helpers ---

// revokeRefreshTokens drops every outstanding refresh token for the user.
// The status transition already succeeded, so a failed revoke is logged and
// the stale tokens age out through their expiry instead.
func (s *approvalService) revokeRefreshTokens(ctx context.Context, userID uuid.UUID) {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to revoke refresh tokens")
	}
}

func (s *approvalService) publishQueueChanged(kind model.ApprovalKind, id uuid.UUID, action string) {
	publishApprovalEvent(s.publisher, kind, id, action)
}

// publishApprovalEvent pushes an approvals.changed event so connected admin
// dashboards re-list the queue. Submission paths use it too, not just the
// approve/reject transitions.
func publishApprovalEvent(p Publisher, kind model.ApprovalKind, id uuid.UUID, action string) {
	if p == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"event":  "approvals.changed",
		"kind":   string(kind),
		"id":     id.String(),
		"action": action,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
	p.Publish(payload)
}

func (s *approvalService) resolveUserNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	names, err := s.users.NamesByIDs(ctx, dedupe(ids))
	if err != nil {
		log.Warn().Err(err).Msg("user name resolution failed, degrading to Unknown")
		return map[uuid.UUID]string{}
	}
	return names
}

func (s *approvalService) resolveDoctorNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	names, err := s.doctors.NamesByIDs(ctx, dedupe(ids))
	if err != nil {
		log.Warn().Err(err).Msg("doctor name resolution failed, degrading to N/A")
		return map[uuid.UUID]string{}
	}
	return names
}

func (s *approvalService) resolveMedicalNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	names, err := s.medicals.NamesByIDs(ctx, dedupe(ids))
	if err != nil {
		log.Warn().Err(err).Msg("medical name resolution failed, degrading to N/A")
		return map[uuid.UUID]string{}
	}
	return names
}

func (s *approvalService) singleUserName(ctx context.Context, id uuid.UUID) string {
	return nameOrUnknown(s.resolveUserNames(ctx, []uuid.UUID{id}), id)
}

type orderLine struct {
	medicineID uuid.UUID
	quantity   int
}

func visitOrderLines(orders []model.VisitOrder) []orderLine {
	lines := make([]orderLine, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, orderLine{medicineID: o.MedicineID, quantity: o.Quantity})
	}
	return lines
}

func medicalVisitOrderLines(orders []model.MedicalVisitOrder) []orderLine {
	lines := make([]orderLine, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, orderLine{medicineID: o.MedicineID, quantity: o.Quantity})
	}
	return lines
}

func (s *approvalService) resolveOrderLines(ctx context.Context, lines []orderLine) []model.MedicineLine {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.medicineID)
	}
	names, err := s.medicines.NamesByIDs(ctx, dedupe(ids))
	if err != nil {
		log.Warn().Err(err).Msg("medicine name resolution failed, degrading to N/A")
		names = map[uuid.UUID]string{}
	}

	resolved := make([]model.MedicineLine, 0, len(lines))
	for _, l := range lines {
		resolved = append(resolved, model.MedicineLine{
			MedicineName: nameOrNA(names, l.medicineID),
			Quantity:     l.quantity,
		})
	}
	return resolved
}

func nameOrUnknown(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown"
}

func nameOrNA(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "N/A"
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func notFoundOrUnavailable(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s not found", entity)
	}
	return apperror.Unavailable(err, "failed to fetch %s", entity)
}
