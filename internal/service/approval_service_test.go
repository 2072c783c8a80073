package service

import (
	"context"
	"testing"
	"time"

	"mrtrack/internal/model"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalFixture struct {
	users         *fakeUserRepo
	doctors       *fakeDoctorRepo
	medicals      *fakeMedicalRepo
	medicines     *fakeMedicineRepo
	visits        *fakeVisitRepo
	medicalVisits *fakeMedicalVisitRepo
	tokens        *fakeRefreshTokenRepo
	publisher     *capturingPublisher
	svc           ApprovalService

	mr           *model.User
	pendingUser  *model.User
	doctor       *model.Doctor
	unverifiedDr *model.Doctor
	medical      *model.Medical
	medicine     *model.Medicine
	visit        *model.Visit
	medicalVisit *model.MedicalVisit
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()

	f := &approvalFixture{
		users:         &fakeUserRepo{},
		doctors:       &fakeDoctorRepo{},
		medicals:      &fakeMedicalRepo{},
		medicines:     &fakeMedicineRepo{},
		visits:        &fakeVisitRepo{},
		medicalVisits: &fakeMedicalVisitRepo{},
		tokens:        &fakeRefreshTokenRepo{},
		publisher:     &capturingPublisher{},
	}
	ctx := context.Background()

	f.mr = &model.User{Name: "Asha Rao", Email: "asha@example.com", Role: model.RoleMR, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(ctx, f.mr))
	f.pendingUser = &model.User{Name: "New Rep", Email: "new@example.com", Role: model.RoleMR, Status: model.UserStatusPending}
	require.NoError(t, f.users.Create(ctx, f.pendingUser))

	f.doctor = &model.Doctor{Name: "Dr. Mehta", Specialization: "Cardiology", Hospital: "City Hospital", IsVerified: true, AddedBy: f.mr.ID}
	require.NoError(t, f.doctors.Create(ctx, f.doctor))
	f.unverifiedDr = &model.Doctor{Name: "Dr. New", Specialization: "Oncology", Hospital: "General", IsVerified: false, AddedBy: f.mr.ID}
	require.NoError(t, f.doctors.Create(ctx, f.unverifiedDr))

	f.medical = &model.Medical{Name: "Green Pharmacy", Area: "Downtown"}
	require.NoError(t, f.medicals.Create(ctx, f.medical))

	f.medicine = &model.Medicine{Name: "Paracetamol", Category: "Analgesic", Type: "Tablet"}
	require.NoError(t, f.medicines.Create(ctx, f.medicine))

	f.visit = &model.Visit{
		MRID:     f.mr.ID,
		DoctorID: f.doctor.ID,
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:   model.VisitStatusPending,
		Orders:   []model.VisitOrder{{MedicineID: f.medicine.ID, Quantity: 3}},
	}
	require.NoError(t, f.visits.Create(ctx, f.visit))

	f.medicalVisit = &model.MedicalVisit{
		MRID:      f.mr.ID,
		MedicalID: f.medical.ID,
		VisitDate: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		Status:    model.VisitStatusPending,
		Orders:    []model.MedicalVisitOrder{{MedicineID: f.medicine.ID, Quantity: 5}},
	}
	require.NoError(t, f.medicalVisits.Create(ctx, f.medicalVisit))

	f.svc = NewApprovalService(f.visits, f.medicalVisits, f.doctors, f.users, f.medicals, f.medicines, f.tokens, f.publisher)
	return f
}

func TestListPendingMergeOrder(t *testing.T) {
	f := newApprovalFixture(t)

	items, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, model.KindVisit, items[0].Kind)
	assert.Equal(t, model.KindMedicalVisit, items[1].Kind)
	assert.Equal(t, model.KindDoctor, items[2].Kind)
	assert.Equal(t, model.KindUser, items[3].Kind)

	// Visit entries carry the submitting MR's resolved name plus the
	// counterparty in Extra.
	assert.Equal(t, "Asha Rao", items[0].Name)
	assert.Equal(t, "Jan 10, 2024", items[0].Date)
	assert.Equal(t, "Dr. Mehta", items[0].Extra)

	assert.Equal(t, "Green Pharmacy", items[1].Extra)
	assert.Equal(t, "Dr. New", items[2].Name)
	assert.Equal(t, "New Rep", items[3].Name)
	assert.Equal(t, "new@example.com", items[3].Extra)
}

func TestListPendingDegradesFailedNameLookups(t *testing.T) {
	f := newApprovalFixture(t)
	f.users.failNames = true
	f.doctors.failNames = true

	items, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "Unknown", items[0].Name)
	assert.Equal(t, "N/A", items[0].Extra)
}

func TestApproveTransitions(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Approve(ctx, model.KindVisit, f.visit.ID))
	require.NoError(t, f.svc.Approve(ctx, model.KindMedicalVisit, f.medicalVisit.ID))
	require.NoError(t, f.svc.Approve(ctx, model.KindDoctor, f.unverifiedDr.ID))
	require.NoError(t, f.svc.Approve(ctx, model.KindUser, f.pendingUser.ID))

	assert.Equal(t, model.VisitStatusApproved, f.visit.Status)
	assert.Equal(t, model.VisitStatusApproved, f.medicalVisit.Status)
	assert.True(t, f.unverifiedDr.IsVerified)
	assert.Equal(t, model.UserStatusActive, f.pendingUser.Status)

	// Approved items leave the queue
	items, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// One push per mutation
	assert.Len(t, f.publisher.messages, 4)
}

func TestApproveAlreadyTerminalReturnsNotFound(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Approve(ctx, model.KindVisit, f.visit.ID))

	err := f.svc.Approve(ctx, model.KindVisit, f.visit.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = f.svc.Reject(ctx, model.KindVisit, f.visit.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRejectTransitions(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Reject(ctx, model.KindVisit, f.visit.ID))
	assert.Equal(t, model.VisitStatusRejected, f.visit.Status)

	require.NoError(t, f.tokens.Create(ctx, &model.RefreshToken{
		UserID: f.pendingUser.ID, Token: "stray-session", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, f.svc.Reject(ctx, model.KindUser, f.pendingUser.ID))
	assert.Equal(t, model.UserStatusRejected, f.pendingUser.Status)

	// Rejection revokes any refresh tokens the account still holds
	assert.Empty(t, f.tokens.tokens)
}

func TestRejectDoctorDeletesRecord(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	id := f.unverifiedDr.ID

	require.NoError(t, f.svc.Reject(ctx, model.KindDoctor, id))

	// Record is gone, not flagged
	_, err := f.doctors.GetByID(ctx, id)
	assert.Error(t, err)

	// A concurrent second reject surfaces NotFound, never silent success
	err = f.svc.Reject(ctx, model.KindDoctor, id)
	assert.True(t, apperror.IsNotFound(err))

	// Detail on the deleted id is NotFound as well
	_, err = f.svc.GetDetail(ctx, model.KindDoctor, id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApproveUnknownKindIsValidation(t *testing.T) {
	f := newApprovalFixture(t)

	err := f.svc.Approve(context.Background(), model.ApprovalKind("invoice"), uuid.New())
	assert.True(t, apperror.IsValidation(err))
}

func TestGetDetailVisit(t *testing.T) {
	f := newApprovalFixture(t)

	detail, err := f.svc.GetDetail(context.Background(), model.KindVisit, f.visit.ID)
	require.NoError(t, err)

	assert.Equal(t, model.KindVisit, detail.Kind)
	require.NotNil(t, detail.Visit)
	assert.Equal(t, "Asha Rao", detail.MRName)
	assert.Equal(t, "Dr. Mehta", detail.CounterpartyName)
	require.Len(t, detail.Medicines, 1)
	assert.Equal(t, "Paracetamol", detail.Medicines[0].MedicineName)
	assert.Equal(t, 3, detail.Medicines[0].Quantity)
}

func TestGetDetailDegradesMissingMedicine(t *testing.T) {
	f := newApprovalFixture(t)
	f.visit.Orders = append(f.visit.Orders, model.VisitOrder{MedicineID: uuid.New(), Quantity: 2})

	detail, err := f.svc.GetDetail(context.Background(), model.KindVisit, f.visit.ID)
	require.NoError(t, err)
	require.Len(t, detail.Medicines, 2)
	assert.Equal(t, "N/A", detail.Medicines[1].MedicineName)
	assert.Equal(t, 2, detail.Medicines[1].Quantity)
}

func TestToggleUserActive(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tokens.Create(ctx, &model.RefreshToken{
		UserID: f.mr.ID, Token: "live-session", ExpiresAt: time.Now().Add(time.Hour),
	}))

	status, err := f.svc.ToggleUserActive(ctx, f.mr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusInactive, status)

	// Deactivation revokes the account's outstanding refresh tokens
	assert.Empty(t, f.tokens.tokens)

	status, err = f.svc.ToggleUserActive(ctx, f.mr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, status)
}

func TestToggleUserActiveRejectsNonToggleableStates(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	// Pending accounts go through the approval queue, not the toggle
	_, err := f.svc.ToggleUserActive(ctx, f.pendingUser.ID)
	assert.True(t, apperror.IsValidation(err))

	admin := &model.User{Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(ctx, admin))
	_, err = f.svc.ToggleUserActive(ctx, admin.ID)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.ToggleUserActive(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
