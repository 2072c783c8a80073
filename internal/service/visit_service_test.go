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

type visitFixture struct {
	users         *fakeUserRepo
	doctors       *fakeDoctorRepo
	medicals      *fakeMedicalRepo
	medicines     *fakeMedicineRepo
	visits        *fakeVisitRepo
	medicalVisits *fakeMedicalVisitRepo
	publisher     *capturingPublisher
	svc           VisitService

	mr       *model.User
	doctor   *model.Doctor
	medical  *model.Medical
	medicine *model.Medicine
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()

	f := &visitFixture{
		users:         &fakeUserRepo{},
		doctors:       &fakeDoctorRepo{},
		medicals:      &fakeMedicalRepo{},
		medicines:     &fakeMedicineRepo{},
		visits:        &fakeVisitRepo{},
		medicalVisits: &fakeMedicalVisitRepo{},
	}
	ctx := context.Background()

	f.mr = &model.User{Name: "Asha Rao", Email: "asha@example.com", Role: model.RoleMR, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(ctx, f.mr))

	f.doctor = &model.Doctor{Name: "Dr. Mehta", IsVerified: true, AddedBy: f.mr.ID}
	require.NoError(t, f.doctors.Create(ctx, f.doctor))

	f.medical = &model.Medical{Name: "Green Pharmacy"}
	require.NoError(t, f.medicals.Create(ctx, f.medical))

	f.medicine = &model.Medicine{Name: "Paracetamol"}
	require.NoError(t, f.medicines.Create(ctx, f.medicine))

	f.publisher = &capturingPublisher{}
	f.svc = NewVisitService(f.visits, f.medicalVisits, f.doctors, f.medicals, f.medicines, f.users, fakeTxManager{}, f.publisher)
	return f
}

func TestCreateVisitStartsPending(t *testing.T) {
	f := newVisitFixture(t)

	visit, err := f.svc.CreateVisit(context.Background(), f.mr.ID, CreateVisitRequest{
		DoctorID: f.doctor.ID,
		Date:     "2024-03-05",
		Notes:    "follow-up",
		Orders:   []OrderLineRequest{{MedicineID: f.medicine.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.VisitStatusPending, visit.Status)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), visit.Date)
	require.Len(t, visit.Orders, 1)
	assert.Equal(t, 3, visit.Orders[0].Quantity)
	assert.Len(t, f.visits.visits, 1)

	// Submission pushes a queue-change event for admin dashboards
	assert.Len(t, f.publisher.messages, 1)
}

func TestCreateVisitRejectsUnverifiedDoctor(t *testing.T) {
	f := newVisitFixture(t)
	unverified := &model.Doctor{Name: "Dr. New", AddedBy: f.mr.ID}
	require.NoError(t, f.doctors.Create(context.Background(), unverified))

	_, err := f.svc.CreateVisit(context.Background(), f.mr.ID, CreateVisitRequest{
		DoctorID: unverified.ID,
		Date:     "2024-03-05",
	})
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.visits.visits)
}

func TestCreateVisitRejectsUnknownMedicine(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.svc.CreateVisit(context.Background(), f.mr.ID, CreateVisitRequest{
		DoctorID: f.doctor.ID,
		Date:     "2024-03-05",
		Orders:   []OrderLineRequest{{MedicineID: uuid.New(), Quantity: 2}},
	})
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.visits.visits)
}

func TestCreateVisitRejectsBadDateAndQuantity(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.svc.CreateVisit(context.Background(), f.mr.ID, CreateVisitRequest{
		DoctorID: f.doctor.ID,
		Date:     "05/03/2024",
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.CreateVisit(context.Background(), f.mr.ID, CreateVisitRequest{
		DoctorID: f.doctor.ID,
		Date:     "2024-03-05",
		Orders:   []OrderLineRequest{{MedicineID: f.medicine.ID, Quantity: 0}},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateVisitRequiresActiveMR(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()

	pending := &model.User{Name: "New Rep", Email: "new@example.com", Role: model.RoleMR, Status: model.UserStatusPending}
	require.NoError(t, f.users.Create(ctx, pending))
	admin := &model.User{Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(ctx, admin))

	req := CreateVisitRequest{DoctorID: f.doctor.ID, Date: "2024-03-05"}

	_, err := f.svc.CreateVisit(ctx, pending.ID, req)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.CreateVisit(ctx, admin.ID, req)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.CreateVisit(ctx, uuid.New(), req)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateMedicalVisitStartsPending(t *testing.T) {
	f := newVisitFixture(t)

	visit, err := f.svc.CreateMedicalVisit(context.Background(), f.mr.ID, CreateMedicalVisitRequest{
		MedicalID: f.medical.ID,
		Date:      "2024-03-06",
		Orders:    []OrderLineRequest{{MedicineID: f.medicine.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.VisitStatusPending, visit.Status)
	require.Len(t, visit.Orders, 1)
	assert.Equal(t, 5, visit.Orders[0].Quantity)
}

func TestCreateMedicalVisitUnknownFacility(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.svc.CreateMedicalVisit(context.Background(), f.mr.ID, CreateMedicalVisitRequest{
		MedicalID: uuid.New(),
		Date:      "2024-03-06",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetVisitNotFound(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.svc.GetVisit(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
