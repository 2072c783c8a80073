package service

import (
	"context"
	"testing"
	"time"

	"mrtrack/internal/model"
	"mrtrack/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monthlyFixture struct {
	users         *fakeUserRepo
	visits        *fakeVisitRepo
	medicalVisits *fakeMedicalVisitRepo
	medicines     *fakeMedicineRepo
	reports       *fakeMonthlyReportRepo
	svc           MonthlyReportService

	mr1, mr2 *model.User
	medicine *model.Medicine
}

func newMonthlyFixture(t *testing.T) *monthlyFixture {
	t.Helper()

	f := &monthlyFixture{
		users:         &fakeUserRepo{},
		visits:        &fakeVisitRepo{},
		medicalVisits: &fakeMedicalVisitRepo{},
		medicines:     &fakeMedicineRepo{},
		reports:       &fakeMonthlyReportRepo{},
	}
	ctx := context.Background()

	f.mr1 = &model.User{Name: "Asha Rao", Email: "a@example.com", Role: model.RoleMR, Status: model.UserStatusActive}
	f.mr2 = &model.User{Name: "Bilal Khan", Email: "b@example.com", Role: model.RoleMR, Status: model.UserStatusActive}
	require.NoError(t, f.users.Create(ctx, f.mr1))
	require.NoError(t, f.users.Create(ctx, f.mr2))

	f.medicine = &model.Medicine{Name: "Paracetamol", UnitPrice: decimal.NewFromFloat(2.50)}
	require.NoError(t, f.medicines.Create(ctx, f.medicine))

	f.svc = NewMonthlyReportService(f.reports, f.users, f.visits, f.medicalVisits, f.medicines, fakeTxManager{})
	return f
}

func (f *monthlyFixture) reportFor(t *testing.T, mr *model.User, month, year int) *model.MonthlyReport {
	t.Helper()
	for _, r := range f.reports.reports {
		if r.MRID == mr.ID && r.Month == month && r.Year == year {
			return r
		}
	}
	t.Fatalf("no report for %s %d-%d", mr.Name, year, month)
	return nil
}

func TestGenerateRollsUpApprovedVisits(t *testing.T) {
	f := newMonthlyFixture(t)
	ctx := context.Background()

	require.NoError(t, f.visits.Create(ctx, &model.Visit{
		MRID:   f.mr1.ID,
		Date:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Status: model.VisitStatusApproved,
		Orders: []model.VisitOrder{{MedicineID: f.medicine.ID, Quantity: 4}},
	}))
	require.NoError(t, f.medicalVisits.Create(ctx, &model.MedicalVisit{
		MRID:      f.mr1.ID,
		VisitDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Status:    model.VisitStatusApproved,
		Orders:    []model.MedicalVisitOrder{{MedicineID: f.medicine.ID, Quantity: 2}},
	}))
	// Pending visits and out-of-month visits do not count
	require.NoError(t, f.visits.Create(ctx, &model.Visit{
		MRID: f.mr1.ID, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Status: model.VisitStatusPending,
	}))
	require.NoError(t, f.visits.Create(ctx, &model.Visit{
		MRID: f.mr1.ID, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Status: model.VisitStatusApproved,
	}))

	written, err := f.svc.Generate(ctx, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	r1 := f.reportFor(t, f.mr1, 3, 2024)
	assert.Equal(t, 2, r1.TotalVisits)
	assert.Equal(t, 6, r1.TotalOrders)
	assert.True(t, r1.TotalValue.Equal(decimal.NewFromFloat(15.00)), "6 units at 2.50, got %s", r1.TotalValue)

	// Zero-activity MRs still get a rollup row
	r2 := f.reportFor(t, f.mr2, 3, 2024)
	assert.Zero(t, r2.TotalVisits)
	assert.True(t, r2.TotalValue.IsZero())
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newMonthlyFixture(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, 3, 2024)
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, 3, 2024)
	require.NoError(t, err)

	assert.Len(t, f.reports.reports, 2, "re-running a month must upsert, not duplicate")
}

func TestGenerateValidatesMonthAndYear(t *testing.T) {
	f := newMonthlyFixture(t)

	_, err := f.svc.Generate(context.Background(), 13, 2024)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Generate(context.Background(), 3, 1999)
	assert.True(t, apperror.IsValidation(err))
}
