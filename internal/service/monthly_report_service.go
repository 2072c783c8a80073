package service

import (
	"context"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyReportService produces the persisted per-MR monthly rollups.
// Generation is idempotent: re-running a month overwrites the earlier rollup
// via upsert, so it is safe to trigger after late approvals.
type MonthlyReportService interface {
	Generate(ctx context.Context, month, year int) (int, error)
	List(ctx context.Context, mrID *uuid.UUID, page, limit int) ([]model.MonthlyReport, int64, error)
}

type monthlyReportService struct {
	reports       repository.MonthlyReportRepository
	users         repository.UserRepository
	visits        repository.VisitRepository
	medicalVisits repository.MedicalVisitRepository
	medicines     repository.MedicineRepository
	txManager     repository.TxManager
}

// NewMonthlyReportService returns a new instance of MonthlyReportService
func NewMonthlyReportService(
	reports repository.MonthlyReportRepository,
	users repository.UserRepository,
	visits repository.VisitRepository,
	medicalVisits repository.MedicalVisitRepository,
	medicines repository.MedicineRepository,
	txManager repository.TxManager,
) MonthlyReportService {
	return &monthlyReportService{
		reports:       reports,
		users:         users,
		visits:        visits,
		medicalVisits: medicalVisits,
		medicines:     medicines,
		txManager:     txManager,
	}
}

// Generate computes and stores the rollup for every MR for the given month.
// Only approved visits count. Returns the number of rollups written.
func (s *monthlyReportService) Generate(ctx context.Context, month, year int) (int, error) {
	if month < 1 || month > 12 {
		return 0, apperror.Validation("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return 0, apperror.Validation("year %d is out of range", year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	mrs, err := s.users.ListByRole(ctx, model.RoleMR)
	if err != nil {
		return 0, apperror.Unavailable(err, "failed to fetch representatives")
	}

	filter := repository.VisitFilter{Status: model.VisitStatusApproved, Start: &start, End: &end}
	visits, err := s.visits.ListWithOrders(ctx, filter)
	if err != nil {
		return 0, apperror.Unavailable(err, "failed to fetch approved visits")
	}
	medicalVisits, err := s.medicalVisits.ListWithOrders(ctx, filter)
	if err != nil {
		return 0, apperror.Unavailable(err, "failed to fetch approved medical visits")
	}

	prices, err := s.medicinePrices(ctx, visits, medicalVisits)
	if err != nil {
		return 0, err
	}

	type rollup struct {
		visits   int
		quantity int
		value    decimal.Decimal
	}
	rollups := make(map[uuid.UUID]*rollup, len(mrs))
	for i := range mrs {
		rollups[mrs[i].ID] = &rollup{value: decimal.Zero}
	}

	addLines := func(mrID uuid.UUID, lines []orderLine) {
		r, ok := rollups[mrID]
		if !ok {
			return
		}
		r.visits++
		for _, l := range lines {
			r.quantity += l.quantity
			if price, ok := prices[l.medicineID]; ok {
				r.value = r.value.Add(price.Mul(decimal.NewFromInt(int64(l.quantity))))
			}
		}
	}
	for _, v := range visits {
		addLines(v.MRID, visitOrderLines(v.Orders))
	}
	for _, mv := range medicalVisits {
		addLines(mv.MRID, medicalVisitOrderLines(mv.Orders))
	}

	written := 0
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, mr := range mrs {
			r := rollups[mr.ID]
			report := &model.MonthlyReport{
				MRID:        mr.ID,
				Month:       month,
				Year:        year,
				TotalVisits: r.visits,
				TotalOrders: r.quantity,
				TotalValue:  r.value,
				Status:      "generated",
			}
			if err := s.reports.Upsert(txCtx, report); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, apperror.Unavailable(err, "failed to store monthly reports")
	}

	return written, nil
}

func (s *monthlyReportService) List(ctx context.Context, mrID *uuid.UUID, page, limit int) ([]model.MonthlyReport, int64, error) {
	reports, total, err := s.reports.List(ctx, mrID, page, limit)
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to list monthly reports")
	}
	return reports, total, nil
}

func (s *monthlyReportService) medicinePrices(ctx context.Context, visits []model.Visit, medicalVisits []model.MedicalVisit) (map[uuid.UUID]decimal.Decimal, error) {
	var ids []uuid.UUID
	for _, v := range visits {
		for _, o := range v.Orders {
			ids = append(ids, o.MedicineID)
		}
	}
	for _, mv := range medicalVisits {
		for _, o := range mv.Orders {
			ids = append(ids, o.MedicineID)
		}
	}

	medicines, err := s.medicines.ListByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch medicine prices")
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(medicines))
	for _, m := range medicines {
		prices[m.ID] = m.UnitPrice
	}
	return prices, nil
}
