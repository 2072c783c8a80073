package service

import (
	"context"
	"strings"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const reportDateFormat = "2006-01-02"

// ReportQuery carries the caller identity and the optional report filters.
// Requester fields come from the auth context, never from the request body,
// so an MR cannot widen the scope past their own visits.
type ReportQuery struct {
	RequesterID    uuid.UUID
	RequesterRole  string
	MRID           *uuid.UUID // admin narrowing to one representative; ignored for MR callers
	CounterpartyID *uuid.UUID // doctor id or medical facility id
	MedicineID     *uuid.UUID
	StartDate      string // YYYY-MM-DD, inclusive
	EndDate        string // YYYY-MM-DD, inclusive
	Search         string
	Page           int
	Limit          int
}

// ReportService builds the denormalized visit report views. Rows are
// assembled from a single scoped fetch plus batched name lookups; the
// optional filters and pagination are applied to the assembled rows.
type ReportService interface {
	VisitReport(ctx context.Context, query ReportQuery) ([]model.ReportRow, int64, error)
	MedicalVisitReport(ctx context.Context, query ReportQuery) ([]model.ReportRow, int64, error)
}

type reportService struct {
	visits        repository.VisitRepository
	medicalVisits repository.MedicalVisitRepository
	users         repository.UserRepository
	doctors       repository.DoctorRepository
	medicals      repository.MedicalRepository
	medicines     repository.MedicineRepository
}

// NewReportService returns a new instance of ReportService
func NewReportService(
	visits repository.VisitRepository,
	medicalVisits repository.MedicalVisitRepository,
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	medicals repository.MedicalRepository,
	medicines repository.MedicineRepository,
) ReportService {
	return &reportService{
		visits:        visits,
		medicalVisits: medicalVisits,
		users:         users,
		doctors:       doctors,
		medicals:      medicals,
		medicines:     medicines,
	}
}

// VisitReport returns one row per doctor visit in scope, newest first
func (s *reportService) VisitReport(ctx context.Context, query ReportQuery) ([]model.ReportRow, int64, error) {
	window, err := parseDateWindow(query.StartDate, query.EndDate)
	if err != nil {
		return nil, 0, err
	}

	visits, err := s.visits.ListWithOrders(ctx, repository.VisitFilter{MRID: scopeMRID(query)})
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to fetch visits")
	}

	mrIDs := make([]uuid.UUID, 0, len(visits))
	counterpartyIDs := make([]uuid.UUID, 0, len(visits))
	var medicineIDs []uuid.UUID
	for _, v := range visits {
		mrIDs = append(mrIDs, v.MRID)
		counterpartyIDs = append(counterpartyIDs, v.DoctorID)
		for _, o := range v.Orders {
			medicineIDs = append(medicineIDs, o.MedicineID)
		}
	}
	mrNames, counterpartyNames, medicineNames := s.resolveReportNames(ctx, mrIDs, counterpartyIDs, medicineIDs, s.doctors.NamesByIDs)

	rows := make([]model.ReportRow, 0, len(visits))
	for _, v := range visits {
		lines := visitOrderLines(v.Orders)
		// The medicine filter needs raw order ids, so it applies here; rows
		// only carry resolved names.
		if query.MedicineID != nil && !linesContainMedicine(lines, *query.MedicineID) {
			continue
		}
		rows = append(rows, model.ReportRow{
			VisitID:          v.ID,
			MRID:             v.MRID,
			MRName:           nameOrUnknown(mrNames, v.MRID),
			CounterpartyID:   v.DoctorID,
			CounterpartyName: nameOrNA(counterpartyNames, v.DoctorID),
			Date:             v.Date.Format(reportDateFormat),
			Status:           v.Status,
			Medicines:        reportLines(lines, medicineNames),
			Notes:            v.Notes,
		})
	}

	return paginateRows(filterRows(rows, query, window), query.Page, query.Limit)
}

// MedicalVisitReport returns one row per facility visit in scope, newest first
func (s *reportService) MedicalVisitReport(ctx context.Context, query ReportQuery) ([]model.ReportRow, int64, error) {
	window, err := parseDateWindow(query.StartDate, query.EndDate)
	if err != nil {
		return nil, 0, err
	}

	visits, err := s.medicalVisits.ListWithOrders(ctx, repository.VisitFilter{MRID: scopeMRID(query)})
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to fetch medical visits")
	}

	mrIDs := make([]uuid.UUID, 0, len(visits))
	counterpartyIDs := make([]uuid.UUID, 0, len(visits))
	var medicineIDs []uuid.UUID
	for _, v := range visits {
		mrIDs = append(mrIDs, v.MRID)
		counterpartyIDs = append(counterpartyIDs, v.MedicalID)
		for _, o := range v.Orders {
			medicineIDs = append(medicineIDs, o.MedicineID)
		}
	}
	mrNames, counterpartyNames, medicineNames := s.resolveReportNames(ctx, mrIDs, counterpartyIDs, medicineIDs, s.medicals.NamesByIDs)

	rows := make([]model.ReportRow, 0, len(visits))
	for _, v := range visits {
		lines := medicalVisitOrderLines(v.Orders)
		if query.MedicineID != nil && !linesContainMedicine(lines, *query.MedicineID) {
			continue
		}
		rows = append(rows, model.ReportRow{
			VisitID:          v.ID,
			MRID:             v.MRID,
			MRName:           nameOrUnknown(mrNames, v.MRID),
			CounterpartyID:   v.MedicalID,
			CounterpartyName: nameOrNA(counterpartyNames, v.MedicalID),
			Date:             v.VisitDate.Format(reportDateFormat),
			Status:           v.Status,
			Medicines:        reportLines(lines, medicineNames),
			Notes:            v.Notes,
		})
	}

	return paginateRows(filterRows(rows, query, window), query.Page, query.Limit)
}

type nameLookup func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

func (s *reportService) resolveReportNames(
	ctx context.Context,
	mrIDs, counterpartyIDs, medicineIDs []uuid.UUID,
	counterparties nameLookup,
) (mrNames, counterpartyNames, medicineNames map[uuid.UUID]string) {
	mrNames, err := s.users.NamesByIDs(ctx, dedupe(mrIDs))
	if err != nil {
		log.Warn().Err(err).Msg("report: MR name resolution failed")
		mrNames = map[uuid.UUID]string{}
	}
	counterpartyNames, err = counterparties(ctx, dedupe(counterpartyIDs))
	if err != nil {
		log.Warn().Err(err).Msg("report: counterparty name resolution failed")
		counterpartyNames = map[uuid.UUID]string{}
	}
	medicineNames, err = s.medicines.NamesByIDs(ctx, dedupe(medicineIDs))
	if err != nil {
		log.Warn().Err(err).Msg("report: medicine name resolution failed")
		medicineNames = map[uuid.UUID]string{}
	}
	return mrNames, counterpartyNames, medicineNames
}

func reportLines(lines []orderLine, names map[uuid.UUID]string) []model.MedicineLine {
	resolved := make([]model.MedicineLine, 0, len(lines))
	for _, l := range lines {
		resolved = append(resolved, model.MedicineLine{
			MedicineName: nameOrNA(names, l.medicineID),
			Quantity:     l.quantity,
		})
	}
	return resolved
}

// scopeMRID pins MR callers to their own visits regardless of any filter they
// pass. Admins see everything unless they narrow to one representative, and
// that narrowing is pushed to the store, not applied in memory.
func scopeMRID(query ReportQuery) *uuid.UUID {
	if query.RequesterRole == model.RoleMR {
		id := query.RequesterID
		return &id
	}
	return query.MRID
}

type dateWindow struct {
	start string
	end   string
}

// parseDateWindow validates the optional YYYY-MM-DD bounds. Rows carry dates
// in the same format, so the window compares lexically at day granularity.
func parseDateWindow(start, end string) (dateWindow, error) {
	for _, bound := range []string{start, end} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(reportDateFormat, bound); err != nil {
			return dateWindow{}, apperror.Validation("invalid date %q, expected YYYY-MM-DD", bound)
		}
	}
	if start != "" && end != "" && start > end {
		return dateWindow{}, apperror.Validation("start date %s is after end date %s", start, end)
	}
	return dateWindow{start: start, end: end}, nil
}

func filterRows(rows []model.ReportRow, query ReportQuery, window dateWindow) []model.ReportRow {
	search := strings.ToLower(strings.TrimSpace(query.Search))

	filtered := make([]model.ReportRow, 0, len(rows))
	for _, row := range rows {
		if query.CounterpartyID != nil && row.CounterpartyID != *query.CounterpartyID {
			continue
		}
		if window.start != "" && row.Date < window.start {
			continue
		}
		if window.end != "" && row.Date > window.end {
			continue
		}
		if search != "" && !rowMatchesSearch(row, search) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func linesContainMedicine(lines []orderLine, medicineID uuid.UUID) bool {
	for _, l := range lines {
		if l.medicineID == medicineID {
			return true
		}
	}
	return false
}

func rowMatchesSearch(row model.ReportRow, search string) bool {
	if strings.Contains(strings.ToLower(row.Date), search) ||
		strings.Contains(strings.ToLower(row.Status), search) ||
		strings.Contains(strings.ToLower(row.MRName), search) ||
		strings.Contains(strings.ToLower(row.CounterpartyName), search) {
		return true
	}
	for _, line := range row.Medicines {
		if strings.Contains(strings.ToLower(line.MedicineName), search) {
			return true
		}
	}
	return false
}

// paginateRows slices the filtered set; total reflects the filtered count,
// not the page size. A page past the end yields an empty slice, not an error.
func paginateRows(rows []model.ReportRow, page, limit int) ([]model.ReportRow, int64, error) {
	total := int64(len(rows))
	start := (page - 1) * limit
	if start >= len(rows) {
		return []model.ReportRow{}, total, nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}
