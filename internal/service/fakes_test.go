package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. Slices keep insertion order so tests can rely
// on the same "store default order" the real queries produce.

var errLookupDown = errors.New("lookup unavailable")

type fakeUserRepo struct {
	users     []*model.User
	failNames bool
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListPendingMRs(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == model.RoleMR && u.Status == model.UserStatusPending {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.failNames {
		return nil, errLookupDown
	}
	names := make(map[uuid.UUID]string)
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				names[id] = u.Name
			}
		}
	}
	return names, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	for i, u := range f.users {
		if u.ID == user.ID {
			copied := *user
			f.users[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to string) (int64, error) {
	for _, u := range f.users {
		if u.ID == id && u.Status == from {
			u.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var total int64
	for _, u := range f.users {
		if u.Role == role {
			total++
		}
	}
	return total, nil
}

type fakeDoctorRepo struct {
	doctors   []*model.Doctor
	failNames bool
}

func (f *fakeDoctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	f.doctors = append(f.doctors, doctor)
	return nil
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDoctorRepo) List(_ context.Context, page, limit int) ([]model.Doctor, int64, error) {
	var out []model.Doctor
	for _, d := range f.doctors {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDoctorRepo) ListUnverified(_ context.Context) ([]model.Doctor, error) {
	var out []model.Doctor
	for _, d := range f.doctors {
		if !d.IsVerified {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.failNames {
		return nil, errLookupDown
	}
	names := make(map[uuid.UUID]string)
	for _, d := range f.doctors {
		for _, id := range ids {
			if d.ID == id {
				names[id] = d.Name
			}
		}
	}
	return names, nil
}

func (f *fakeDoctorRepo) Update(_ context.Context, doctor *model.Doctor) error {
	for i, d := range f.doctors {
		if d.ID == doctor.ID {
			copied := *doctor
			f.doctors[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDoctorRepo) Verify(_ context.Context, id uuid.UUID) (int64, error) {
	for _, d := range f.doctors {
		if d.ID == id && !d.IsVerified {
			d.IsVerified = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeDoctorRepo) DeleteUnverified(_ context.Context, id uuid.UUID) (int64, error) {
	for i, d := range f.doctors {
		if d.ID == id && !d.IsVerified {
			f.doctors = append(f.doctors[:i], f.doctors[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeDoctorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.doctors)), nil
}

type fakeMedicalRepo struct {
	medicals  []*model.Medical
	failNames bool
}

func (f *fakeMedicalRepo) Create(_ context.Context, medical *model.Medical) error {
	if medical.ID == uuid.Nil {
		medical.ID = uuid.New()
	}
	f.medicals = append(f.medicals, medical)
	return nil
}

func (f *fakeMedicalRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Medical, error) {
	for _, m := range f.medicals {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMedicalRepo) List(_ context.Context, page, limit int) ([]model.Medical, int64, error) {
	var out []model.Medical
	for _, m := range f.medicals {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMedicalRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.failNames {
		return nil, errLookupDown
	}
	names := make(map[uuid.UUID]string)
	for _, m := range f.medicals {
		for _, id := range ids {
			if m.ID == id {
				names[id] = m.Name
			}
		}
	}
	return names, nil
}

func (f *fakeMedicalRepo) Update(_ context.Context, medical *model.Medical) error {
	for i, m := range f.medicals {
		if m.ID == medical.ID {
			copied := *medical
			f.medicals[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMedicalRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range f.medicals {
		if m.ID == id {
			f.medicals = append(f.medicals[:i], f.medicals[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMedicalRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.medicals)), nil
}

type fakeMedicineRepo struct {
	medicines []*model.Medicine
	failNames bool
}

func (f *fakeMedicineRepo) Create(_ context.Context, medicine *model.Medicine) error {
	if medicine.ID == uuid.Nil {
		medicine.ID = uuid.New()
	}
	f.medicines = append(f.medicines, medicine)
	return nil
}

func (f *fakeMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Medicine, error) {
	for _, m := range f.medicines {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMedicineRepo) List(_ context.Context, page, limit int) ([]model.Medicine, int64, error) {
	var out []model.Medicine
	for _, m := range f.medicines {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMedicineRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Medicine, error) {
	var out []model.Medicine
	for _, m := range f.medicines {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, *m)
			}
		}
	}
	return out, nil
}

func (f *fakeMedicineRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.failNames {
		return nil, errLookupDown
	}
	names := make(map[uuid.UUID]string)
	for _, m := range f.medicines {
		for _, id := range ids {
			if m.ID == id {
				names[id] = m.Name
			}
		}
	}
	return names, nil
}

func (f *fakeMedicineRepo) Update(_ context.Context, medicine *model.Medicine) error {
	for i, m := range f.medicines {
		if m.ID == medicine.ID {
			copied := *medicine
			f.medicines[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range f.medicines {
		if m.ID == id {
			f.medicines = append(f.medicines[:i], f.medicines[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeVisitRepo struct {
	visits     []*model.Visit
	lastFilter repository.VisitFilter
}

func (f *fakeVisitRepo) Create(_ context.Context, visit *model.Visit) error {
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	f.visits = append(f.visits, visit)
	return nil
}

func (f *fakeVisitRepo) GetByIDWithOrders(_ context.Context, id uuid.UUID) (*model.Visit, error) {
	for _, v := range f.visits {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVisitRepo) ListWithOrders(_ context.Context, filter repository.VisitFilter) ([]model.Visit, error) {
	f.lastFilter = filter
	var out []model.Visit
	for _, v := range f.visits {
		if filter.MRID != nil && v.MRID != *filter.MRID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Start != nil && v.Date.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && v.Date.After(*filter.End) {
			continue
		}
		out = append(out, *v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeVisitRepo) ListPending(_ context.Context) ([]model.Visit, error) {
	var out []model.Visit
	for _, v := range f.visits {
		if v.Status == model.VisitStatusPending {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to string) (int64, error) {
	for _, v := range f.visits {
		if v.ID == id && v.Status == from {
			v.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeVisitRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.visits)), nil
}

type fakeMedicalVisitRepo struct {
	visits     []*model.MedicalVisit
	lastFilter repository.VisitFilter
}

func (f *fakeMedicalVisitRepo) Create(_ context.Context, visit *model.MedicalVisit) error {
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	f.visits = append(f.visits, visit)
	return nil
}

func (f *fakeMedicalVisitRepo) GetByIDWithOrders(_ context.Context, id uuid.UUID) (*model.MedicalVisit, error) {
	for _, v := range f.visits {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMedicalVisitRepo) ListWithOrders(_ context.Context, filter repository.VisitFilter) ([]model.MedicalVisit, error) {
	f.lastFilter = filter
	var out []model.MedicalVisit
	for _, v := range f.visits {
		if filter.MRID != nil && v.MRID != *filter.MRID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Start != nil && v.VisitDate.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && v.VisitDate.After(*filter.End) {
			continue
		}
		out = append(out, *v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out, nil
}

func (f *fakeMedicalVisitRepo) ListPending(_ context.Context) ([]model.MedicalVisit, error) {
	var out []model.MedicalVisit
	for _, v := range f.visits {
		if v.Status == model.VisitStatusPending {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeMedicalVisitRepo) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to string) (int64, error) {
	for _, v := range f.visits {
		if v.ID == id && v.Status == from {
			v.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeMedicalVisitRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.visits)), nil
}

type fakeMonthlyReportRepo struct {
	reports []*model.MonthlyReport
}

func (f *fakeMonthlyReportRepo) Upsert(_ context.Context, report *model.MonthlyReport) error {
	for i, r := range f.reports {
		if r.MRID == report.MRID && r.Month == report.Month && r.Year == report.Year {
			copied := *report
			copied.ID = r.ID
			f.reports[i] = &copied
			return nil
		}
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	copied := *report
	f.reports = append(f.reports, &copied)
	return nil
}

func (f *fakeMonthlyReportRepo) List(_ context.Context, mrID *uuid.UUID, page, limit int) ([]model.MonthlyReport, int64, error) {
	var out []model.MonthlyReport
	for _, r := range f.reports {
		if mrID != nil && r.MRID != *mrID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type fakeRefreshTokenRepo struct {
	tokens []*model.RefreshToken
}

func (f *fakeRefreshTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeRefreshTokenRepo) GetValid(_ context.Context, token string) (*model.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.Token == token && t.ExpiresAt.After(time.Now()) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefreshTokenRepo) DeleteByToken(_ context.Context, token string) error {
	for i, t := range f.tokens {
		if t.Token == token {
			f.tokens = append(f.tokens[:i], f.tokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	var kept []*model.RefreshToken
	for _, t := range f.tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type capturingPublisher struct {
	messages [][]byte
}

func (p *capturingPublisher) Publish(message []byte) {
	p.messages = append(p.messages, message)
}
