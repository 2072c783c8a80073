package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Leaderboard windows
const (
	WindowAll    = "all"
	WindowWeekly = "weekly" // last 7 days inclusive of today
	WindowDaily  = "daily"  // today only
)

const leaderboardCacheTTL = time.Minute

// StatisticsService computes the MR leaderboard and the admin dashboard
// aggregates. All numbers are derived on demand from the store; the
// leaderboard additionally goes through a short-lived cache because it is
// the most expensive read on the dashboard.
type StatisticsService interface {
	Leaderboard(ctx context.Context, window string) ([]model.LeaderboardEntry, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	VisitTrend(ctx context.Context) ([]model.VisitTrendItem, error)
}

type statisticsService struct {
	users         repository.UserRepository
	doctors       repository.DoctorRepository
	medicals      repository.MedicalRepository
	visits        repository.VisitRepository
	medicalVisits repository.MedicalVisitRepository
	cache         *redis.Client // nil disables caching
	now           func() time.Time
}

// NewStatisticsService returns a new instance of StatisticsService.
// cache may be nil, in which case every read hits the store.
func NewStatisticsService(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	medicals repository.MedicalRepository,
	visits repository.VisitRepository,
	medicalVisits repository.MedicalVisitRepository,
	cache *redis.Client,
) StatisticsService {
	return &statisticsService{
		users:         users,
		doctors:       doctors,
		medicals:      medicals,
		visits:        visits,
		medicalVisits: medicalVisits,
		cache:         cache,
		now:           time.Now,
	}
}

// Leaderboard ranks MRs by approved visit count within the window. Every MR
// appears exactly once, zero-activity MRs included, so the fetch goes
// MR-first and visits are tallied into it rather than grouped on their own.
func (s *statisticsService) Leaderboard(ctx context.Context, window string) ([]model.LeaderboardEntry, error) {
	start, err := s.windowStart(window)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cachedLeaderboard(ctx, window); ok {
		return cached, nil
	}

	mrs, err := s.users.ListByRole(ctx, model.RoleMR)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch representatives")
	}

	filter := repository.VisitFilter{Status: model.VisitStatusApproved, Start: start}
	visits, err := s.visits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch approved visits")
	}
	medicalVisits, err := s.medicalVisits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch approved medical visits")
	}

	type tally struct {
		visits   int
		quantity int
	}
	tallies := make(map[uuid.UUID]*tally, len(mrs))
	for i := range mrs {
		tallies[mrs[i].ID] = &tally{}
	}
	for _, v := range visits {
		t, ok := tallies[v.MRID]
		if !ok {
			continue // visit by a since-removed or non-MR account
		}
		t.visits++
		for _, o := range v.Orders {
			t.quantity += o.Quantity
		}
	}
	for _, mv := range medicalVisits {
		t, ok := tallies[mv.MRID]
		if !ok {
			continue
		}
		t.visits++
		for _, o := range mv.Orders {
			t.quantity += o.Quantity
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(mrs))
	for _, mr := range mrs {
		t := tallies[mr.ID]
		entries = append(entries, model.LeaderboardEntry{
			MRID:            mr.ID,
			Name:            mr.Name,
			VisitCount:      t.visits,
			OrderedQuantity: t.quantity,
		})
	}

	// Stable sort keeps the MR fetch order among equal counts, so ties do
	// not reshuffle between refreshes.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].VisitCount > entries[j].VisitCount
	})

	s.storeLeaderboard(ctx, window, entries)
	return entries, nil
}

// DashboardStats returns the headline counts for the admin landing page
func (s *statisticsService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	totalMRs, err := s.users.CountByRole(ctx, model.RoleMR)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to count representatives")
	}
	totalDoctors, err := s.doctors.Count(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to count doctors")
	}
	totalMedicals, err := s.medicals.Count(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to count medical facilities")
	}
	totalVisits, err := s.visits.Count(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to count visits")
	}
	totalMedicalVisits, err := s.medicalVisits.Count(ctx)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to count medical visits")
	}

	return &model.DashboardStats{
		TotalMRs:      totalMRs,
		TotalDoctors:  totalDoctors,
		TotalMedicals: totalMedicals,
		TotalVisits:   totalVisits + totalMedicalVisits,
	}, nil
}

// VisitTrend buckets approved visits of the last six calendar months,
// current month included, into per-month visit and ordered-quantity totals.
func (s *statisticsService) VisitTrend(ctx context.Context) ([]model.VisitTrendItem, error) {
	now := s.now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)

	filter := repository.VisitFilter{Status: model.VisitStatusApproved, Start: &firstMonth}
	visits, err := s.visits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch approved visits")
	}
	medicalVisits, err := s.medicalVisits.ListWithOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to fetch approved medical visits")
	}

	items := make([]model.VisitTrendItem, 6)
	index := make(map[string]int, 6)
	for i := 0; i < 6; i++ {
		label := firstMonth.AddDate(0, i, 0).Format("Jan 2006")
		items[i] = model.VisitTrendItem{Month: label}
		index[label] = i
	}

	add := func(date time.Time, quantity int) {
		if i, ok := index[date.Format("Jan 2006")]; ok {
			items[i].Visits++
			items[i].Orders += quantity
		}
	}
	for _, v := range visits {
		add(v.Date, orderQuantitySum(visitOrderLines(v.Orders)))
	}
	for _, mv := range medicalVisits {
		add(mv.VisitDate, orderQuantitySum(medicalVisitOrderLines(mv.Orders)))
	}

	return items, nil
}

// windowStart maps a window selector to its inclusive lower bound.
// nil means unbounded (window "all").
func (s *statisticsService) windowStart(window string) (*time.Time, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch window {
	case WindowAll, "":
		return nil, nil
	case WindowWeekly:
		start := today.AddDate(0, 0, -6)
		return &start, nil
	case WindowDaily:
		return &today, nil
	default:
		return nil, apperror.Validation("unknown leaderboard window: %q", window)
	}
}

func (s *statisticsService) cachedLeaderboard(ctx context.Context, window string) ([]model.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, leaderboardCacheKey(window)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("leaderboard cache read failed")
		}
		return nil, false
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *statisticsService) storeLeaderboard(ctx context.Context, window string, entries []model.LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, leaderboardCacheKey(window), raw, leaderboardCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}

func leaderboardCacheKey(window string) string {
	if window == "" {
		window = WindowAll
	}
	return "leaderboard:" + window
}

func orderQuantitySum(lines []orderLine) int {
	total := 0
	for _, l := range lines {
		total += l.quantity
	}
	return total
}
