package model

import (
	"github.com/google/uuid"
)

// ReportRow is one denormalized visit in the report view: resolved names plus
// the complete order-line list. The row always carries the full medicines
// array; how many the UI shows inline is a presentation concern.
type ReportRow struct {
	VisitID          uuid.UUID      `json:"visit_id"`
	MRID             uuid.UUID      `json:"mr_id"`
	MRName           string         `json:"mr_name"`
	CounterpartyID   uuid.UUID      `json:"counterparty_id"`
	CounterpartyName string         `json:"counterparty_name"`
	Date             string         `json:"date"` // YYYY-MM-DD
	Status           string         `json:"status"`
	Medicines        []MedicineLine `json:"medicines"`
	Notes            string         `json:"notes,omitempty"`
}

// LeaderboardEntry ranks one MR by approved visit activity within a window
type LeaderboardEntry struct {
	MRID            uuid.UUID `json:"mr_id"`
	Name            string    `json:"name"`
	VisitCount      int       `json:"visit_count"`
	OrderedQuantity int       `json:"ordered_quantity"`
}

// DashboardStats aggregates headline counts for the admin dashboard
type DashboardStats struct {
	TotalMRs      int64 `json:"total_mrs"`
	TotalDoctors  int64 `json:"total_doctors"`
	TotalVisits   int64 `json:"total_visits"`
	TotalMedicals int64 `json:"total_medicals"`
}

// VisitTrendItem is one month of the six-month visit/order trend
type VisitTrendItem struct {
	Month  string `json:"month"` // "Jan 2024"
	Visits int    `json:"visits"`
	Orders int    `json:"orders"`
}
