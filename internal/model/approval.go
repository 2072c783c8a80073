package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ApprovalKind discriminates the four entity kinds flowing through the
// unified pending approval queue. Adding a kind means extending every
// switch over ApprovalKind.
type ApprovalKind string

const (
	KindVisit        ApprovalKind = "visit"
	KindMedicalVisit ApprovalKind = "medical_visit"
	KindDoctor       ApprovalKind = "doctor"
	KindUser         ApprovalKind = "user"
)

// ParseApprovalKind validates a kind string from the URL path
func ParseApprovalKind(s string) (ApprovalKind, error) {
	switch ApprovalKind(s) {
	case KindVisit, KindMedicalVisit, KindDoctor, KindUser:
		return ApprovalKind(s), nil
	default:
		return "", fmt.Errorf("unknown approval kind: %q", s)
	}
}

// PendingApprovalItem is one entry in the admin's unified approval queue.
// It is derived, never persisted; a fresh ListPending re-queries the store.
type PendingApprovalItem struct {
	Kind  ApprovalKind `json:"kind"`
	ID    uuid.UUID    `json:"id"`
	Name  string       `json:"name"`                   // submitting MR for visits, record name otherwise
	Date  string       `json:"date,omitempty"`         // formatted visit date, visits only
	Extra string       `json:"extra,omitempty"`        // doctor name / facility name / email, kind-specific
}

// MedicineLine is one resolved order line inside a detail payload or report row
type MedicineLine struct {
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
}

// ApprovalDetail is the enriched payload behind a queue entry. Only the
// fields matching Kind are populated.
type ApprovalDetail struct {
	Kind             ApprovalKind   `json:"kind"`
	Visit            *Visit         `json:"visit,omitempty"`
	MedicalVisit     *MedicalVisit  `json:"medical_visit,omitempty"`
	Doctor           *Doctor        `json:"doctor,omitempty"`
	User             *User          `json:"user,omitempty"`
	MRName           string         `json:"mr_name,omitempty"`
	CounterpartyName string         `json:"counterparty_name,omitempty"`
	Medicines        []MedicineLine `json:"medicines,omitempty"`
}
