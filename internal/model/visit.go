package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitStatus enum constants, shared by visits and medical visits.
// A visit holds exactly one status at a time and transitions only through
// the approval workflow; approved and rejected are terminal.
const (
	VisitStatusPending  = "pending"
	VisitStatusApproved = "approved"
	VisitStatusRejected = "rejected"
)

// Visit is a doctor visit submitted by an MR. Immutable after creation
// except for status.
type Visit struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MRID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"mr_id"`
	DoctorID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date      time.Time    `gorm:"not null;index" json:"date"`
	Notes     string       `gorm:"type:text" json:"notes"`
	Status    string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Orders    []VisitOrder `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE" json:"orders"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// VisitOrder is a medicine line item belonging to exactly one visit
type VisitOrder struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VisitID    uuid.UUID `gorm:"type:uuid;not null;index" json:"visit_id"`
	MedicineID uuid.UUID `gorm:"type:uuid;not null;index" json:"medicine_id"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
