package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalVisit is a facility visit. Structurally a sibling of Visit but kept
// as a distinct entity: its approval queue and report path are independent.
type MedicalVisit struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MRID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"mr_id"`
	MedicalID uuid.UUID           `gorm:"type:uuid;not null;index" json:"medical_id"`
	VisitDate time.Time           `gorm:"not null;index" json:"visit_date"`
	Notes     string              `gorm:"type:text" json:"notes"`
	Status    string              `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Orders    []MedicalVisitOrder `gorm:"foreignKey:MedicalVisitID;constraint:OnDelete:CASCADE" json:"orders"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// MedicalVisitOrder is a medicine line item belonging to exactly one medical visit
type MedicalVisitOrder struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MedicalVisitID uuid.UUID `gorm:"type:uuid;not null;index" json:"medical_visit_id"`
	MedicineID     uuid.UUID `gorm:"type:uuid;not null;index" json:"medicine_id"`
	Quantity       int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
