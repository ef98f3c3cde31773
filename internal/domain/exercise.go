package domain

import (
	"time"
)

// Modality describes the equipment an exercise is performed with.
type Modality string

const (
	ModalityDumbbell   Modality = "DUMBBELL"
	ModalityBarbell    Modality = "BARBELL"
	ModalityCable      Modality = "CABLE"
	ModalityMachine    Modality = "MACHINE"
	ModalitySmith      Modality = "SMITH"
	ModalityBodyweight Modality = "BODYWEIGHT"
)

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityDumbbell, ModalityBarbell, ModalityCable, ModalityMachine, ModalitySmith, ModalityBodyweight:
		return true
	}
	return false
}

// Exercise is a catalog definition referenced by workout executions.
// System exercises (IsUserCreated == false) have no owner and are visible to
// everyone; user-created exercises are visible only to their creator.
type Exercise struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null;index" json:"name"`
	BodyPart        string    `gorm:"not null" json:"bodyPart"`
	Modality        Modality  `gorm:"type:varchar(16);not null" json:"modality"`
	IsUserCreated   bool      `gorm:"not null;default:false" json:"isUserCreated"`
	CreatedByUserID *uint     `gorm:"index" json:"createdByUserId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
