package domain

import (
	"time"
)

// Workout is the aggregate root for a training session. A workout with a
// non-nil FinishedAt is immutable: no execution, set, or metadata under it
// may be created, updated, deleted, or reordered.
type Workout struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FinishedAt      *time.Time `gorm:"index" json:"finishedAt,omitempty"`
	CreatedByUserID uint       `gorm:"not null;index" json:"createdByUserId"`
	UpdatedByUserID uint       `gorm:"not null" json:"updatedByUserId"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	ExerciseExecutions []ExerciseExecution `gorm:"foreignKey:WorkoutID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"exerciseExecutions"`
}

// IsFinished reports whether the workout has been closed for edits.
func (w *Workout) IsFinished() bool {
	return w.FinishedAt != nil
}

// ExerciseExecution records one exercise performed within a workout. The
// composite primary key guarantees at most one execution per exercise per
// workout. ExerciseOrder values need not be contiguous except immediately
// after a reorder, which assigns 1..N.
type ExerciseExecution struct {
	WorkoutID     uint      `gorm:"primaryKey;autoIncrement:false" json:"workoutId"`
	ExerciseID    uint      `gorm:"primaryKey;autoIncrement:false" json:"exerciseId"`
	ExerciseOrder int       `gorm:"not null" json:"exerciseOrder"`
	NoteText      *string   `json:"noteText,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Exercise Exercise `gorm:"foreignKey:ExerciseID" json:"-"`
	Sets     []Set    `gorm:"foreignKey:WorkoutID,ExerciseID;references:WorkoutID,ExerciseID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"sets"`
}

// Set is a single performed set within an execution. Sets carry no meaningful
// identity beyond the current view; a full-replace upsert discards and
// recreates them. Insertion order is preserved for display only.
type Set struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WorkoutID  uint      `gorm:"not null;index:idx_sets_execution" json:"workoutId"`
	ExerciseID uint      `gorm:"not null;index:idx_sets_execution" json:"exerciseId"`
	Weight     float64   `gorm:"not null" json:"weight"`
	CleanReps  int       `gorm:"not null" json:"cleanReps"`
	ForcedReps int       `gorm:"not null;default:0" json:"forcedReps"`
	NoteText   *string   `json:"noteText,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
