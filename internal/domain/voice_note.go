package domain

import (
	"time"
)

// VoiceNote stores metadata about an audio clip a user submitted for
// transcription. The raw audio resides in S3 under S3ObjectKey.
type VoiceNote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	S3ObjectKey string    `gorm:"not null" json:"-"` // internal use only
	ContentType string    `gorm:"not null" json:"contentType"`
	Size        int64     `gorm:"not null" json:"size"`
	Transcript  string    `json:"transcript"`
	CreatedAt   time.Time `json:"createdAt"`
}
