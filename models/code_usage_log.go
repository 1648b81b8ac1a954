package models

import (
	"time"
)

// Usage log actions.
const (
	UsageActivated = "activated"
	UsageExpired   = "expired"
	UsageCompleted = "completed"
)

// CodeUsageLog is an append-only event record written on lifecycle
// transitions. Rows are never updated or deleted by the engine.
type CodeUsageLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EventID      string    `json:"event_id" gorm:"uniqueIndex;not null;size:36"`
	AccessCodeID uint      `json:"access_code_id" gorm:"not null;index"`
	Action       string    `json:"action" gorm:"not null"` // activated, expired, completed
	Metadata     Metadata  `json:"metadata" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	AccessCode AccessCode `json:"access_code,omitempty"`
}
