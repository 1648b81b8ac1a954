package models

import (
	"time"

	"gorm.io/gorm"
)

// Access code states, derived from the stored fields rather than persisted.
const (
	CodeStateUnused      = "unused"
	CodeStateActive      = "active"
	CodeStateExpired     = "expired"
	CodeStateDeactivated = "deactivated"
)

type AccessCode struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	GameID       uint           `json:"game_id" gorm:"not null;index"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null;size:8"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	ActivatedAt  *time.Time     `json:"activated_at"`
	ExpiresAt    *time.Time     `json:"expires_at"` // activated_at + play window, written once
	ExpiryLogged bool           `json:"-" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game    Game           `json:"game,omitempty"`
	Session *PlayerSession `json:"session,omitempty" gorm:"foreignKey:AccessCodeID"`
	Usage   []CodeUsageLog `json:"usage,omitempty" gorm:"foreignKey:AccessCodeID"`
}

// State derives the lifecycle state at the given instant. Deactivation is
// terminal and wins over expiry.
func (c *AccessCode) State(now time.Time) string {
	if !c.IsActive {
		return CodeStateDeactivated
	}
	if c.ActivatedAt == nil {
		return CodeStateUnused
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return CodeStateExpired
	}
	return CodeStateActive
}
