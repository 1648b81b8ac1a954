package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerSession is the durable progress record for one access code. It is
// created on first redemption and survives until the owning game is deleted.
type PlayerSession struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	AccessCodeID     uint           `json:"access_code_id" gorm:"uniqueIndex;not null"`
	CurrentPuzzleID  *uint          `json:"current_puzzle_id"` // nil once the final puzzle is completed
	CompletedPuzzles UintSet        `json:"completed_puzzles" gorm:"type:text"`
	ClueReveals      RevealCounts   `json:"clue_reveals" gorm:"type:text"`
	LastActivity     time.Time      `json:"last_activity"`
	Email            string         `json:"email"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	AccessCode AccessCode `json:"access_code,omitempty"`
}

// Finished reports whether the player has completed the final puzzle.
func (s *PlayerSession) Finished() bool {
	return s.CurrentPuzzleID == nil && len(s.CompletedPuzzles) > 0
}
