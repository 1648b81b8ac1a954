package models

import (
	"time"

	"gorm.io/gorm"
)

// Anchor kinds. A splash screen is shown before the first puzzle (start),
// immediately before a specific puzzle, or after the last puzzle (end).
const (
	AnchorStart  = "start"
	AnchorPuzzle = "puzzle"
	AnchorEnd    = "end"
)

type SplashScreen struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	GameID         uint           `json:"game_id" gorm:"not null;index"`
	Content        string         `json:"content" gorm:"not null"`
	SequenceOrder  int            `json:"sequence_order" gorm:"not null"`
	AnchorKind     string         `json:"anchor_kind" gorm:"not null;default:'start'"` // start, puzzle, end
	AnchorPuzzleID *uint          `json:"anchor_puzzle_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game Game `json:"game,omitempty"`
}

// AnchorsTo reports whether the screen is anchored to the given puzzle.
func (s *SplashScreen) AnchorsTo(puzzleID uint) bool {
	return s.AnchorKind == AnchorPuzzle && s.AnchorPuzzleID != nil && *s.AnchorPuzzleID == puzzleID
}

// SameAnchor reports whether kind/puzzleID matches the current anchor.
// Reassigning to the same anchor is a no-op upstream.
func (s *SplashScreen) SameAnchor(kind string, puzzleID *uint) bool {
	if s.AnchorKind != kind {
		return false
	}
	if kind != AnchorPuzzle {
		return true
	}
	return s.AnchorPuzzleID != nil && puzzleID != nil && *s.AnchorPuzzleID == *puzzleID
}
