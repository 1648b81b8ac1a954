package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AnswerTypeFreeText    = "free_text"
	AnswerTypeFixedChoice = "fixed_choice"
)

type Puzzle struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	GameID        uint           `json:"game_id" gorm:"not null;uniqueIndex:idx_game_sequence"`
	SequenceOrder int            `json:"sequence_order" gorm:"not null;uniqueIndex:idx_game_sequence"`
	Riddle        string         `json:"riddle" gorm:"not null"`
	Clues         StringList     `json:"clues" gorm:"type:text"`
	Answer        string         `json:"answer" gorm:"not null"`
	AnswerType    string         `json:"answer_type" gorm:"not null;default:'free_text'"` // free_text, fixed_choice
	AnswerOptions StringList     `json:"answer_options" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game Game `json:"game,omitempty"`
}
