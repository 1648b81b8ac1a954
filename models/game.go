package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Location  string         `json:"location"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	UserID    uint           `json:"user_id" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User          User           `json:"user,omitempty"`
	Puzzles       []Puzzle       `json:"puzzles,omitempty" gorm:"foreignKey:GameID"`
	SplashScreens []SplashScreen `json:"splash_screens,omitempty" gorm:"foreignKey:GameID"`
	AccessCodes   []AccessCode   `json:"access_codes,omitempty" gorm:"foreignKey:GameID"`
}
