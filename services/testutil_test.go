package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cluetrail/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:cluetrail_test_%d?mode=memory&cache=shared&_busy_timeout=5000", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Puzzle{},
		&models.SplashScreen{},
		&models.AccessCode{},
		&models.PlayerSession{},
		&models.CodeUsageLog{},
	))

	return db
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// seedGame creates the reference fixture: P1 (order 1, two clues, free-text),
// P2 (order 2, one clue, fixed-choice with decoys), S1 anchored at the start,
// S2 anchored to P2.
func seedGame(t *testing.T, db *gorm.DB) (models.Game, []models.Puzzle, []models.SplashScreen) {
	t.Helper()

	game := models.Game{Name: "Harbor Hunt", Location: "Old Harbor", IsActive: true, UserID: 1}
	require.NoError(t, db.Create(&game).Error)

	p1 := models.Puzzle{
		GameID:        game.ID,
		SequenceOrder: 1,
		Riddle:        "I guard the harbor but never move.",
		Clues:         models.StringList{"Look for the light.", "It stands at the pier's end."},
		Answer:        "Lighthouse",
		AnswerType:    models.AnswerTypeFreeText,
	}
	require.NoError(t, db.Create(&p1).Error)

	p2 := models.Puzzle{
		GameID:        game.ID,
		SequenceOrder: 2,
		Riddle:        "Which beast drags ships below?",
		Clues:         models.StringList{"Sailors dread its many arms."},
		Answer:        "Kraken",
		AnswerType:    models.AnswerTypeFixedChoice,
		AnswerOptions: models.StringList{"Mermaid", "Kraken", "Siren"},
	}
	require.NoError(t, db.Create(&p2).Error)

	s1 := models.SplashScreen{
		GameID:        game.ID,
		Content:       "Welcome to the harbor.",
		SequenceOrder: 1,
		AnchorKind:    models.AnchorStart,
	}
	require.NoError(t, db.Create(&s1).Error)

	s2 := models.SplashScreen{
		GameID:         game.ID,
		Content:        "The water darkens...",
		SequenceOrder:  1,
		AnchorKind:     models.AnchorPuzzle,
		AnchorPuzzleID: &p2.ID,
	}
	require.NoError(t, db.Create(&s2).Error)

	return game, []models.Puzzle{p1, p2}, []models.SplashScreen{s1, s2}
}

func seedCode(t *testing.T, db *gorm.DB, gameID uint, code string) models.AccessCode {
	t.Helper()

	ac := models.AccessCode{GameID: gameID, Code: code, IsActive: true}
	require.NoError(t, db.Create(&ac).Error)
	return ac
}

func newEngine(t *testing.T) (*gorm.DB, *SessionService, *CodeService, *AnswerService) {
	t.Helper()

	db := setupDB(t)
	sessions := NewSessionService(db, setupRedis(t))
	codes := NewCodeService(db, sessions)
	answers := NewAnswerService(sessions, codes)
	return db, sessions, codes, answers
}

func usageActions(t *testing.T, db *gorm.DB, codeID uint) []string {
	t.Helper()

	var logs []models.CodeUsageLog
	require.NoError(t, db.Where("access_code_id = ?", codeID).Order("created_at").Find(&logs).Error)

	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}

var testEpoch = time.Date(2025, time.June, 7, 10, 0, 0, 0, time.UTC)
