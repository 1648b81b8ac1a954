package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"cluetrail/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionService owns a player's progress through a composed timeline. All
// mutations of one session are serialized through a per-session lock so a
// rapid double-submit cannot race the completion append or a clue counter.
type SessionService struct {
	db    *gorm.DB
	redis *redis.Client
	locks sync.Map // session id -> *sync.Mutex
}

func NewSessionService(db *gorm.DB, redisClient *redis.Client) *SessionService {
	return &SessionService{
		db:    db,
		redis: redisClient,
	}
}

func (s *SessionService) lock(sessionID uint) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// TimelineForCode returns the composed timeline for the code's game. The
// composition is cached in Redis for the length of the play window so an
// in-flight session keeps the snapshot it started with; the database stays
// authoritative on a cache miss.
func (s *SessionService) TimelineForCode(code *models.AccessCode) (Timeline, error) {
	if tl, ok := s.cachedTimeline(code.Code); ok {
		return tl, nil
	}

	var puzzles []models.Puzzle
	if err := s.db.Where("game_id = ?", code.GameID).Order("sequence_order").Find(&puzzles).Error; err != nil {
		return Timeline{}, err
	}
	var splashes []models.SplashScreen
	if err := s.db.Where("game_id = ?", code.GameID).Order("sequence_order").Find(&splashes).Error; err != nil {
		return Timeline{}, err
	}

	tl := ComposeTimeline(puzzles, splashes)
	s.cacheTimeline(code.Code, tl)
	return tl, nil
}

func (s *SessionService) cachedTimeline(code string) (Timeline, bool) {
	if s.redis == nil {
		return Timeline{}, false
	}
	data, err := s.redis.Get(context.Background(), "timeline:"+code).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("code", code).Warn("redis timeline read failed")
		}
		return Timeline{}, false
	}
	var tl Timeline
	if err := json.Unmarshal([]byte(data), &tl); err != nil {
		logrus.WithError(err).WithField("code", code).Warn("corrupt timeline snapshot, recomposing")
		return Timeline{}, false
	}
	return tl, true
}

func (s *SessionService) cacheTimeline(code string, tl Timeline) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(tl)
	if err != nil {
		return
	}
	if err := s.redis.Set(context.Background(), "timeline:"+code, data, PlayWindow).Err(); err != nil {
		logrus.WithError(err).WithField("code", code).Warn("redis timeline write failed")
	}
}

// InvalidateTimeline drops the cached snapshot after an administrative edit.
// In-flight sessions recompose on their next read.
func (s *SessionService) InvalidateTimeline(code string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(context.Background(), "timeline:"+code)
}

// GetOrCreate returns the session for an access code, creating it positioned
// at the first puzzle when none exists. The unique index on access_code_id
// makes concurrent creation collapse to one row; the loser of that race
// re-reads the winner's session.
func (s *SessionService) GetOrCreate(code *models.AccessCode, email string, now time.Time) (*models.PlayerSession, error) {
	var session models.PlayerSession
	err := s.db.Where("access_code_id = ?", code.ID).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tl, err := s.TimelineForCode(code)
	if err != nil {
		return nil, err
	}

	session = models.PlayerSession{
		AccessCodeID:     code.ID,
		CompletedPuzzles: models.UintSet{},
		ClueReveals:      models.RevealCounts{},
		LastActivity:     now,
		Email:            email,
	}
	if first := tl.NextIncomplete(nil); first != nil {
		session.CurrentPuzzleID = &first.ID
	}

	if err := s.db.Create(&session).Error; err != nil {
		// Lost a creation race; the winner's row is the session.
		var existing models.PlayerSession
		if ferr := s.db.Where("access_code_id = ?", code.ID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"access_code_id": code.ID,
		"session_id":     session.ID,
	}).Info("player session created")

	return &session, nil
}

// ByAccessCode returns the persisted session for resumption.
func (s *SessionService) ByAccessCode(codeID uint) (*models.PlayerSession, error) {
	var session models.PlayerSession
	if err := s.db.Where("access_code_id = ?", codeID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordCompletion idempotently marks a puzzle completed and advances the
// session to the next uncompleted puzzle in the timeline. Returns the
// refreshed session and whether this call finished the timeline.
func (s *SessionService) RecordCompletion(sessionID uint, puzzleID uint, tl Timeline, now time.Time) (*models.PlayerSession, bool, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	var session models.PlayerSession
	finished := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			return err
		}

		if !session.CompletedPuzzles.Add(puzzleID) {
			// Already completed; resubmission is a no-op success.
			return nil
		}

		next := tl.NextIncomplete(session.CompletedPuzzles)
		if next != nil {
			session.CurrentPuzzleID = &next.ID
		} else {
			session.CurrentPuzzleID = nil
			finished = true
		}
		session.LastActivity = now

		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, false, err
	}

	if finished {
		logrus.WithField("session_id", session.ID).Info("timeline exhausted, session finished")
	}

	return &session, finished, nil
}

// BumpClueReveal advances the per-puzzle reveal counter, bounded at the
// puzzle's clue count. Returns the refreshed session, the count after the
// call, and whether the counter moved; a counter at the bound stays put,
// which is expected steady state rather than an error.
func (s *SessionService) BumpClueReveal(sessionID uint, puzzleID uint, clueCount int, now time.Time) (*models.PlayerSession, int, bool, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	var session models.PlayerSession
	moved := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.ClueReveals == nil {
			session.ClueReveals = models.RevealCounts{}
		}
		moved = session.ClueReveals.Bump(puzzleID, clueCount)
		session.LastActivity = now
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, 0, false, err
	}

	return &session, session.ClueReveals.Get(puzzleID), moved, nil
}
