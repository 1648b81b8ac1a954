package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"cluetrail/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PlayWindow is how long a code stays redeemable after its first redemption.
// Measured from activation, not creation; an unredeemed code never expires.
const PlayWindow = 12 * time.Hour

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 8
	maxMintAttempts = 20
)

// CodeService governs the access-code lifecycle:
// unused -> active -> expired | deactivated.
type CodeService struct {
	db       *gorm.DB
	sessions *SessionService
}

func NewCodeService(db *gorm.DB, sessions *SessionService) *CodeService {
	return &CodeService{db: db, sessions: sessions}
}

// Redemption is what a successful redeem hands back to the player surface.
type Redemption struct {
	Code     *models.AccessCode
	Session  *models.PlayerSession
	Timeline Timeline
}

// Redeem gates entry to a game. The first successful redemption activates the
// code (activated_at, expires_at written exactly once via a conditional
// update) and creates the session; every later redemption inside the play
// window re-enters the same session so the player resumes where they left
// off.
func (s *CodeService) Redeem(rawCode, email string, now time.Time, hub *Hub) (*Redemption, error) {
	codeStr := strings.ToUpper(strings.TrimSpace(rawCode))

	var code models.AccessCode
	if err := s.db.Where("code = ?", codeStr).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	if !code.IsActive {
		return nil, ErrCodeDeactivated
	}

	if code.ActivatedAt == nil {
		activated, err := s.activate(&code, now)
		if err != nil {
			return nil, err
		}
		if !activated {
			// Lost the activation race; reload the winner's timestamps and
			// fall through to the resume path.
			if err := s.db.First(&code, code.ID).Error; err != nil {
				return nil, err
			}
		} else if hub != nil {
			hub.BroadcastToGame(code.GameID, "code_activated", map[string]interface{}{
				"access_code_id": code.ID,
				"code":           code.Code,
				"expires_at":     code.ExpiresAt,
			})
		}
	}

	if code.ExpiresAt != nil && !now.Before(*code.ExpiresAt) {
		s.logExpiredOnce(&code, now)
		return nil, ErrCodeExpired
	}

	session, err := s.sessions.GetOrCreate(&code, email, now)
	if err != nil {
		return nil, err
	}

	tl, err := s.sessions.TimelineForCode(&code)
	if err != nil {
		return nil, err
	}

	return &Redemption{Code: &code, Session: session, Timeline: tl}, nil
}

// activate performs the one-shot unused -> active transition. The guard on
// activated_at IS NULL means exactly one of two racing redemptions wins;
// only the winner writes the activation event.
func (s *CodeService) activate(code *models.AccessCode, now time.Time) (bool, error) {
	expires := now.Add(PlayWindow)

	won := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AccessCode{}).
			Where("id = ? AND activated_at IS NULL", code.ID).
			Updates(map[string]interface{}{
				"activated_at": now,
				"expires_at":   expires,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		return tx.Create(&models.CodeUsageLog{
			EventID:      uuid.NewString(),
			AccessCodeID: code.ID,
			Action:       models.UsageActivated,
			Metadata:     models.Metadata{"code": code.Code},
		}).Error
	})
	if err != nil {
		return false, err
	}

	if won {
		code.ActivatedAt = &now
		code.ExpiresAt = &expires
		logrus.WithFields(logrus.Fields{
			"access_code_id": code.ID,
			"code":           code.Code,
			"expires_at":     expires,
		}).Info("access code activated")
	}

	return won, nil
}

// logExpiredOnce writes the expired event at most once per code. Repeat
// redemption attempts past the deadline find expiry_logged already set and
// write nothing.
func (s *CodeService) logExpiredOnce(code *models.AccessCode, now time.Time) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AccessCode{}).
			Where("id = ? AND expiry_logged = ?", code.ID, false).
			Update("expiry_logged", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Create(&models.CodeUsageLog{
			EventID:      uuid.NewString(),
			AccessCodeID: code.ID,
			Action:       models.UsageExpired,
			Metadata:     models.Metadata{"expired_at": now},
		}).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("access_code_id", code.ID).Error("failed to log code expiry")
	}
}

// LogCompleted records timeline completion for a code.
func (s *CodeService) LogCompleted(codeID uint, now time.Time) error {
	return s.db.Create(&models.CodeUsageLog{
		EventID:      uuid.NewString(),
		AccessCodeID: codeID,
		Action:       models.UsageCompleted,
		Metadata:     models.Metadata{"completed_at": now},
	}).Error
}

// Deactivate is the administrator-only terminal transition. Unconditional:
// an already-expired or already-deactivated code is simply left inactive.
func (s *CodeService) Deactivate(codeID uint) error {
	res := s.db.Model(&models.AccessCode{}).
		Where("id = ?", codeID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCodeNotFound
	}

	logrus.WithField("access_code_id", codeID).Info("access code deactivated")
	return nil
}

// GenerateCodes mints n unused codes for a game, retrying generation on
// collision with any existing code.
func (s *CodeService) GenerateCodes(gameID uint, n int) ([]models.AccessCode, error) {
	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	codes := make([]models.AccessCode, 0, n)
	for i := 0; i < n; i++ {
		code, err := s.mintCode(gameID)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *code)
	}
	return codes, nil
}

func (s *CodeService) mintCode(gameID uint) (*models.AccessCode, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		candidate, err := randomCode()
		if err != nil {
			return nil, err
		}

		var count int64
		if err := s.db.Model(&models.AccessCode{}).Where("code = ?", candidate).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		code := models.AccessCode{
			GameID:   gameID,
			Code:     candidate,
			IsActive: true,
		}
		if err := s.db.Create(&code).Error; err != nil {
			// Unique index may still reject a concurrent duplicate; retry.
			continue
		}
		return &code, nil
	}
	return nil, fmt.Errorf("could not generate a unique code after %d attempts", maxMintAttempts)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// GetByCode looks up a code by its string for the player state endpoint.
func (s *CodeService) GetByCode(rawCode string) (*models.AccessCode, error) {
	codeStr := strings.ToUpper(strings.TrimSpace(rawCode))
	var code models.AccessCode
	if err := s.db.Where("code = ?", codeStr).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// ListByGame returns a game's codes, newest first.
func (s *CodeService) ListByGame(gameID uint) ([]models.AccessCode, error) {
	var codes []models.AccessCode
	err := s.db.Where("game_id = ?", gameID).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

// UsageByGame returns the append-only usage feed for a game's codes.
func (s *CodeService) UsageByGame(gameID uint) ([]models.CodeUsageLog, error) {
	var logs []models.CodeUsageLog
	err := s.db.
		Joins("JOIN access_codes ON access_codes.id = code_usage_logs.access_code_id").
		Where("access_codes.game_id = ?", gameID).
		Order("code_usage_logs.created_at").
		Find(&logs).Error
	return logs, err
}
