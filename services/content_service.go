package services

import (
	"errors"

	"cluetrail/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContentService is the administrative authoring surface the engine consumes
// records from: games, puzzles, splash screens and their ordering.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

type CreateGameRequest struct {
	Name          string                      `json:"name" binding:"required"`
	Location      string                      `json:"location"`
	Puzzles       []CreatePuzzleRequest       `json:"puzzles" binding:"required,min=1"`
	SplashScreens []CreateSplashScreenRequest `json:"splash_screens"`
}

type CreatePuzzleRequest struct {
	SequenceOrder int      `json:"sequence_order" binding:"required"`
	Riddle        string   `json:"riddle" binding:"required"`
	Clues         []string `json:"clues"`
	Answer        string   `json:"answer" binding:"required"`
	AnswerType    string   `json:"answer_type"`
	AnswerOptions []string `json:"answer_options"`
}

type CreateSplashScreenRequest struct {
	Content       string `json:"content" binding:"required"`
	SequenceOrder int    `json:"sequence_order"`
	AnchorKind    string `json:"anchor_kind"`
	// Index into the request's puzzle list; resolved to the created puzzle id.
	AnchorPuzzleIndex *int `json:"anchor_puzzle_index"`
}

func (s *ContentService) CreateGame(userID uint, req *CreateGameRequest) (*models.Game, error) {
	seen := make(map[int]bool, len(req.Puzzles))
	for _, p := range req.Puzzles {
		if seen[p.SequenceOrder] {
			return nil, errors.New("puzzle sequence orders must be unique within a game")
		}
		seen[p.SequenceOrder] = true

		answerType := p.AnswerType
		if answerType == "" {
			answerType = models.AnswerTypeFreeText
		}
		if answerType != models.AnswerTypeFreeText && answerType != models.AnswerTypeFixedChoice {
			return nil, errors.New("answer_type must be free_text or fixed_choice")
		}
		if answerType == models.AnswerTypeFixedChoice {
			found := false
			for _, opt := range p.AnswerOptions {
				if opt == p.Answer {
					found = true
					break
				}
			}
			if !found {
				return nil, errors.New("answer_options must contain the accepted answer")
			}
		}
	}

	var game models.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		game = models.Game{
			Name:     req.Name,
			Location: req.Location,
			IsActive: true,
			UserID:   userID,
		}
		if err := tx.Create(&game).Error; err != nil {
			return err
		}

		created := make([]models.Puzzle, 0, len(req.Puzzles))
		for _, p := range req.Puzzles {
			answerType := p.AnswerType
			if answerType == "" {
				answerType = models.AnswerTypeFreeText
			}
			puzzle := models.Puzzle{
				GameID:        game.ID,
				SequenceOrder: p.SequenceOrder,
				Riddle:        p.Riddle,
				Clues:         models.StringList(p.Clues),
				Answer:        p.Answer,
				AnswerType:    answerType,
				AnswerOptions: models.StringList(p.AnswerOptions),
			}
			if err := tx.Create(&puzzle).Error; err != nil {
				return err
			}
			created = append(created, puzzle)
		}

		for _, sp := range req.SplashScreens {
			kind := sp.AnchorKind
			if kind == "" {
				kind = models.AnchorStart
			}
			splash := models.SplashScreen{
				GameID:        game.ID,
				Content:       sp.Content,
				SequenceOrder: sp.SequenceOrder,
				AnchorKind:    kind,
			}
			switch kind {
			case models.AnchorStart, models.AnchorEnd:
			case models.AnchorPuzzle:
				if sp.AnchorPuzzleIndex == nil || *sp.AnchorPuzzleIndex < 0 || *sp.AnchorPuzzleIndex >= len(created) {
					return ErrBadAnchor
				}
				id := created[*sp.AnchorPuzzleIndex].ID
				splash.AnchorPuzzleID = &id
			default:
				return ErrBadAnchor
			}
			if err := tx.Create(&splash).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"game_id": game.ID,
		"puzzles": len(req.Puzzles),
	}).Info("game created")

	return s.GetGame(game.ID, userID)
}

func (s *ContentService) GetGame(gameID, userID uint) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("id = ? AND user_id = ?", gameID, userID).
		Preload("Puzzles", func(db *gorm.DB) *gorm.DB {
			return db.Order("puzzles.sequence_order")
		}).
		Preload("SplashScreens", func(db *gorm.DB) *gorm.DB {
			return db.Order("splash_screens.sequence_order")
		}).
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *ContentService) ListGames(userID uint) ([]models.Game, error) {
	var games []models.Game
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&games).Error
	return games, err
}

// DeleteGame cascades: puzzles, splash screens, codes, their sessions and
// usage logs all go with the game. The only path that deletes sessions.
func (s *ContentService) DeleteGame(gameID, userID uint) error {
	if _, err := s.GetGame(gameID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var codeIDs []uint
		if err := tx.Model(&models.AccessCode{}).Where("game_id = ?", gameID).Pluck("id", &codeIDs).Error; err != nil {
			return err
		}
		if len(codeIDs) > 0 {
			if err := tx.Where("access_code_id IN ?", codeIDs).Delete(&models.PlayerSession{}).Error; err != nil {
				return err
			}
			if err := tx.Where("access_code_id IN ?", codeIDs).Delete(&models.CodeUsageLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("game_id = ?", gameID).Delete(&models.AccessCode{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.SplashScreen{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Puzzle{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Game{}, gameID).Error
	})
}

// SwapPuzzleOrder exchanges the sequence positions of two puzzles in one
// transaction. The composite unique index on (game_id, sequence_order) makes
// a direct two-write swap collide with itself, so one side parks on a
// sentinel first.
func (s *ContentService) SwapPuzzleOrder(gameID, puzzleAID, puzzleBID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var a, b models.Puzzle
		if err := tx.Where("id = ? AND game_id = ?", puzzleAID, gameID).First(&a).Error; err != nil {
			return ErrPuzzleNotFound
		}
		if err := tx.Where("id = ? AND game_id = ?", puzzleBID, gameID).First(&b).Error; err != nil {
			return ErrPuzzleNotFound
		}
		if a.ID == b.ID {
			return nil
		}

		orderA, orderB := a.SequenceOrder, b.SequenceOrder

		if err := tx.Model(&models.Puzzle{}).Where("id = ?", a.ID).Update("sequence_order", -1).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Puzzle{}).Where("id = ?", b.ID).Update("sequence_order", orderA).Error; err != nil {
			return err
		}
		return tx.Model(&models.Puzzle{}).Where("id = ?", a.ID).Update("sequence_order", orderB).Error
	})
}

// ReassignSplash atomically repositions a splash screen's anchor — a single
// write of the anchor fields, never a delete/recreate. Reassigning to the
// current anchor is a no-op.
func (s *ContentService) ReassignSplash(splashID uint, kind string, anchorPuzzleID *uint) error {
	var splash models.SplashScreen
	if err := s.db.First(&splash, splashID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSplashNotFound
		}
		return err
	}

	switch kind {
	case models.AnchorStart, models.AnchorEnd:
		anchorPuzzleID = nil
	case models.AnchorPuzzle:
		if anchorPuzzleID == nil {
			return ErrBadAnchor
		}
		var count int64
		if err := s.db.Model(&models.Puzzle{}).
			Where("id = ? AND game_id = ?", *anchorPuzzleID, splash.GameID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPuzzleNotFound
		}
	default:
		return ErrBadAnchor
	}

	if splash.SameAnchor(kind, anchorPuzzleID) {
		return nil
	}

	return s.db.Model(&models.SplashScreen{}).
		Where("id = ?", splashID).
		Updates(map[string]interface{}{
			"anchor_kind":      kind,
			"anchor_puzzle_id": anchorPuzzleID,
		}).Error
}

// ListOrphanedSplashScreens surfaces screens whose anchor references a puzzle
// that no longer exists — an admin data-integrity warning, not a player error.
func (s *ContentService) ListOrphanedSplashScreens(gameID uint) ([]models.SplashScreen, error) {
	var puzzles []models.Puzzle
	if err := s.db.Where("game_id = ?", gameID).Find(&puzzles).Error; err != nil {
		return nil, err
	}
	var splashes []models.SplashScreen
	if err := s.db.Where("game_id = ?", gameID).Order("sequence_order").Find(&splashes).Error; err != nil {
		return nil, err
	}

	tl := ComposeTimeline(puzzles, splashes)
	return tl.Orphans, nil
}

// ComposeForGame builds the current timeline straight from the store, for
// the admin preview endpoint.
func (s *ContentService) ComposeForGame(gameID uint) (Timeline, error) {
	var puzzles []models.Puzzle
	if err := s.db.Where("game_id = ?", gameID).Order("sequence_order").Find(&puzzles).Error; err != nil {
		return Timeline{}, err
	}
	var splashes []models.SplashScreen
	if err := s.db.Where("game_id = ?", gameID).Order("sequence_order").Find(&splashes).Error; err != nil {
		return Timeline{}, err
	}
	return ComposeTimeline(puzzles, splashes), nil
}
