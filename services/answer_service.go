package services

import (
	"strings"
	"time"

	"cluetrail/models"

	"github.com/sirupsen/logrus"
)

// AnswerService validates submissions against a puzzle's accepted answer and
// drives clue revelation on failure.
type AnswerService struct {
	sessions *SessionService
	codes    *CodeService
}

func NewAnswerService(sessions *SessionService, codes *CodeService) *AnswerService {
	return &AnswerService{sessions: sessions, codes: codes}
}

// SubmitResult reports the outcome of one answer submission.
type SubmitResult struct {
	Correct        bool                  `json:"correct"`
	NextClue       *string               `json:"next_clue,omitempty"`
	CluesExhausted bool                  `json:"clues_exhausted"`
	Finished       bool                  `json:"finished"`
	Session        *models.PlayerSession `json:"-"`
}

// Submit evaluates rawAnswer against the puzzle. Correct answers complete the
// puzzle (idempotently) and advance the session; incorrect answers unlock the
// next clue until the list is exhausted, after which further wrong answers
// keep reporting exhaustion without moving the counter.
func (s *AnswerService) Submit(redemption *Redemption, puzzleID uint, rawAnswer string, now time.Time, hub *Hub) (*SubmitResult, error) {
	puzzle := redemption.Timeline.PuzzleByID(puzzleID)
	if puzzle == nil {
		return nil, ErrPuzzleNotFound
	}

	correct, err := evaluate(puzzle, rawAnswer)
	if err != nil {
		return nil, err
	}

	session := redemption.Session

	if correct {
		updated, finished, err := s.sessions.RecordCompletion(session.ID, puzzle.ID, redemption.Timeline, now)
		if err != nil {
			return nil, err
		}
		if finished {
			if err := s.codes.LogCompleted(redemption.Code.ID, now); err != nil {
				logrus.WithError(err).WithField("access_code_id", redemption.Code.ID).Error("failed to log completion")
			}
			if hub != nil {
				hub.BroadcastToGame(redemption.Code.GameID, "game_completed", map[string]interface{}{
					"access_code_id": redemption.Code.ID,
					"session_id":     updated.ID,
				})
			}
		} else if hub != nil {
			hub.BroadcastToGame(redemption.Code.GameID, "puzzle_completed", map[string]interface{}{
				"access_code_id": redemption.Code.ID,
				"session_id":     updated.ID,
				"puzzle_id":      puzzle.ID,
				"completed":      len(updated.CompletedPuzzles),
			})
		}
		return &SubmitResult{Correct: true, Finished: finished, Session: updated}, nil
	}

	if session.CompletedPuzzles.Contains(puzzle.ID) {
		// Wrong answer to an already-solved puzzle; nothing to reveal.
		return &SubmitResult{Correct: false, Session: session}, nil
	}

	updated, count, moved, err := s.sessions.BumpClueReveal(session.ID, puzzle.ID, len(puzzle.Clues), now)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Counter pinned at the clue count; every further wrong answer
		// reports exhaustion without moving anything.
		return &SubmitResult{Correct: false, CluesExhausted: true, Session: updated}, nil
	}

	// The counter is the number of clues unlocked; the newly revealed clue
	// sits at the pre-increment index.
	clue := puzzle.Clues[count-1]

	return &SubmitResult{Correct: false, NextClue: &clue, Session: updated}, nil
}

// evaluate normalizes and compares. Free-text answers are trimmed and
// compared case-insensitively; fixed-choice submissions must exactly match
// one of the authored options and are correct only when equal to the
// accepted answer (option lists may include decoys).
func evaluate(puzzle *models.Puzzle, rawAnswer string) (bool, error) {
	submitted := strings.TrimSpace(rawAnswer)

	switch puzzle.AnswerType {
	case models.AnswerTypeFixedChoice:
		valid := false
		for _, opt := range puzzle.AnswerOptions {
			if submitted == opt {
				valid = true
				break
			}
		}
		if !valid {
			return false, ErrNotAnOption
		}
		return submitted == puzzle.Answer, nil
	default:
		return strings.EqualFold(submitted, strings.TrimSpace(puzzle.Answer)), nil
	}
}

// RevealedClues returns the clues a session has unlocked for a puzzle, in
// authored order.
func RevealedClues(session *models.PlayerSession, puzzle *models.Puzzle) []string {
	count := session.ClueReveals.Get(puzzle.ID)
	if count > len(puzzle.Clues) {
		count = len(puzzle.Clues)
	}
	return puzzle.Clues[:count]
}
