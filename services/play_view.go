package services

import (
	"time"

	"cluetrail/models"
)

// Player-facing projections. Answers and decoy markers never leave the
// server; a puzzle view carries only what the player is allowed to see.

type PuzzleView struct {
	ID            uint     `json:"id"`
	Riddle        string   `json:"riddle"`
	AnswerType    string   `json:"answer_type"`
	AnswerOptions []string `json:"answer_options,omitempty"`
	ClueCount     int      `json:"clue_count"`
	RevealedClues []string `json:"revealed_clues"`
	Completed     bool     `json:"completed"`
}

type SplashView struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

type TimelineEntryView struct {
	Kind   string      `json:"kind"`
	Splash *SplashView `json:"splash,omitempty"`
	Puzzle *PuzzleView `json:"puzzle,omitempty"`
}

// SessionView is the resumable snapshot returned on every redeem and state
// read: timeline position, revealed clues so far, and the play deadline.
type SessionView struct {
	Code            string              `json:"code"`
	ExpiresAt       *time.Time          `json:"expires_at"`
	CurrentPuzzleID *uint               `json:"current_puzzle_id"`
	CurrentPuzzle   *PuzzleView         `json:"current_puzzle,omitempty"`
	CompletedCount  int                 `json:"completed_count"`
	TotalPuzzles    int                 `json:"total_puzzles"`
	Finished        bool                `json:"finished"`
	Timeline        []TimelineEntryView `json:"timeline"`
	LastActivity    time.Time           `json:"last_activity"`
}

// BuildSessionView projects a redemption into the player payload.
func BuildSessionView(r *Redemption) *SessionView {
	session := r.Session

	view := &SessionView{
		Code:            r.Code.Code,
		ExpiresAt:       r.Code.ExpiresAt,
		CurrentPuzzleID: session.CurrentPuzzleID,
		CompletedCount:  len(session.CompletedPuzzles),
		LastActivity:    session.LastActivity,
	}

	for _, e := range r.Timeline.Entries {
		switch e.Kind {
		case EntrySplash:
			view.Timeline = append(view.Timeline, TimelineEntryView{
				Kind:   EntrySplash,
				Splash: &SplashView{ID: e.Splash.ID, Content: e.Splash.Content},
			})
		case EntryPuzzle:
			view.TotalPuzzles++
			pv := buildPuzzleView(session, e.Puzzle)
			view.Timeline = append(view.Timeline, TimelineEntryView{Kind: EntryPuzzle, Puzzle: pv})
			if session.CurrentPuzzleID != nil && *session.CurrentPuzzleID == e.Puzzle.ID {
				view.CurrentPuzzle = pv
			}
		}
	}

	view.Finished = session.CurrentPuzzleID == nil && view.TotalPuzzles > 0 && view.CompletedCount >= view.TotalPuzzles

	return view
}

func buildPuzzleView(session *models.PlayerSession, puzzle *models.Puzzle) *PuzzleView {
	return &PuzzleView{
		ID:            puzzle.ID,
		Riddle:        puzzle.Riddle,
		AnswerType:    puzzle.AnswerType,
		AnswerOptions: puzzle.AnswerOptions,
		ClueCount:     len(puzzle.Clues),
		RevealedClues: RevealedClues(session, puzzle),
		Completed:     session.CompletedPuzzles.Contains(puzzle.ID),
	}
}
