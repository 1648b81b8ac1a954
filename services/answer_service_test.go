package services

import (
	"testing"

	"cluetrail/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_CorrectFreeTextIsNormalized(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, puzzles, _ := seedGame(t, db)
	seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	// Trimmed and case-insensitive against "Lighthouse".
	res, err := answers.Submit(r, puzzles[0].ID, "  LIGHTHOUSE  ", testEpoch, nil)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Nil(t, res.NextClue)
	assert.False(t, res.CluesExhausted)

	require.NotNil(t, res.Session.CurrentPuzzleID)
	assert.Equal(t, puzzles[1].ID, *res.Session.CurrentPuzzleID)
}

func TestSubmit_WrongAnswersRevealCluesInOrder(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, puzzles, _ := seedGame(t, db)
	seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	p1 := puzzles[0] // two clues

	res, err := answers.Submit(r, p1.ID, "buoy", testEpoch, nil)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	require.NotNil(t, res.NextClue)
	assert.Equal(t, p1.Clues[0], *res.NextClue)

	r.Session = res.Session
	res, err = answers.Submit(r, p1.ID, "anchor", testEpoch, nil)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	require.NotNil(t, res.NextClue)
	assert.Equal(t, p1.Clues[1], *res.NextClue)

	// Third wrong answer: nothing left, steady-state exhaustion.
	r.Session = res.Session
	res, err = answers.Submit(r, p1.ID, "gull", testEpoch, nil)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Nil(t, res.NextClue)
	assert.True(t, res.CluesExhausted)

	// And again: still exhausted, counter pinned at the clue count.
	r.Session = res.Session
	res, err = answers.Submit(r, p1.ID, "net", testEpoch, nil)
	require.NoError(t, err)
	assert.True(t, res.CluesExhausted)

	var session models.PlayerSession
	require.NoError(t, db.Where("access_code_id = ?", r.Code.ID).First(&session).Error)
	assert.Equal(t, len(p1.Clues), session.ClueReveals.Get(p1.ID))
}

func TestSubmit_FixedChoice(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, puzzles, _ := seedGame(t, db)
	seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	// P2 is fixed-choice; finish P1 first.
	res, err := answers.Submit(r, puzzles[0].ID, "lighthouse", testEpoch, nil)
	require.NoError(t, err)
	require.True(t, res.Correct)
	r.Session = res.Session

	p2 := puzzles[1]

	// A value outside the option set is a validation failure, not a wrong
	// answer: no clue is burned.
	_, err = answers.Submit(r, p2.ID, "Leviathan", testEpoch, nil)
	assert.ErrorIs(t, err, ErrNotAnOption)

	var session models.PlayerSession
	require.NoError(t, db.Where("access_code_id = ?", r.Code.ID).First(&session).Error)
	assert.Equal(t, 0, session.ClueReveals.Get(p2.ID))

	// A decoy option is a legitimate wrong answer and reveals a clue.
	res, err = answers.Submit(r, p2.ID, "Mermaid", testEpoch, nil)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	require.NotNil(t, res.NextClue)
	assert.Equal(t, p2.Clues[0], *res.NextClue)

	// The accepted option completes the puzzle and the timeline.
	r.Session = res.Session
	res, err = answers.Submit(r, p2.ID, "Kraken", testEpoch, nil)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.True(t, res.Finished)
	assert.Nil(t, res.Session.CurrentPuzzleID)
}

func TestSubmit_CorrectResubmissionIsNoOp(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, puzzles, _ := seedGame(t, db)
	seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	res, err := answers.Submit(r, puzzles[0].ID, "Lighthouse", testEpoch, nil)
	require.NoError(t, err)
	require.True(t, res.Correct)
	r.Session = res.Session

	// Resubmitting the correct answer succeeds without growing the
	// completed set or touching counters.
	res, err = answers.Submit(r, puzzles[0].ID, "Lighthouse", testEpoch, nil)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Len(t, res.Session.CompletedPuzzles, 1)
	assert.Equal(t, 0, res.Session.ClueReveals.Get(puzzles[0].ID))
}

func TestSubmit_UnknownPuzzleFailsFast(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, _, _ := seedGame(t, db)
	seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	_, err = answers.Submit(r, 9999, "anything", testEpoch, nil)
	assert.ErrorIs(t, err, ErrPuzzleNotFound)

	// No partial mutation.
	var session models.PlayerSession
	require.NoError(t, db.Where("access_code_id = ?", r.Code.ID).First(&session).Error)
	assert.Empty(t, session.CompletedPuzzles)
	assert.Empty(t, session.ClueReveals)
}

func TestSubmit_FinishWritesCompletedEvent(t *testing.T) {
	db, _, codes, answers := newEngine(t)
	game, puzzles, _ := seedGame(t, db)
	ac := seedCode(t, db, game.ID, "ABCD1234")

	r, err := codes.Redeem("ABCD1234", "", testEpoch, nil)
	require.NoError(t, err)

	res, err := answers.Submit(r, puzzles[0].ID, "Lighthouse", testEpoch, nil)
	require.NoError(t, err)
	r.Session = res.Session
	res, err = answers.Submit(r, puzzles[1].ID, "Kraken", testEpoch, nil)
	require.NoError(t, err)
	require.True(t, res.Finished)

	assert.Equal(t, []string{models.UsageActivated, models.UsageCompleted}, usageActions(t, db, ac.ID))
}

func TestRevealedClues(t *testing.T) {
	puzzle := &models.Puzzle{ID: 1, Clues: models.StringList{"a", "b"}}
	session := &models.PlayerSession{ClueReveals: models.RevealCounts{1: 1}}

	assert.Equal(t, []string{"a"}, RevealedClues(session, puzzle))

	session.ClueReveals[1] = 5 // corrupt count clamps to the clue list
	assert.Equal(t, []string{"a", "b"}, RevealedClues(session, puzzle))
}
