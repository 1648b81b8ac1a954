package services

import (
	"testing"

	"cluetrail/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint { return &v }

func TestComposeTimeline_InterleavesSplashesAndPuzzles(t *testing.T) {
	p1 := models.Puzzle{ID: 10, SequenceOrder: 1, Riddle: "first"}
	p2 := models.Puzzle{ID: 20, SequenceOrder: 2, Riddle: "second"}
	s1 := models.SplashScreen{ID: 1, AnchorKind: models.AnchorStart, SequenceOrder: 1}
	s2 := models.SplashScreen{ID: 2, AnchorKind: models.AnchorPuzzle, AnchorPuzzleID: ptr(20), SequenceOrder: 1}

	tl := ComposeTimeline([]models.Puzzle{p1, p2}, []models.SplashScreen{s1, s2})

	require.Len(t, tl.Entries, 4)
	assert.Equal(t, EntrySplash, tl.Entries[0].Kind)
	assert.Equal(t, uint(1), tl.Entries[0].Splash.ID)
	assert.Equal(t, EntryPuzzle, tl.Entries[1].Kind)
	assert.Equal(t, uint(10), tl.Entries[1].Puzzle.ID)
	assert.Equal(t, EntrySplash, tl.Entries[2].Kind)
	assert.Equal(t, uint(2), tl.Entries[2].Splash.ID)
	assert.Equal(t, EntryPuzzle, tl.Entries[3].Kind)
	assert.Equal(t, uint(20), tl.Entries[3].Puzzle.ID)
	assert.Empty(t, tl.Orphans)
}

func TestComposeTimeline_SortsPuzzlesBySequenceOrder(t *testing.T) {
	// Deliberately out of order.
	puzzles := []models.Puzzle{
		{ID: 3, SequenceOrder: 30},
		{ID: 1, SequenceOrder: 10},
		{ID: 2, SequenceOrder: 20},
	}

	tl := ComposeTimeline(puzzles, nil)

	got := tl.Puzzles()
	require.Len(t, got, 3)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(2), got[1].ID)
	assert.Equal(t, uint(3), got[2].ID)
}

func TestComposeTimeline_BucketOrdering(t *testing.T) {
	p := models.Puzzle{ID: 5, SequenceOrder: 1}
	splashes := []models.SplashScreen{
		{ID: 1, AnchorKind: models.AnchorEnd, SequenceOrder: 2},
		{ID: 2, AnchorKind: models.AnchorEnd, SequenceOrder: 1},
		{ID: 3, AnchorKind: models.AnchorStart, SequenceOrder: 2},
		{ID: 4, AnchorKind: models.AnchorStart, SequenceOrder: 1},
		{ID: 5, AnchorKind: models.AnchorPuzzle, AnchorPuzzleID: ptr(5), SequenceOrder: 2},
		{ID: 6, AnchorKind: models.AnchorPuzzle, AnchorPuzzleID: ptr(5), SequenceOrder: 1},
	}

	tl := ComposeTimeline([]models.Puzzle{p}, splashes)

	require.Len(t, tl.Entries, 7)
	// Start bucket sorted by the splash's own sequence order.
	assert.Equal(t, uint(4), tl.Entries[0].Splash.ID)
	assert.Equal(t, uint(3), tl.Entries[1].Splash.ID)
	// Anchored bucket directly before its puzzle, also sorted.
	assert.Equal(t, uint(6), tl.Entries[2].Splash.ID)
	assert.Equal(t, uint(5), tl.Entries[3].Splash.ID)
	assert.Equal(t, uint(5), tl.Entries[4].Puzzle.ID)
	// End bucket after the last puzzle.
	assert.Equal(t, uint(2), tl.Entries[5].Splash.ID)
	assert.Equal(t, uint(1), tl.Entries[6].Splash.ID)
}

func TestComposeTimeline_OrphanedSplashSurfaced(t *testing.T) {
	p := models.Puzzle{ID: 1, SequenceOrder: 1}
	orphan := models.SplashScreen{ID: 9, AnchorKind: models.AnchorPuzzle, AnchorPuzzleID: ptr(404)}

	tl := ComposeTimeline([]models.Puzzle{p}, []models.SplashScreen{orphan})

	// Orphans are reported, never silently dropped or shown at the start.
	require.Len(t, tl.Entries, 1)
	assert.Equal(t, EntryPuzzle, tl.Entries[0].Kind)
	require.Len(t, tl.Orphans, 1)
	assert.Equal(t, uint(9), tl.Orphans[0].ID)
}

func TestComposeTimeline_EmptyInputs(t *testing.T) {
	tl := ComposeTimeline(nil, nil)
	assert.Empty(t, tl.Entries)
	assert.Empty(t, tl.Orphans)
}

func TestTimeline_NextIncomplete(t *testing.T) {
	p1 := models.Puzzle{ID: 1, SequenceOrder: 1}
	p2 := models.Puzzle{ID: 2, SequenceOrder: 2}
	splash := models.SplashScreen{ID: 1, AnchorKind: models.AnchorPuzzle, AnchorPuzzleID: ptr(2)}

	tl := ComposeTimeline([]models.Puzzle{p1, p2}, []models.SplashScreen{splash})

	next := tl.NextIncomplete(nil)
	require.NotNil(t, next)
	assert.Equal(t, uint(1), next.ID)

	// Splash entries are skipped, not blocking.
	next = tl.NextIncomplete(models.UintSet{1})
	require.NotNil(t, next)
	assert.Equal(t, uint(2), next.ID)

	assert.Nil(t, tl.NextIncomplete(models.UintSet{1, 2}))
}

func TestTimeline_PuzzleByID(t *testing.T) {
	p := models.Puzzle{ID: 7, SequenceOrder: 1}
	tl := ComposeTimeline([]models.Puzzle{p}, nil)

	require.NotNil(t, tl.PuzzleByID(7))
	assert.Nil(t, tl.PuzzleByID(8))
}
