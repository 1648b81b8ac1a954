package services

import (
	"sort"

	"cluetrail/models"
)

const (
	EntrySplash = "splash"
	EntryPuzzle = "puzzle"
)

// TimelineEntry is one step of the playable sequence. Exactly one of Puzzle
// or Splash is set, matching Kind.
type TimelineEntry struct {
	Kind   string               `json:"kind"` // splash, puzzle
	Puzzle *models.Puzzle       `json:"puzzle,omitempty"`
	Splash *models.SplashScreen `json:"splash,omitempty"`
}

// Timeline is the fully ordered sequence a player walks through. Orphans are
// splash screens whose anchor references a puzzle that no longer exists; they
// are excluded from Entries and surfaced to administrators instead of being
// silently dropped or shown at the start.
type Timeline struct {
	Entries []TimelineEntry       `json:"entries"`
	Orphans []models.SplashScreen `json:"orphans,omitempty"`
}

// ComposeTimeline merges puzzles and splash screens into one playable
// sequence: start-anchored screens, then each puzzle in sequence order
// preceded by the screens anchored to it, then end-anchored screens. Pure
// function of the authored data; nothing here is cached or persisted.
func ComposeTimeline(puzzles []models.Puzzle, splashes []models.SplashScreen) Timeline {
	ordered := make([]models.Puzzle, len(puzzles))
	copy(ordered, puzzles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SequenceOrder < ordered[j].SequenceOrder
	})

	known := make(map[uint]bool, len(ordered))
	for _, p := range ordered {
		known[p.ID] = true
	}

	var start, end []models.SplashScreen
	byPuzzle := make(map[uint][]models.SplashScreen)
	var orphans []models.SplashScreen

	sortedSplashes := make([]models.SplashScreen, len(splashes))
	copy(sortedSplashes, splashes)
	sort.SliceStable(sortedSplashes, func(i, j int) bool {
		return sortedSplashes[i].SequenceOrder < sortedSplashes[j].SequenceOrder
	})

	for _, s := range sortedSplashes {
		switch s.AnchorKind {
		case models.AnchorStart:
			start = append(start, s)
		case models.AnchorEnd:
			end = append(end, s)
		case models.AnchorPuzzle:
			if s.AnchorPuzzleID != nil && known[*s.AnchorPuzzleID] {
				byPuzzle[*s.AnchorPuzzleID] = append(byPuzzle[*s.AnchorPuzzleID], s)
			} else {
				orphans = append(orphans, s)
			}
		default:
			orphans = append(orphans, s)
		}
	}

	var entries []TimelineEntry
	for i := range start {
		entries = append(entries, TimelineEntry{Kind: EntrySplash, Splash: &start[i]})
	}
	for i := range ordered {
		anchored := byPuzzle[ordered[i].ID]
		for j := range anchored {
			entries = append(entries, TimelineEntry{Kind: EntrySplash, Splash: &anchored[j]})
		}
		entries = append(entries, TimelineEntry{Kind: EntryPuzzle, Puzzle: &ordered[i]})
	}
	for i := range end {
		entries = append(entries, TimelineEntry{Kind: EntrySplash, Splash: &end[i]})
	}

	return Timeline{Entries: entries, Orphans: orphans}
}

// Puzzles returns the puzzle entries in play order.
func (t Timeline) Puzzles() []models.Puzzle {
	var out []models.Puzzle
	for _, e := range t.Entries {
		if e.Kind == EntryPuzzle {
			out = append(out, *e.Puzzle)
		}
	}
	return out
}

// NextIncomplete scans forward for the first puzzle not yet completed. Splash
// entries are presentation-only and skipped. Returns nil when the timeline is
// exhausted.
func (t Timeline) NextIncomplete(completed models.UintSet) *models.Puzzle {
	for _, e := range t.Entries {
		if e.Kind != EntryPuzzle {
			continue
		}
		if !completed.Contains(e.Puzzle.ID) {
			return e.Puzzle
		}
	}
	return nil
}

// PuzzleByID returns the timeline's copy of a puzzle, or nil.
func (t Timeline) PuzzleByID(id uint) *models.Puzzle {
	for _, e := range t.Entries {
		if e.Kind == EntryPuzzle && e.Puzzle.ID == id {
			return e.Puzzle
		}
	}
	return nil
}
