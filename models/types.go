package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON-backed column types. Postgres stores them as jsonb-compatible text;
// the sqlite driver used in tests stores plain text.

// StringList is an ordered list of strings stored as a JSON array.
// Used for puzzle clues (index order is meaningful) and answer options.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// UintSet is an append-only set of ids stored as a JSON array.
type UintSet []uint

func (s UintSet) Value() (driver.Value, error) {
	if s == nil {
		s = UintSet{}
	}
	return json.Marshal(s)
}

func (s *UintSet) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func (s UintSet) Contains(id uint) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id and reports whether the set changed.
func (s *UintSet) Add(id uint) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// RevealCounts maps puzzle id to the number of clues revealed so far in a
// session. Counts only move forward and never exceed the puzzle's clue count.
type RevealCounts map[uint]int

func (r RevealCounts) Value() (driver.Value, error) {
	if r == nil {
		r = RevealCounts{}
	}
	return json.Marshal(r)
}

func (r *RevealCounts) Scan(value interface{}) error {
	return scanJSON(value, r)
}

func (r RevealCounts) Get(puzzleID uint) int {
	return r[puzzleID]
}

// Bump increments the counter for puzzleID up to max and reports whether it
// moved. A counter already at max stays put.
func (r RevealCounts) Bump(puzzleID uint, max int) bool {
	if r[puzzleID] >= max {
		return false
	}
	r[puzzleID]++
	return true
}

// Metadata is free-form event metadata stored as a JSON object.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
