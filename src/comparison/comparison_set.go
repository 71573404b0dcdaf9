package comparison

import (
	"fmt"

	"crypto-compare/src/helpers"
	"crypto-compare/src/models"
)

// MaxEntries is the comparison capacity
const MaxEntries = 5

// ComparisonSet is an ordered, de-duplicated, capacity bounded selection.
// Insertion order is display order. Not safe for concurrent use; the
// controller serializes access.
type ComparisonSet struct {
	entries  []models.MComparisonEntry
	capacity int
}

// -----------------------------------------------------------------------------

func NewComparisonSet() *ComparisonSet {
	return &ComparisonSet{capacity: MaxEntries}
}

// -----------------------------------------------------------------------------

// Restore rebuilds the set from persisted entries, dropping duplicates and
// anything past capacity.
func Restore(entries []models.MComparisonEntry) *ComparisonSet {
	s := NewComparisonSet()
	for _, e := range entries {
		if e.ID == "" || s.Contains(e.ID) || len(s.entries) >= s.capacity {
			continue
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// -----------------------------------------------------------------------------

// Toggle removes the asset if present, otherwise appends its projection.
// A full set returns ErrComparisonFull and is left untouched.
func (s *ComparisonSet) Toggle(asset models.MAssetQuote) (added bool, err error) {
	if i := s.indexOf(asset.ID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return false, nil
	}

	if len(s.entries) >= s.capacity {
		return false, fmt.Errorf("add %s: %w", asset.ID, helpers.ErrComparisonFull)
	}

	s.entries = append(s.entries, models.NewComparisonEntry(asset))
	return true, nil
}

// -----------------------------------------------------------------------------

// RemoveAt removes the entry at a display position
func (s *ComparisonSet) RemoveAt(index int) error {
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("remove at %d of %d: %w", index, len(s.entries), helpers.ErrIndexOutOfRange)
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return nil
}

// Clear empties the set
func (s *ComparisonSet) Clear() {
	s.entries = nil
}

// -----------------------------------------------------------------------------

func (s *ComparisonSet) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *ComparisonSet) Len() int {
	return len(s.entries)
}

func (s *ComparisonSet) Capacity() int {
	return s.capacity
}

// Entries returns a copy in display order
func (s *ComparisonSet) Entries() []models.MComparisonEntry {
	out := make([]models.MComparisonEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IDs returns the selected ids as a lookup set
func (s *ComparisonSet) IDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		out[e.ID] = struct{}{}
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *ComparisonSet) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
