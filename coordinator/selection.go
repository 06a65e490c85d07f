package coordinator

import "sync"

// SelectionSet tracks the entity IDs currently multi-selected, preserving
// insertion order. A maximum size of 0 means unbounded; adding beyond the
// maximum is a no-op, not an error.
type SelectionSet struct {
	mu      sync.Mutex
	max     int
	order   []string
	members map[string]struct{}
}

// NewSelectionSet creates a selection constrained to at most max IDs.
func NewSelectionSet(max int) *SelectionSet {
	return &SelectionSet{
		max:     max,
		members: make(map[string]struct{}),
	}
}

// Add inserts the given IDs, skipping duplicates and anything beyond the
// maximum size. It returns how many IDs were actually added.
func (s *SelectionSet) Add(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, id := range ids {
		if _, ok := s.members[id]; ok {
			continue
		}
		if s.max > 0 && len(s.order) >= s.max {
			break
		}
		s.members[id] = struct{}{}
		s.order = append(s.order, id)
		added++
	}
	return added
}

// Remove drops the given IDs from the selection.
func (s *SelectionSet) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.members[id]; !ok {
			continue
		}
		delete(s.members, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Toggle adds the ID when absent and removes it when present. It reports
// whether the ID is selected afterwards.
func (s *SelectionSet) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	return s.Add(id) == 1
}

// Has reports whether the ID is selected.
func (s *SelectionSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// IDs returns the selected IDs in insertion order.
func (s *SelectionSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Len reports the number of selected IDs.
func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.members = make(map[string]struct{})
}
