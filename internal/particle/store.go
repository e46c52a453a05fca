package particle

import "github.com/san-kum/particlefx/internal/dynamo"

// Store owns the live particles in one contiguous slice. Callers that iterate
// pairs address particles by index into Items and never keep pointers across
// a Compact.
type Store struct {
	items  []Particle
	nextID uint64
}

func NewStore(capacity int) *Store {
	return &Store{items: make([]Particle, 0, capacity)}
}

// NextID allocates a fresh id. Ids are never reused, not even after Clear.
func (s *Store) NextID() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) Insert(ps ...Particle) {
	s.items = append(s.items, ps...)
}

// Remove deletes the particle with the given id, keeping the order of the rest.
func (s *Store) Remove(id uint64) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Get(id uint64) (Particle, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i], true
		}
	}
	return Particle{}, false
}

// Items exposes the backing slice for in-place mutation during a tick.
func (s *Store) Items() []Particle { return s.items }

func (s *Store) Len() int { return len(s.items) }

// Compact keeps the particles for which keep returns true, preserving order,
// and returns how many were dropped.
func (s *Store) Compact(keep func(p *Particle) bool) int {
	n := 0
	for i := range s.items {
		if keep(&s.items[i]) {
			if n != i {
				s.items[n] = s.items[i]
			}
			n++
		}
	}
	removed := len(s.items) - n
	clear(s.items[n:])
	s.items = s.items[:n]
	return removed
}

// Clear drops every particle but keeps the id counter and capacity.
func (s *Store) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Snapshot copies the render-facing fields of every particle.
func (s *Store) Snapshot() dynamo.Snapshot {
	snap := make(dynamo.Snapshot, len(s.items))
	for i := range s.items {
		snap[i] = s.items[i].Sprite()
	}
	return snap
}
