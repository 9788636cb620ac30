package annotation

import "sync"

// Update describes a shallow partial update of a bounding box. Nil fields are
// left untouched; the id can never change.
type Update struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	Kind   *Kind
	Role   *Role
}

// Stats summarizes the store contents. Boxes without an explicit kind count
// as manual.
type Stats struct {
	Total     int          `json:"total"`
	ByKind    map[Kind]int `json:"counts_by_kind"`
	HasManual bool         `json:"has_manual"`
	HasOCR    bool         `json:"has_ocr"`
	HasTable  bool         `json:"has_table"`
}

// Store is an insertion-ordered collection of bounding boxes. Operations on a
// missing id are silent no-ops, never errors. The store is safe for
// concurrent use since tool handlers may run on separate goroutines.
type Store struct {
	mu    sync.Mutex
	boxes []BoundingBox
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a box, preserving insertion order.
func (s *Store) Add(b BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = append(s.boxes, b)
}

// AddAll appends boxes in the given order.
func (s *Store) AddAll(boxes []BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = append(s.boxes, boxes...)
}

// Remove deletes the box with the given id. It reports whether a box was
// removed; a missing id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boxes {
		if s.boxes[i].ID == id {
			s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveByKind deletes every box of the given kind, leaving the order of the
// remaining boxes unchanged. It returns the number removed.
func (s *Store) RemoveByKind(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.boxes[:0]
	removed := 0
	for _, b := range s.boxes {
		if b.EffectiveKind() == kind {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.boxes = kept
	return removed
}

// Clear removes all boxes and returns how many were present.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.boxes)
	s.boxes = nil
	return n
}

// Update merges the given partial fields into the box with the given id. It
// reports whether a box was updated; a missing id is a no-op.
func (s *Store) Update(id string, u Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boxes {
		if s.boxes[i].ID != id {
			continue
		}
		b := &s.boxes[i]
		if u.X != nil {
			b.X = *u.X
		}
		if u.Y != nil {
			b.Y = *u.Y
		}
		if u.Width != nil {
			b.Width = *u.Width
		}
		if u.Height != nil {
			b.Height = *u.Height
		}
		if u.Kind != nil {
			b.Kind = *u.Kind
		}
		if u.Role != nil {
			b.Role = *u.Role
		}
		return true
	}
	return false
}

// Get returns the box with the given id.
func (s *Store) Get(id string) (BoundingBox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.boxes {
		if b.ID == id {
			return b, true
		}
	}
	return BoundingBox{}, false
}

// ByKind returns the boxes of the given kind in insertion order.
func (s *Store) ByKind(kind Kind) []BoundingBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []BoundingBox
	for _, b := range s.boxes {
		if b.EffectiveKind() == kind {
			out = append(out, b)
		}
	}
	return out
}

// All returns a copy of the boxes in insertion order.
func (s *Store) All() []BoundingBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BoundingBox, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Len returns the number of stored boxes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boxes)
}

// Stats computes aggregate statistics over the store.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Total:  len(s.boxes),
		ByKind: make(map[Kind]int),
	}
	for _, b := range s.boxes {
		st.ByKind[b.EffectiveKind()]++
	}
	st.HasManual = st.ByKind[KindManual] > 0
	st.HasOCR = st.ByKind[KindOCR] > 0
	st.HasTable = st.ByKind[KindTable] > 0
	return st
}
