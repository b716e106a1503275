package editor

// Corrections returns the outstanding corrections in engine response order.
func (s *Session) Corrections() []Correction {
	out := make([]Correction, len(s.corrections))
	copy(out, s.corrections)
	return out
}

// SetCorrections replaces the ledger wholesale after an engine round trip.
// Any previously active correction may no longer exist, so the selection is
// always cleared.
func (s *Session) SetCorrections(corrections []Correction) {
	s.corrections = append([]Correction(nil), corrections...)
	s.hasActive = false
}

// Select marks a correction active. The UI may hold an id across an async
// refresh, so an id absent from the ledger selects nothing rather than
// failing.
func (s *Session) Select(id int) {
	if s.find(id) < 0 {
		s.hasActive = false
		return
	}
	s.activeID = id
	s.hasActive = true
}

func (s *Session) ClearSelection() { s.hasActive = false }

// ActiveCorrection returns the currently selected correction, if its id still
// matches a live ledger entry.
func (s *Session) ActiveCorrection() (Correction, bool) {
	if !s.hasActive {
		return Correction{}, false
	}
	if i := s.find(s.activeID); i >= 0 {
		return s.corrections[i], true
	}
	return Correction{}, false
}

// Accept applies a correction to the buffer: splice in the replacement,
// remove the entry, and shift the offsets of every correction positioned
// after it by the length delta. An id not present in the ledger is a silent
// no-op, tolerating races with a concurrent refresh.
func (s *Session) Accept(id int) {
	i := s.find(id)
	if i < 0 {
		return
	}
	c := s.corrections[i]
	if c.StartIndex < 0 || c.StartIndex > c.EndIndex || c.EndIndex > len(s.text) {
		// Range no longer fits the buffer; it can never be applied.
		s.remove(id)
		s.hasActive = false
		return
	}

	s.text = s.text[:c.StartIndex] + c.Corrected + s.text[c.EndIndex:]
	delta := len(c.Corrected) - (c.EndIndex - c.StartIndex)

	next := make([]Correction, 0, len(s.corrections)-1)
	for _, other := range s.corrections {
		if other.ID == id {
			continue
		}
		if s.overlapPolicy == DropOverlapping && overlaps(other, c) {
			continue
		}
		if other.StartIndex > c.StartIndex {
			other.StartIndex += delta
			other.EndIndex += delta
		}
		next = append(next, other)
	}
	s.corrections = next
	s.hasActive = false
}

// Reject discards a correction without touching the buffer. Missing ids are
// silent no-ops.
func (s *Session) Reject(id int) {
	if s.find(id) < 0 {
		return
	}
	s.remove(id)
	s.hasActive = false
}

func (s *Session) find(id int) int {
	for i, c := range s.corrections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) remove(id int) {
	next := s.corrections[:0]
	for _, c := range s.corrections {
		if c.ID != id {
			next = append(next, c)
		}
	}
	s.corrections = next
}

func overlaps(a, b Correction) bool {
	return a.StartIndex < b.EndIndex && b.StartIndex < a.EndIndex
}
