package dashboard

// Handle is a rendered widget that holds resources until released.
type Handle interface {
	Release()
}

// Slots keeps at most one live handle per named slot.
type Slots struct {
	live map[string]Handle
}

func NewSlots() *Slots {
	return &Slots{live: make(map[string]Handle)}
}

// Acquire stores h in slot, releasing the previous occupant first.
func (s *Slots) Acquire(slot string, h Handle) {
	if old, ok := s.live[slot]; ok && old != nil {
		old.Release()
	}
	s.live[slot] = h
}

func (s *Slots) Get(slot string) (Handle, bool) {
	h, ok := s.live[slot]
	return h, ok
}

// Release frees the handle in slot, if any.
func (s *Slots) Release(slot string) {
	if h, ok := s.live[slot]; ok {
		h.Release()
		delete(s.live, slot)
	}
}

// ReleaseAll frees every slot.
func (s *Slots) ReleaseAll() {
	for slot := range s.live {
		s.Release(slot)
	}
}

// Live is the number of occupied slots.
func (s *Slots) Live() int {
	return len(s.live)
}
