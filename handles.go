package uphysics

type handleSlot struct {
	gen  uint32
	mesh *registeredBVH
}

// handleTable maps handles to live registrations. Freed slots are reused
// with a bumped generation.
type handleTable struct {
	slots []handleSlot
	free  []uint32
}

// reset frees every slot. Generations survive so handles issued before the
// reset stay stale.
func (t *handleTable) reset() {
	t.free = t.free[:0]
	for i := len(t.slots) - 1; i >= 0; i-- {
		t.slots[i].mesh = nil
		t.free = append(t.free, uint32(i))
	}
}

func (t *handleTable) alloc(m *registeredBVH) Handle {
	var slot uint32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		slot = uint32(len(t.slots))
		t.slots = append(t.slots, handleSlot{})
	}
	s := &t.slots[slot]
	s.gen++
	if s.gen == 0 {
		// wrapped; zero is reserved for the invalid handle
		s.gen = 1
	}
	s.mesh = m
	return makeHandle(slot, s.gen)
}

func (t *handleTable) resolve(h Handle) (*registeredBVH, bool) {
	if h.IsZero() || int(h.slot()) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.slot()]
	if s.gen != h.generation() || s.mesh == nil {
		return nil, false
	}
	return s.mesh, true
}

func (t *handleTable) release(h Handle) bool {
	if _, ok := t.resolve(h); !ok {
		return false
	}
	t.slots[h.slot()].mesh = nil
	t.free = append(t.free, h.slot())
	return true
}
