package slotmap

// Component E: a slot handle.
//
// A Handle is a cheap, copyable (index, generation) pair naming a slot as
// it existed at the moment the handle was minted. It carries no lock of
// its own — every Read or Write opens the target slot's lock for the
// duration of the callback only, and checks the captured generation
// against the slot's live generation before invoking the callback. A
// mismatch means the slot's generation has advanced since the handle last
// tracked it (the key was deleted or overwritten by [Table.Insert], the
// slot was written or its group membership changed through another
// handle, or compaction moved the slot), and the handle is permanently
// dead: it reports [ErrInvalidated] and will keep doing so, even if the
// slot is later reused for the same key again with a fresh generation.
type Handle struct {
	table      *Table
	index      uint32
	generation uint32
}

// Seq is a lazy sequence of handles, compatible with Go's range-over-func
// iteration (for h := range seq).
type Seq func(yield func(*Handle) bool)

// Read opens a shared lock on the handle's slot and, if the handle is
// still valid, invokes fn with the slot's current value and key. Neither
// argument may be retained past fn's return.
//
// Returns [ErrInvalidated] if the slot has been reused since the handle
// was minted.
func (h *Handle) Read(fn func(v *Value, key []byte)) error {
	s := &h.table.slots[h.index]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generation.Load() != h.generation {
		return ErrInvalidated
	}

	fn(&s.val, s.key)

	return nil
}

// Write opens an exclusive lock on the handle's slot and, if the handle
// is still valid, invokes fn with the slot's current value and key for
// in-place mutation. On successful return the slot's generation is
// advanced and the handle is updated to track it, so the same handle
// remains usable for further Reads and Writes by its own owner. Any other
// generation advance on the slot (a deletion, an overwrite by
// [Table.Insert], or a write through another handle) invalidates it.
//
// Returns [ErrInvalidated] if the slot has been reused since the handle
// was minted.
func (h *Handle) Write(fn func(v *Value, key []byte)) error {
	s := &h.table.slots[h.index]

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != h.generation {
		return ErrInvalidated
	}

	fn(&s.val, s.key)
	s.bumpGeneration()
	h.generation = s.generation.Load()

	return nil
}
