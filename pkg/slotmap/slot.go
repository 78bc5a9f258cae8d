package slotmap

import (
	"sync"
	"sync/atomic"
	"time"
)

// Component C: one cell of the fixed table.
//
// The per-slot lock protects the key, the value, and the back-reference
// set jointly — they are always read or written together. The generation
// counter is read without the lock (readers snapshot it, then re-check
// after acquiring the lock) but is only ever advanced while the writer
// holds the lock, so "the generation observed, then the lock taken, then
// the generation re-checked" is race-free: a writer cannot install a new
// generation without first taking the lock a reader is about to wait on.
type slot struct {
	mu sync.RWMutex

	key []byte
	val Value

	// backrefs is the set of groups that reference this slot as a
	// member: group slot index -> generation captured when this slot
	// was added to that group. nil until this slot is added to a group.
	backrefs map[uint32]uint32

	generation atomic.Uint32

	lastTouch time.Time
	ttl       time.Duration
}

// bumpGeneration advances the generation counter. Callers must hold the
// slot's write lock.
func (s *slot) bumpGeneration() {
	s.generation.Add(1)
}

// isEmpty reports whether the slot is unoccupied. Callers must hold at
// least a read lock, or accept that the result may be stale by the time
// it's used (as the probe loop does — it always re-validates under the
// slot's own lock before acting).
func (s *slot) isEmpty() bool {
	return len(s.key) == 0
}

func (s *slot) reset() {
	s.key = nil
	s.val = emptyValue()
	s.backrefs = nil
	s.lastTouch = time.Time{}
	s.ttl = 0
}

func emptyValue() Value {
	return Value{kind: KindEmpty}
}
