// Package slotmap provides a fixed-capacity, in-memory hash table built for
// concurrent multi-reader / single-writer access to inlined, polymorphic
// values.
//
// slotmap never grows: capacity is fixed at construction and every slot is
// preallocated in a single contiguous block. There is no rehashing and no
// tombstone accumulation. The slot array is never reallocated, but an
// insert is not allocation-free: [Table.Insert] copies the key into a new
// byte slice, deep-copies a spilled blob or group map, and returns a newly
// allocated [Handle]. It is not a general-purpose map replacement — it trades growth
// and generality for predictable memory layout and lock-scoped pointer
// access to values stored in place.
//
// # Basic usage
//
//	table, err := slotmap.New(1024)
//	if err != nil {
//	    // capacity was not a power of two in [2, 1<<16]
//	}
//
//	h, err := table.Insert([]byte("views"), slotmap.NewCount(0))
//	if err != nil {
//	    // table is full along the probe path
//	}
//
//	err = h.Write(func(v *slotmap.Value, _ []byte) {
//	    v.Increment(1)
//	})
//	if errors.Is(err, slotmap.ErrInvalidated) {
//	    // someone removed or overwrote "views" in the meantime; re-lookup
//	}
//
// # Values
//
// A slot holds exactly one of three shapes ([Kind]): [KindBlob] (an inline
// or spilled byte buffer, via [Value.Blob]/[Value.SetBlob]), [KindCount] (a
// wrapping uint64 counter, via [Value.Count]/[Value.Increment]), or
// [KindGroup] (an unordered set of weak references to other slots, via
// [Value.Members]/[Table.GroupAdd]). Operating against the wrong kind
// returns [ErrWrongKind].
//
// # Handles
//
// [Table.Lookup] and [Table.Insert] return a [Handle]: a generation-checked
// cursor bound to one slot. [Handle.Read] and [Handle.Write] acquire the
// slot's lock, verify the slot has not been reused since the handle was
// obtained, and hand the caller a pointer to the value for the duration of
// a callback. That pointer must never escape the callback — it is only
// safe to dereference while the slot's lock is held.
//
// # Concurrency
//
// Reads and writes on independent slots proceed concurrently. Within one
// slot, readers may run concurrently with each other but not with a
// writer. The table structure itself (the slot array) never changes shape
// after construction. The one table-wide lock is a read-write lock that
// [Table.Iterate] holds shared for its whole walk and [Table.Remove] holds
// exclusively only while compacting the probe chain; inserts, lookups and
// handle operations never take it. Operations that lock two slots
// ([Table.GroupAdd], [Table.GroupRemove], compaction) take them in
// ascending slot-index order and run no caller code while holding both.
// Occupancy is tracked with a relaxed atomic counter for advisory use only.
package slotmap
