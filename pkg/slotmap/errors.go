package slotmap

import "errors"

// Sentinel errors returned by slotmap operations.
//
// Callers should use [errors.Is] to check error kinds:
//
//	if errors.Is(err, slotmap.ErrTableFull) {
//	    // evict something, or reject the write upstream
//	}
var (
	// ErrBadCapacity indicates a capacity that is not a power of two in
	// the range [2, 1<<16]. Returned only from [New].
	ErrBadCapacity = errors.New("slotmap: bad capacity")

	// ErrTableFull indicates no free slot was found within the probe
	// sequence for a key that was not already present. The signal to an
	// outer system is to evict something or reject the write.
	ErrTableFull = errors.New("slotmap: table full")

	// ErrInvalidated indicates a [Handle] was used after the slot it
	// refers to was overwritten or removed. The signal to the caller is
	// to re-[Table.Lookup] the key.
	ErrInvalidated = errors.New("slotmap: handle invalidated")

	// ErrWrongKind indicates a variant operation (Blob/Count/Group) was
	// invoked against a value of a different [Kind].
	ErrWrongKind = errors.New("slotmap: wrong kind")

	// ErrEmptyKey indicates an operation was given the empty key, which
	// is reserved as the "slot unoccupied" sentinel.
	ErrEmptyKey = errors.New("slotmap: empty key")

	// ErrKeyTooLong indicates a key exceeded [MaxKeyLen].
	ErrKeyTooLong = errors.New("slotmap: key too long")

	// ErrBlobTooLong indicates a blob payload exceeded [MaxBlobLen].
	ErrBlobTooLong = errors.New("slotmap: blob too long")
)
