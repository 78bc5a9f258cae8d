package slotmap

// Count returns the current reading. Returns [ErrWrongKind] if v does
// not hold a COUNT.
func (v *Value) Count() (uint64, error) {
	if v.kind != KindCount {
		return 0, ErrWrongKind
	}

	return v.count, nil
}

// SetCount overwrites the current reading. Returns [ErrWrongKind] if v
// does not hold a COUNT.
func (v *Value) SetCount(n uint64) error {
	if v.kind != KindCount {
		return ErrWrongKind
	}

	v.count = n

	return nil
}

// Increment applies delta with wrapping two's-complement arithmetic and
// returns the new reading. A delta of -1 on a reading of 0 wraps to
// 2^64-1; a delta of +1 on 2^64-1 wraps to 0.
//
// Returns [ErrWrongKind] if v does not hold a COUNT.
func (v *Value) Increment(delta int64) (uint64, error) {
	if v.kind != KindCount {
		return 0, ErrWrongKind
	}

	v.count += uint64(delta)

	return v.count, nil
}
