package slotmap

// Component F: bi-directional membership linkage across slots.
//
// A GROUP's forward set (held in the value itself, see [Value.group])
// maps each member's slot index to the generation captured when it was
// added. Symmetrically, every member slot carries a back-reference set
// (held on the slot record, not the value, since a member can be any
// kind) mapping each referencing group's slot index to the generation
// captured at the same moment.
//
// Cleanup in either direction is best-effort and never atomic with the
// triggering write (see [Table.Remove] and [Table.Insert]): a reader of
// a GROUP must always validate each forward reference by attempting a
// [Handle.Read]/[Handle.Write] and treating [ErrInvalidated] as "this
// member is gone." The invariant preserved is "no dangling exposed
// reference," not "no dangling stored reference."

// Members returns a lazy sequence over the group's members. Each yielded
// [Handle] is bound to the generation captured when that member was
// added; the handle's own generation check (on the first [Handle.Read]
// or [Handle.Write] against it) is what "checked on first access" means
// — Members itself does no validation.
//
// Returns [ErrWrongKind] if v does not hold a GROUP.
func (v *Value) Members() (Seq, error) {
	if v.kind != KindGroup {
		return nil, ErrWrongKind
	}

	table := v.table
	entries := make(map[uint32]uint32, len(v.group))

	for idx, gen := range v.group {
		entries[idx] = gen
	}

	return func(yield func(*Handle) bool) {
		for idx, gen := range entries {
			h := &Handle{table: table, index: idx, generation: gen}
			if !yield(h) {
				return
			}
		}
	}, nil
}

// GroupAdd inserts member into group's membership set and registers a
// back-reference on the member's slot, as a single operation that
// acquires both slots' locks in ascending slot-index order and never
// calls back into user code while holding more than one lock (see the
// concurrency model in the package doc). This is why GroupAdd is a
// [Table] method rather than a [Value] method invoked from inside an
// ordinary [Handle.Write] callback: nesting a second slot-lock
// acquisition inside a user-visible callback would violate that rule.
//
// On success the group slot's generation advances and group is updated
// to track it, so the same group handle can be used for further calls.
//
// Returns [ErrInvalidated] if either handle's generation no longer
// matches its slot, or [ErrWrongKind] if group's slot does not hold a
// GROUP.
func (t *Table) GroupAdd(group, member *Handle) error {
	return t.groupLink(group, member, true)
}

// GroupRemove removes member from group's membership set and unregisters
// the corresponding back-reference on the member's slot. See [GroupAdd]
// for the locking discipline.
//
// Returns [ErrInvalidated] if either handle's generation no longer
// matches its slot, or [ErrWrongKind] if group's slot does not hold a
// GROUP.
func (t *Table) GroupRemove(group, member *Handle) error {
	return t.groupLink(group, member, false)
}

func (t *Table) groupLink(group, member *Handle, add bool) error {
	if group.table != t || member.table != t {
		return ErrInvalidated
	}

	first, second := group.index, member.index
	if first > second {
		first, second = second, first
	}

	s1, s2 := &t.slots[first], &t.slots[second]

	s1.mu.Lock()
	defer s1.mu.Unlock()

	if first != second {
		s2.mu.Lock()
		defer s2.mu.Unlock()
	}

	gSlot, mSlot := &t.slots[group.index], &t.slots[member.index]

	if gSlot.generation.Load() != group.generation || mSlot.generation.Load() != member.generation {
		return ErrInvalidated
	}

	if gSlot.val.kind != KindGroup {
		return ErrWrongKind
	}

	// Only the group's own exposed value (its membership set) changes;
	// the member's value is untouched, so only the group's slot
	// generation advances. Bumping the member's generation here would
	// spuriously invalidate outstanding handles that have nothing to do
	// with group membership. As with [Handle.Write], the caller's group
	// handle is advanced to the new generation so it stays usable.
	gSlot.bumpGeneration()
	group.generation = gSlot.generation.Load()

	if add {
		if gSlot.val.group == nil {
			gSlot.val.group = make(map[uint32]uint32)
		}

		gSlot.val.group[member.index] = member.generation

		if mSlot.backrefs == nil {
			mSlot.backrefs = make(map[uint32]uint32)
		}

		mSlot.backrefs[group.index] = group.generation
	} else {
		delete(gSlot.val.group, member.index)
		delete(mSlot.backrefs, group.index)
	}

	return nil
}
