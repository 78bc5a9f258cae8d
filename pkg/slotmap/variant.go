package slotmap

// Kind identifies which of the closed set of value shapes a slot holds.
// Kinds are closed: the table does not permit extension at runtime.
type Kind uint8

const (
	// KindEmpty is the default-constructed state of an unoccupied slot.
	KindEmpty Kind = iota

	// KindBlob is a raw byte payload, inline up to [InlineBlobLen] bytes
	// and spilled to an owned buffer beyond that, up to [MaxBlobLen].
	KindBlob

	// KindCount is an unsigned 64-bit counter with wrapping arithmetic.
	KindCount

	// KindGroup is an unordered set of weak references to member slots.
	KindGroup
)

// String returns a short human-readable name, used by cmd/smctl and by
// test failure output.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBlob:
		return "blob"
	case KindCount:
		return "count"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Value is the tagged union backing a slot: exactly one of the payload
// fields is meaningful, selected by Kind. There is no interface / virtual
// dispatch on purpose — kinds are closed, and a tagged struct lets the
// table preallocate every slot without an interface's hidden allocation.
//
// A Value obtained fresh from [NewBlob], [NewCount], or [NewGroup] is
// detached: it is a plain payload meant to be passed to [Table.Insert].
// A Value obtained from a [Handle]'s Read/Write callback is bound to a
// live slot; its pointer must not be retained past the callback (see
// package doc).
type Value struct {
	kind Kind

	// BLOB payload. blobSpilled selects which of the two buffers is
	// authoritative; it is the "mode flag" mentioned in the value
	// contract, kept explicit rather than derived from blobSpill == nil
	// so that SetBlob can update content and mode together.
	blobInline  [InlineBlobLen]byte
	blobLen     int
	blobSpill   []byte
	blobSpilled bool

	// COUNT payload.
	count uint64

	// GROUP payload: the forward set, member slot index -> generation
	// captured when the member was added.
	group map[uint32]uint32

	// table is populated when a Value is installed into a live slot; it
	// lets Members() mint Handles for the group's members. Detached
	// Values (fresh from New*) have a nil table and no group members yet.
	table *Table
}

// Kind reports which variant v holds.
func (v *Value) Kind() Kind {
	return v.kind
}

// NewBlob constructs a detached BLOB value from the given bytes. The
// bytes are copied; the caller's slice may be reused afterward.
func NewBlob(b []byte) (Value, error) {
	v := Value{kind: KindBlob}

	if err := v.SetBlob(b); err != nil {
		return Value{}, err
	}

	return v, nil
}

// NewCount constructs a detached COUNT value with the given initial
// reading.
func NewCount(n uint64) Value {
	return Value{kind: KindCount, count: n}
}

// NewGroup constructs a detached, empty GROUP value. Members are added
// after insertion with [Table.GroupAdd].
func NewGroup() Value {
	return Value{kind: KindGroup}
}

// clone returns a value copy suitable for installing into a slot: group
// membership is deep-copied so the detached value passed to Insert and
// the slot's own copy never alias the same map.
func (v Value) clone() Value {
	out := v
	out.table = nil

	if v.group != nil {
		out.group = make(map[uint32]uint32, len(v.group))
		for k, g := range v.group {
			out.group[k] = g
		}
	}

	if v.blobSpill != nil {
		out.blobSpill = append([]byte(nil), v.blobSpill...)
	}

	return out
}
