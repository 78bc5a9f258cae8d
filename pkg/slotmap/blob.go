package slotmap

// Blob returns the current BLOB payload. The returned slice aliases
// either the value's inline array or its spilled buffer and is valid
// only for the duration of the surrounding [Handle.Read]/[Handle.Write]
// callback — it must not escape.
//
// Returns [ErrWrongKind] if v does not hold a BLOB.
func (v *Value) Blob() ([]byte, error) {
	if v.kind != KindBlob {
		return nil, ErrWrongKind
	}

	if v.blobSpilled {
		return v.blobSpill, nil
	}

	return v.blobInline[:v.blobLen], nil
}

// SetBlob replaces the BLOB payload. Payloads up to [InlineBlobLen] bytes
// are copied into the inline buffer and any spilled buffer is dropped;
// larger payloads (up to [MaxBlobLen]) replace the spilled buffer's
// contents. The mode flag is updated together with the content, so a
// concurrent reader under the same lock never observes a length that
// doesn't match the buffer it's reading from.
//
// Returns [ErrWrongKind] if v does not hold a BLOB, [ErrBlobTooLong] if
// len(b) exceeds [MaxBlobLen].
func (v *Value) SetBlob(b []byte) error {
	if v.kind != KindBlob {
		return ErrWrongKind
	}

	return v.setBlobBytes(b)
}

func (v *Value) setBlobBytes(b []byte) error {
	if len(b) > MaxBlobLen {
		return ErrBlobTooLong
	}

	if len(b) <= InlineBlobLen {
		copy(v.blobInline[:], b)
		v.blobLen = len(b)
		v.blobSpill = nil
		v.blobSpilled = false

		return nil
	}

	v.blobSpill = append(v.blobSpill[:0], b...)
	v.blobSpilled = true

	return nil
}
