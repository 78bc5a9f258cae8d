package slotmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesCapacity(t *testing.T) {
	cases := []struct {
		name string
		cap  uint32
		ok   bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"not power of two", 3, false},
		{"min ok", MinCapacity, true},
		{"typical ok", 64, true},
		{"max ok", MaxCapacity, true},
		{"over max", MaxCapacity * 2, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := New(tc.cap)
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, tc.cap, tbl.Capacity())
			} else {
				require.True(t, errors.Is(err, ErrBadCapacity))
			}
		})
	}
}

func TestTable_InsertLookupRoundTrip(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	h, err := tbl.Insert([]byte("views"), NewCount(3))
	require.NoError(t, err)
	require.NotNil(t, h)

	found, ok := tbl.Lookup([]byte("views"))
	require.True(t, ok)

	err = found.Read(func(v *Value, key []byte) {
		require.Equal(t, "views", string(key))
		n, err := v.Count()
		require.NoError(t, err)
		require.Equal(t, uint64(3), n)
	})
	require.NoError(t, err)

	require.EqualValues(t, 1, tbl.Load())
}

func TestTable_Lookup_MissingKey(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	_, ok := tbl.Lookup([]byte("nope"))
	require.False(t, ok)
}

func TestTable_Insert_RejectsEmptyAndOversizedKeys(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	_, err = tbl.Insert(nil, NewCount(0))
	require.True(t, errors.Is(err, ErrEmptyKey))

	_, err = tbl.Insert(make([]byte, MaxKeyLen+1), NewCount(0))
	require.True(t, errors.Is(err, ErrKeyTooLong))
}

func TestTable_Insert_OverwriteReplacesValueAndInvalidatesOldHandle(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	h1, err := tbl.Insert([]byte("k"), NewCount(1))
	require.NoError(t, err)

	h2, err := tbl.Insert([]byte("k"), NewCount(99))
	require.NoError(t, err)

	require.EqualValues(t, 1, tbl.Load(), "overwrite must not change occupancy")

	err = h1.Read(func(*Value, []byte) {})
	require.True(t, errors.Is(err, ErrInvalidated))

	err = h2.Read(func(v *Value, _ []byte) {
		n, err := v.Count()
		require.NoError(t, err)
		require.Equal(t, uint64(99), n)
	})
	require.NoError(t, err)
}

func TestTable_Remove_ReportsPresence(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	require.False(t, tbl.Remove([]byte("absent")))

	h, err := tbl.Insert([]byte("k"), NewCount(0))
	require.NoError(t, err)

	require.True(t, tbl.Remove([]byte("k")))
	require.EqualValues(t, 0, tbl.Load())

	_, ok := tbl.Lookup([]byte("k"))
	require.False(t, ok)

	err = h.Read(func(*Value, []byte) {})
	require.True(t, errors.Is(err, ErrInvalidated))
}

func TestTable_Remove_CompactionPreservesSurvivorLookups(t *testing.T) {
	const capacity = 256
	const n = 40

	tbl, err := New(capacity)
	require.NoError(t, err)

	keys := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("survivor-key-%03d", i))
		_, err := tbl.Insert(k, NewCount(uint64(i)))
		require.NoError(t, err)
		keys = append(keys, k)
	}

	// Remove every third key and verify every remaining key is still
	// reachable afterward, which only holds if backward-shift compaction
	// keeps every survivor's probe chain intact.
	for i := 0; i < n; i += 3 {
		require.True(t, tbl.Remove(keys[i]))
	}

	for i, k := range keys {
		h, ok := tbl.Lookup(k)
		if i%3 == 0 {
			require.Falsef(t, ok, "removed key %q should be gone", k)
			continue
		}

		require.Truef(t, ok, "surviving key %q should still be reachable after compaction", k)

		err := h.Read(func(v *Value, gotKey []byte) {
			require.Equal(t, string(k), string(gotKey))
			n, err := v.Count()
			require.NoError(t, err)
			require.Equal(t, uint64(i), n)
		})
		require.NoError(t, err)
	}
}

func TestTable_Full(t *testing.T) {
	tbl, err := New(4)
	require.NoError(t, err)

	sawFull := false

	for i := 0; i < 40; i++ {
		_, err := tbl.Insert([]byte(fmt.Sprintf("k%02d", i)), NewCount(0))
		if errors.Is(err, ErrTableFull) {
			sawFull = true
			break
		}
		require.NoError(t, err)
	}

	require.True(t, sawFull, "inserting far more keys than capacity should eventually report ErrTableFull")
}

func TestTable_Iterate_VisitsAllOccupiedSlots(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	want := map[string]bool{}
	for i := 0; i < 10; i++ {
		k := fmt.Sprintf("key-%d", i)
		_, err := tbl.Insert([]byte(k), NewCount(0))
		require.NoError(t, err)
		want[k] = true
	}

	got := map[string]bool{}
	tbl.Iterate(func(h *Handle) bool {
		require.NoError(t, h.Read(func(_ *Value, key []byte) {
			got[string(key)] = true
		}))
		return true
	})

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Iterate visited an unexpected set of keys (-want +got):\n%s", diff)
	}
}

func TestTable_Iterate_StopsEarly(t *testing.T) {
	tbl, err := New(64)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := tbl.Insert([]byte(fmt.Sprintf("key-%d", i)), NewCount(0))
		require.NoError(t, err)
	}

	visited := 0
	tbl.Iterate(func(h *Handle) bool {
		visited++
		return visited < 3
	})

	require.Equal(t, 3, visited)
}
