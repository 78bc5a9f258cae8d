package slotmap

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_Count_RoundTrip(t *testing.T) {
	v := NewCount(42)

	got, err := v.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)
}

func TestValue_Count_SetCount(t *testing.T) {
	v := NewCount(0)
	require.NoError(t, v.SetCount(7))

	got, err := v.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(7), got)
}

func TestValue_Count_IncrementWrapsOnUnderflow(t *testing.T) {
	v := NewCount(0)

	got, err := v.Increment(-1)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got)
}

func TestValue_Count_IncrementWrapsOnOverflow(t *testing.T) {
	v := NewCount(math.MaxUint64)

	got, err := v.Increment(1)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got)
}

func TestValue_Count_WrongKind(t *testing.T) {
	v := NewGroup()

	_, err := v.Count()
	require.True(t, errors.Is(err, ErrWrongKind))

	require.True(t, errors.Is(v.SetCount(1), ErrWrongKind))

	_, err = v.Increment(1)
	require.True(t, errors.Is(err, ErrWrongKind))
}
