package arena_test

import (
	"testing"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/stretchr/testify/require"
)

func TestAllocZeroesValue(t *testing.T) {
	a := arena.New()
	n := arena.Alloc[int](a)
	require.Equal(t, 0, *n)
	*n = 42
	require.Equal(t, 42, *n)
}

func TestAllocSliceTracksStats(t *testing.T) {
	a := arena.New()
	s := arena.AllocSlice[int](a, 8)
	require.Len(t, s, 8)

	count, bytes := a.Stats()
	require.Equal(t, 1, count)
	require.Greater(t, bytes, uintptr(0))
}

func TestResetClearsStats(t *testing.T) {
	a := arena.New()
	arena.Alloc[int](a)
	a.Reset()

	count, bytes := a.Stats()
	require.Equal(t, 0, count)
	require.Equal(t, uintptr(0), bytes)
}
