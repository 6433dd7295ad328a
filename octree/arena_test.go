package octree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDSentinel(t *testing.T) {
	require.True(t, None.IsNone())
	require.False(t, None.IsSome())

	id := idFromIndex(0)
	require.True(t, id.IsSome())
	require.Equal(t, 0, id.index())
}

func TestArenaAllocAppends(t *testing.T) {
	var a arena[string]

	first := a.alloc("first")
	second := a.alloc("second")

	require.NotEqual(t, first, second)
	require.Equal(t, "first", *a.at(first))
	require.Equal(t, "second", *a.at(second))
}

func TestArenaSlotReuse(t *testing.T) {
	var a arena[string]

	first := a.alloc("first")
	second := a.alloc("second")

	a.release(first)

	// The freed slot is recycled before the arena grows, and its old
	// content is plainly overwritten.
	third := a.alloc("third")
	require.Equal(t, first, third)
	require.Equal(t, "third", *a.at(third))
	require.Equal(t, "second", *a.at(second))
	require.Len(t, a.slots, 2)
}

func TestArenaReset(t *testing.T) {
	var a arena[int]

	a.alloc(1)
	a.alloc(2)
	a.release(idFromIndex(0))
	a.reset()

	require.Empty(t, a.slots)
	require.Empty(t, a.free)

	id := a.alloc(3)
	require.Equal(t, idFromIndex(0), id)
}
