package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_PushPop(t *testing.T) {
	v := NewVector[int](0)
	v.Push(1)
	v.Push(2)
	v.Push(3)
	require.Equal(t, 3, v.Length())

	top, ok := v.PopCopy()
	require.True(t, ok)
	assert.Equal(t, 3, top)
	assert.Equal(t, 2, v.Length())
}

func TestVector_PopCopyDoesNotZeroVacatedSlot(t *testing.T) {
	// The vacated slot is deliberately not zeroed: a pop followed by a
	// push must simply overwrite the old value, never observe a zeroed
	// slot in between.
	v := NewVector[int](4)
	v.Push(42)
	_, ok := v.PopCopy()
	require.True(t, ok)
	require.Equal(t, 0, v.Length())

	v.Push(7)
	got, ok := v.Peek()
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestVector_PopDiscard(t *testing.T) {
	v := NewVector[int](0)
	v.Push(1)
	v.PopDiscard()
	assert.Equal(t, 0, v.Length())
	v.PopDiscard() // popping empty is a no-op, not a panic
	assert.Equal(t, 0, v.Length())
}

func TestVector_PeekOnEmpty(t *testing.T) {
	v := NewVector[int](0)
	_, ok := v.Peek()
	assert.False(t, ok)
	_, ok = v.PeekCopy()
	assert.False(t, ok)
}

func TestVector_AtAndGet(t *testing.T) {
	v := NewVector[string](0)
	v.Push("a")
	v.Push("b")

	p := v.At(1)
	require.NotNil(t, p)
	assert.Equal(t, "b", *p)
	assert.Nil(t, v.At(5))

	var out string
	assert.True(t, v.Get(0, &out))
	assert.Equal(t, "a", out)
	assert.False(t, v.Get(99, &out))
}

func TestVector_FindAndDeleteFirst(t *testing.T) {
	v := NewVector[int](0)
	for _, n := range []int{5, 6, 7, 6} {
		v.Push(n)
	}

	idx := v.Find(func(n int) bool { return n == 6 })
	assert.Equal(t, 1, idx)

	ok := v.DeleteFirst(func(n int) bool { return n == 6 })
	require.True(t, ok)
	assert.Equal(t, []int{5, 7, 6}, v.Slice())

	assert.False(t, v.DeleteFirst(func(n int) bool { return n == 999 }))
}

func TestVector_RemoveAll(t *testing.T) {
	v := NewVector[int](0)
	for _, n := range []int{1, 2, 1, 3, 1} {
		v.Push(n)
	}
	removed := v.RemoveAll(func(n int) bool { return n == 1 })
	assert.Equal(t, 3, removed)
	assert.Equal(t, []int{2, 3}, v.Slice())
}

func TestVector_ClearAndDuplicate(t *testing.T) {
	v := NewVector[int](0)
	v.Push(1)
	v.Push(2)

	dup := v.Duplicate()
	v.Push(3)
	assert.Equal(t, 2, dup.Length(), "Duplicate must not alias the original's backing storage")
	assert.Equal(t, 3, v.Length())

	v.Clear()
	assert.Equal(t, 0, v.Length())
}

func TestVector_Shrink(t *testing.T) {
	v := NewVector[int](16)
	v.Push(1)
	assert.Equal(t, 16, v.Capacity())
	v.Shrink()
	assert.Equal(t, 1, v.Capacity())
}

func TestVector_GrowthFactorDoubles(t *testing.T) {
	v := NewVector[int](1)
	v.Push(1)
	v.Push(2) // forces growth beyond the initial capacity of 1
	assert.GreaterOrEqual(t, v.Capacity(), 2)
}

func TestArenaVector_GrowsFromArena(t *testing.T) {
	a := NewArena(64)
	av := NewArenaVector[int](a, 2, 8)
	for i := 0; i < 10; i++ {
		av.Push(i)
	}
	require.Equal(t, 10, av.Length())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, av.Slice())
	assert.NotNil(t, a.next, "growing past the initial capacity should have charged the arena for a fresh node")
}
