package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushPeekReleaseFIFO(t *testing.T) {
	r := New(4)

	require.True(t, r.Push(MessageBlock{Data: []byte("a")}))
	require.True(t, r.Push(MessageBlock{Data: []byte("b")}))
	assert.Equal(t, 2, r.Len())

	mb, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", string(mb.Data))

	r.Release()
	assert.Equal(t, 1, r.Len())

	mb, ok = r.Peek()
	require.True(t, ok)
	assert.Equal(t, "b", string(mb.Data))

	r.Release()
	assert.Equal(t, 0, r.Len())

	_, ok = r.Peek()
	assert.False(t, ok)
}

func TestRingDropsNewestWhenFull(t *testing.T) {
	r := New(2)

	require.True(t, r.Push(MessageBlock{Data: []byte("a")}))
	require.True(t, r.Push(MessageBlock{Data: []byte("b")}))
	assert.False(t, r.Push(MessageBlock{Data: []byte("c")}))

	assert.Equal(t, uint64(1), r.Dropped())

	mb, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", string(mb.Data))
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { New(3) })
}

func TestSlotLoadBeforeStoreReportsUnset(t *testing.T) {
	var s Slot[int]
	_, ok := s.Load()
	assert.False(t, ok)
}

func TestSlotStoreThenLoadReturnsLastValue(t *testing.T) {
	var s Slot[string]
	s.Store("first")
	s.Store("second")

	v, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, "second", v)
}
