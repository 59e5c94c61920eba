package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_AllocateDeallocate(t *testing.T) {
	p := New[int](4)
	require.Equal(t, uint32(4), p.Capacity())
	assert.True(t, p.Empty())

	idx := p.Allocate(42)
	require.NotEqual(t, Invalid, idx)
	assert.Equal(t, uint32(1), p.Size())

	v, ok := p.Get(idx)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	p.Deallocate(idx)
	assert.True(t, p.Empty())
	_, ok = p.Get(idx)
	assert.False(t, ok)
}

func TestPool_ExhaustionReturnsInvalid(t *testing.T) {
	p := New[int](2)
	a := p.Allocate(1)
	b := p.Allocate(2)
	require.NotEqual(t, Invalid, a)
	require.NotEqual(t, Invalid, b)

	c := p.Allocate(3)
	assert.Equal(t, Invalid, c)
	assert.True(t, p.Full())
}

func TestPool_FreelistReusesSlots(t *testing.T) {
	p := New[int](1)
	first := p.Allocate(1)
	require.NotEqual(t, Invalid, first)

	p.Deallocate(first)
	second := p.Allocate(2)
	require.NotEqual(t, Invalid, second)
	assert.Equal(t, first, second)
}

func TestPool_AtMutatesInPlace(t *testing.T) {
	p := New[struct{ N int }](2)
	idx := p.Allocate(struct{ N int }{N: 1})
	p.At(idx).N = 99

	v, ok := p.Get(idx)
	require.True(t, ok)
	assert.Equal(t, 99, v.N)
}

func TestPool_ClearResetsFreelist(t *testing.T) {
	p := New[int](3)
	p.Allocate(1)
	p.Allocate(2)
	p.Clear()

	assert.True(t, p.Empty())
	assert.False(t, p.Full())
	idx := p.Allocate(10)
	assert.NotEqual(t, Invalid, idx)
}

func TestPool_IsValid(t *testing.T) {
	p := New[int](2)
	idx := p.Allocate(5)
	assert.True(t, p.IsValid(idx))
	assert.False(t, p.IsValid(idx+1))

	p.Deallocate(idx)
	assert.False(t, p.IsValid(idx))
}
