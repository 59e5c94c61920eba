package spscqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PushPopFIFO(t *testing.T) {
	q := New[int](8)
	for i := 0; i < 8; i++ {
		q.Push(i)
	}
	assert.True(t, q.FullApprox())

	for i := 0; i < 8; i++ {
		assert.Equal(t, i, q.Pop())
	}
	assert.True(t, q.EmptyApprox())
}

func TestQueue_TryPushFullReturnsFalse(t *testing.T) {
	q := New[int](2)
	require.True(t, q.TryPush(1))
	require.True(t, q.TryPush(2))
	assert.False(t, q.TryPush(3))
}

func TestQueue_TryPopEmptyReturnsFalse(t *testing.T) {
	q := New[int](2)
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueue_TryPopForTimesOutOnEmpty(t *testing.T) {
	q := New[int](2)
	start := time.Now()
	_, ok := q.TryPopFor(20 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestQueue_ConstructorPanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { New[int](3) })
}

func TestQueue_SingleProducerSingleConsumer(t *testing.T) {
	q := New[int](64)
	const n = 10_000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(i)
		}
	}()

	received := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			received = append(received, q.Pop())
		}
	}()

	wg.Wait()
	require.Len(t, received, n)
	for i, v := range received {
		assert.Equal(t, i, v)
	}
}
