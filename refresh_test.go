package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshQueueCoalesces(t *testing.T) {
	var flushes []bool
	rq := NewRefreshQueue(func(full bool) error {
		flushes = append(flushes, full)
		return nil
	})

	rq.Enqueue(3, QualityFast)
	rq.Enqueue(1, QualityFast)
	rq.Enqueue(3, QualityFull)
	rq.Enqueue(3, QualityFast)

	require.Equal(t, 2, rq.Pending())
	assert.Equal(t, []refreshRequest{{3, QualityFull}, {1, QualityFast}}, rq.pending)
	q, ok := rq.QualityOf(3)
	assert.True(t, ok)
	assert.Equal(t, QualityFull, q)
	_, ok = rq.QualityOf(2)
	assert.False(t, ok)

	require.NoError(t, rq.Flush())
	assert.Equal(t, []bool{true}, flushes)
	assert.Zero(t, rq.Pending())
	_, ok = rq.QualityOf(3)
	assert.False(t, ok)
}

func TestRefreshQueueFastOnly(t *testing.T) {
	var flushes []bool
	rq := NewRefreshQueue(func(full bool) error {
		flushes = append(flushes, full)
		return nil
	})

	rq.Enqueue(screenID, QualityFast)
	rq.Enqueue(7, QualityFast)
	require.NoError(t, rq.Flush())
	assert.Equal(t, []bool{false}, flushes)
}

func TestRefreshQueueEmptyFlush(t *testing.T) {
	called := false
	rq := NewRefreshQueue(func(bool) error {
		called = true
		return nil
	})
	assert.NoError(t, rq.Flush())
	assert.False(t, called)
}

func TestRefreshQueueFlushError(t *testing.T) {
	errFlush := errors.New("display gone")
	rq := NewRefreshQueue(func(bool) error { return errFlush })
	rq.Enqueue(1, QualityFast)
	assert.ErrorIs(t, rq.Flush(), errFlush)
	assert.Zero(t, rq.Pending())
}

func TestQualityString(t *testing.T) {
	assert.Equal(t, "fast", QualityFast.String())
	assert.Equal(t, "full", QualityFull.String())
	assert.Equal(t, "unknown", Quality(9).String())
}

func TestDisplayFlusherCountsQuality(t *testing.T) {
	calls := 0
	f := &displayFlusher{flush: func() error {
		calls++
		return nil
	}}
	rq := NewRefreshQueue(f.Flush)

	rq.Enqueue(1, QualityFast)
	require.NoError(t, rq.Flush())
	rq.Enqueue(1, QualityFast)
	rq.Enqueue(2, QualityFull)
	require.NoError(t, rq.Flush())
	require.NoError(t, rq.Flush())

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, f.full)
	assert.Equal(t, 1, f.fast)
	assert.Equal(t, "1 full, 1 fast refreshes", f.String())
}
