package frame

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/headless"
)

func newTestRing(t *testing.T, dev *headless.Device, size uint8) *Ring {
	t.Helper()
	ring, err := NewRing(dev, size, 4, time.Second)
	require.NoError(t, err)
	return ring
}

func TestRingRejectsSizeOne(t *testing.T) {
	_, err := NewRing(headless.New(), 1, 4, time.Second)
	assert.Error(t, err)
}

func TestRingCyclesInOrder(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	ring := newTestRing(t, dev, 3)

	for i := 0; i < 7; i++ {
		res, err := ring.AcquireNext()
		require.NoError(t, err)
		assert.Equal(t, i%3, ring.CurrentIndex())
		assert.Same(t, res, ring.Current())
		_, err = ring.Signal(dev)
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(7), ring.LastSignaled())
}

func TestRingNeverReusesBusySlot(t *testing.T) {
	for _, size := range []uint8{2, 3, 4} {
		dev := headless.New()
		dev.AutoComplete = true
		ring, err := NewRing(dev, size, 4, time.Second)
		require.NoError(t, err)

		for i := 0; i < int(size)*4; i++ {
			res, err := ring.AcquireNext()
			require.NoError(t, err)
			// The acquired slot must be retired or never submitted.
			assert.True(t, res.Fence == 0 || res.Fence <= ring.LastSignaled())
			_, err = ring.Signal(dev)
			require.NoError(t, err)
		}
	}
}

// A GPU lagging two frames behind forces the fourth acquisition of a
// three-slot ring to block until the watermark recorded three
// acquisitions earlier completes.
func TestRingBlocksOnLaggingFence(t *testing.T) {
	dev := headless.New()
	ring := newTestRing(t, dev, 3)

	// Three frames submitted, none completed.
	for i := 0; i < 3; i++ {
		_, err := ring.AcquireNext()
		require.NoError(t, err)
		_, err = ring.Signal(dev)
		require.NoError(t, err)
	}
	fence := ringFence(t, ring)

	var acquired atomic.Bool
	done := make(chan error, 1)
	go func() {
		_, err := ring.AcquireNext()
		acquired.Store(true)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load(), "acquire must block while slot 0's fence is pending")

	// GPU catches up past the watermark of slot 0.
	fence.Complete(1)
	require.NoError(t, <-done)
	assert.Equal(t, 0, ring.CurrentIndex())
}

func TestRingWaitTimesOut(t *testing.T) {
	dev := headless.New()
	ring, err := NewRing(dev, 2, 4, 30*time.Millisecond)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := ring.AcquireNext()
		require.NoError(t, err)
		_, err = ring.Signal(dev)
		require.NoError(t, err)
	}

	// Fence never advances: the third acquire must escalate.
	_, err = ring.AcquireNext()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFenceTimeout)
}

func TestRingDrain(t *testing.T) {
	dev := headless.New()
	dev.AutoComplete = true
	ring := newTestRing(t, dev, 3)

	// Nothing submitted: drain is a no-op.
	require.NoError(t, ring.Drain())

	for i := 0; i < 5; i++ {
		_, err := ring.AcquireNext()
		require.NoError(t, err)
		_, err = ring.Signal(dev)
		require.NoError(t, err)
	}
	require.NoError(t, ring.Drain())
}

// ringFence digs the headless fence out of the ring for manual control.
func ringFence(t *testing.T, ring *Ring) *headless.Fence {
	t.Helper()
	f, ok := ring.fence.(*headless.Fence)
	require.True(t, ok)
	return f
}
