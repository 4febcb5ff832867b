package headless

import (
	"fmt"
	"sync"
	"time"
)

// Fence is a manually advanced timeline. Tests move it forward with
// Complete to emulate the GPU retiring work.
type Fence struct {
	mu        sync.Mutex
	cond      *sync.Cond
	completed uint64
}

func NewFence() *Fence {
	f := &Fence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Complete advances the timeline to value and wakes every waiter. The
// timeline never moves backwards.
func (f *Fence) Complete(value uint64) {
	f.mu.Lock()
	if value > f.completed {
		f.completed = value
	}
	f.mu.Unlock()
	f.cond.Broadcast()
}

func (f *Fence) Wait(value uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	// Wake waiters periodically so the deadline is honored even when
	// no Complete call arrives.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				f.cond.Broadcast()
			}
		}
	}()

	f.mu.Lock()
	defer f.mu.Unlock()
	for f.completed < value {
		if time.Now().After(deadline) {
			return fmt.Errorf("fence wait for value %d timed out after %s (completed %d)", value, timeout, f.completed)
		}
		f.cond.Wait()
	}
	return nil
}
