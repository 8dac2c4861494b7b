package turn

import (
	"context"
	"fmt"
)

// MutexManager implements Manager with a buffered channel used as a
// semaphore: writing acquires the turn, reading releases it. Acquire
// honors context cancellation while waiting.
type MutexManager struct {
	turnCh chan struct{}
}

func NewMutexManager() Manager {
	return &MutexManager{
		turnCh: make(chan struct{}, 1),
	}
}

func (m *MutexManager) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire turn: %w", ctx.Err())
	case m.turnCh <- struct{}{}:
		return nil
	}
}

// Release frees the turn. Releasing without a prior Acquire is a no-op.
func (m *MutexManager) Release() {
	select {
	case <-m.turnCh:
	default:
	}
}

var _ Manager = (*MutexManager)(nil)
