// Package turn serializes turn processing: a session processes one
// user message fully before the next one is accepted.
package turn

import (
	"context"
)

// Manager hands out the right to run a turn.
type Manager interface {
	Acquire(ctx context.Context) error
	Release()
}
