// Package signals defines the count-providing collaborators polled by the
// notification aggregator, and the adapters that back them.
package signals

import (
	"context"
	"time"
)

// Collaborator is an external subsystem that reports a single count.
type Collaborator interface {
	GetCount(ctx context.Context) (int, error)
}

// Func adapts a function to the Collaborator interface.
type Func func(ctx context.Context) (int, error)

// GetCount calls f.
func (f Func) GetCount(ctx context.Context) (int, error) {
	return f(ctx)
}

// PendingCounter is the part of the task store the pending-task signal needs.
type PendingCounter interface {
	PendingCount(ref time.Time) int
}

// NewTaskCounter reports incomplete tasks due today or earlier, read from
// the local task store at the clock's current time.
func NewTaskCounter(store PendingCounter, now func() time.Time) Collaborator {
	if now == nil {
		now = time.Now
	}
	return Func(func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return store.PendingCount(now()), nil
	})
}
