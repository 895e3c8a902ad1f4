package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/katalvlaran/gridpath/pathfind"
)

// RunHandle is one launched run.
type RunHandle struct {
	ID         uuid.UUID
	Algorithm  pathfind.Algorithm
	Generation uint64
	SkipDelay  bool

	cancel context.CancelFunc
	done   chan struct{}
	res    *pathfind.Result
	err    error
}

// Done is closed once the run goroutine has exited.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run finishes or ctx is done.
func (h *RunHandle) Wait(ctx context.Context) (*pathfind.Result, error) {
	select {
	case <-h.done:
		return h.res, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome, or nil while the run is still going.
func (h *RunHandle) Result() *pathfind.Result {
	select {
	case <-h.done:
		return h.res
	default:
		return nil
	}
}
