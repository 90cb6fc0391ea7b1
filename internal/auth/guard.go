package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultLockTimeout bounds how long a caller waits for the coordinator lock.
const DefaultLockTimeout = 2 * time.Second

// guard is an exclusive lock whose acquisition can give up.
type guard struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func newGuard(timeout time.Duration) *guard {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	return &guard{
		sem:     semaphore.NewWeighted(1),
		timeout: timeout,
	}
}

// acquire waits at most g.timeout for the lock.
func (g *guard) acquire(ctx context.Context) error {
	if g.sem.TryAcquire(1) {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.sem.Acquire(waitCtx, 1)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCoordinatorBusy, ctx.Err())
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCoordinatorBusy
	default:
		return fmt.Errorf("%w: %w", ErrCoordinatorBusy, err)
	}
}

// lock waits without bound. Only used for short bookkeeping after an exchange.
func (g *guard) lock() {
	// never fails, the background context is never done
	_ = g.sem.Acquire(context.Background(), 1)
}

func (g *guard) release() {
	g.sem.Release(1)
}
