// Package locks provides the exclusive execution locks that serialize
// mutating routing passes.
//
// Two implementations are offered: LocalLocker serializes goroutines within a
// process, RedsyncLocker serializes processes sharing a Redis server using the
// Redlock algorithm from go-redsync/redsync/v4. Chain combines both so that a
// deployment with several instances over one shared volume never runs two
// passes at once.
//
// All lockers are non-blocking. When the lock is held elsewhere TryAcquire
// returns ErrLockHeld immediately instead of queueing.
//
// Example usage:
//
//	locker := locks.NewChain(locks.NewLocalLocker(), redsyncLocker)
//	lock, err := locker.TryAcquire(ctx, "routing:execute")
//	if errors.Is(err, locks.ErrLockHeld) {
//		return ErrRoutingInProgress
//	}
//	defer lock.Release(ctx)
package locks

import (
	"context"
	stderrors "errors"
)

// ErrLockHeld is returned by TryAcquire when the lock is held by another
// caller or instance.
var ErrLockHeld = stderrors.New("lock already held")

// Locker acquires named exclusive locks without waiting.
type Locker interface {
	// TryAcquire obtains the lock for key or returns ErrLockHeld at once.
	TryAcquire(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lock. Release must be called exactly once on every exit
// path; further calls are no-ops.
type Lock interface {
	// Key returns the identifier the lock was acquired under.
	Key() string

	// Release gives the lock up.
	Release(ctx context.Context) error

	// IsHeld reports whether the lock is still held by this instance. It
	// checks local state only.
	IsHeld() bool
}
