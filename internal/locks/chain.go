package locks

import (
	"context"
)

// Chain acquires a lock from every locker in order. If any locker refuses,
// the locks already taken are released and its error is returned.
type Chain struct {
	lockers []Locker
}

// NewChain builds a Chain. Nil lockers are skipped, which lets callers pass an
// optional distributed locker without branching.
func NewChain(lockers ...Locker) *Chain {
	c := &Chain{}
	for _, l := range lockers {
		if l != nil {
			c.lockers = append(c.lockers, l)
		}
	}
	return c
}

// TryAcquire implements Locker.
func (c *Chain) TryAcquire(ctx context.Context, key string) (Lock, error) {
	held := make([]Lock, 0, len(c.lockers))
	for _, locker := range c.lockers {
		lock, err := locker.TryAcquire(ctx, key)
		if err != nil {
			releaseAll(ctx, held)
			return nil, err
		}
		held = append(held, lock)
	}
	return &chainLock{key: key, locks: held}, nil
}

type chainLock struct {
	key   string
	locks []Lock
}

func (c *chainLock) Key() string {
	return c.key
}

// Release gives the locks up in reverse acquisition order and returns the
// first error encountered.
func (c *chainLock) Release(ctx context.Context) error {
	return releaseAll(ctx, c.locks)
}

func (c *chainLock) IsHeld() bool {
	for _, lock := range c.locks {
		if !lock.IsHeld() {
			return false
		}
	}
	return true
}

func releaseAll(ctx context.Context, held []Lock) error {
	var first error
	for i := len(held) - 1; i >= 0; i-- {
		if err := held[i].Release(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
