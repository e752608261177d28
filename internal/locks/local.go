package locks

import (
	"context"
	"sync"
	"sync/atomic"
)

// LocalLocker serializes callers within one process. The zero value is not
// usable; construct it with NewLocalLocker.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) mutexFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// TryAcquire implements Locker.
func (l *LocalLocker) TryAcquire(ctx context.Context, key string) (Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := l.mutexFor(key)
	if !m.TryLock() {
		return nil, ErrLockHeld
	}

	lock := &localLock{key: key, mutex: m}
	lock.held.Store(true)
	return lock, nil
}

type localLock struct {
	key   string
	mutex *sync.Mutex
	held  atomic.Bool
}

func (l *localLock) Key() string {
	return l.key
}

func (l *localLock) Release(ctx context.Context) error {
	if l.held.CompareAndSwap(true, false) {
		l.mutex.Unlock()
	}
	return nil
}

func (l *localLock) IsHeld() bool {
	return l.held.Load()
}
