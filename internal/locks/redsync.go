package locks

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/redis"
)

// RedsyncLocker implements Locker across processes with the Redlock algorithm
// via go-redsync/redsync/v4. Held locks are renewed in the background at a
// third of their TTL until released, so a pass longer than the TTL keeps its
// lock.
type RedsyncLocker struct {
	redsync *redsync.Redsync
	ttl     time.Duration
	logger  logging.Logger
}

// NewRedsyncLocker creates a distributed locker on top of redisClient. Locks
// expire after ttl unless renewed.
func NewRedsyncLocker(redisClient *redis.Client, ttl time.Duration, logger logging.Logger) (*RedsyncLocker, error) {
	if redisClient == nil {
		return nil, errors.ConfigError("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.ConfigError("lock ttl must be positive")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	pool := goredis.NewPool(redisClient.GetGoRedisClient())

	return &RedsyncLocker{
		redsync: redsync.New(pool),
		ttl:     ttl,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "redsync_locker"}),
	}, nil
}

// TryAcquire implements Locker. A single attempt is made; if the key is taken
// ErrLockHeld is returned. Redis failures surface as connection errors.
func (rl *RedsyncLocker) TryAcquire(ctx context.Context, key string) (Lock, error) {
	mutex := rl.redsync.NewMutex(fmt.Sprintf("lock:%s", key),
		redsync.WithExpiry(rl.ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if stderrors.As(err, &taken) || stderrors.Is(err, redsync.ErrFailed) {
			return nil, ErrLockHeld
		}
		return nil, errors.ConnectionError("failed to acquire distributed lock", err)
	}

	lockCtx, cancel := context.WithCancel(context.Background())
	lock := &redsyncLock{
		mutex:  mutex,
		key:    key,
		ttl:    rl.ttl,
		ctx:    lockCtx,
		cancel: cancel,
		logger: rl.logger,
	}

	go lock.renew()

	return lock, nil
}

type redsyncLock struct {
	mutex  *redsync.Mutex
	key    string
	ttl    time.Duration
	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger
	once   sync.Once
}

// renew extends the lock at a third of its TTL, minimum one second, until the
// lock is released or an extension fails.
func (l *redsyncLock) renew() {
	interval := l.ttl / 3
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ok, err := l.mutex.ExtendContext(ctx)
			cancel()

			if err != nil || !ok {
				l.logger.Warn("Lost distributed lock during renewal",
					logging.Field{Key: "key", Value: l.key},
					logging.Field{Key: "error", Value: err},
				)
				l.cancel()
				return
			}
		}
	}
}

func (l *redsyncLock) Key() string {
	return l.key
}

// Release stops renewal and deletes the lock in Redis.
func (l *redsyncLock) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		l.cancel()

		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if _, unlockErr := l.mutex.UnlockContext(unlockCtx); unlockErr != nil {
			err = errors.ConnectionError("failed to release distributed lock", unlockErr)
		}
	})
	return err
}

func (l *redsyncLock) IsHeld() bool {
	select {
	case <-l.ctx.Done():
		return false
	default:
		return true
	}
}
