package lock

import (
	"context"
	"time"

	"github.com/meoying/dlock-go"
	dlockRedis "github.com/meoying/dlock-go/redis"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
)

const acquireTimeout = 3 * time.Second

// RedisLocker shares locks between processes through Redis.
type RedisLocker struct {
	client dlock.Client
}

func NewRedisLocker(rdb redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: dlockRedis.NewClient(rdb)}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	lk, err := l.client.NewLock(ctx, key, ttl)
	if err != nil {
		return nil, errors.Wrap(err, "init lock")
	}
	lockCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()
	// A held lock and a slow Redis look the same from here; both mean we
	// must not start another run.
	if err := lk.Lock(lockCtx); err != nil {
		return nil, errors.Wrapf(appErrors.ErrDispatchInProgress, "%s: %v", key, err)
	}
	return redisLease{lk}, nil
}

type redisLease struct {
	lock dlock.Lock
}

func (r redisLease) Refresh(ctx context.Context) error { return r.lock.Refresh(ctx) }
func (r redisLease) Release(ctx context.Context) error { return r.lock.Unlock(ctx) }
