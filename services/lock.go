package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Locker hands out short lived exclusive locks keyed by name.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, value string) error
}

var errLockNotOwned = errors.New("lock not owned by this client")

// Deletes the key only while it still holds our value.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// TryLock returns the owner value to pass to Unlock when the lock was taken.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	value := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.prefix+key, value, ttl).Result()
	if err != nil {
		return false, "", errors.Wrapf(err, "failed locking %s", key)
	}
	if !acquired {
		return false, "", nil
	}
	return true, value, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, value string) error {
	deleted, err := unlockScript.Run(ctx, l.client, []string{l.prefix + key}, value).Int()
	if err != nil {
		return errors.Wrapf(err, "failed unlocking %s", key)
	}
	if deleted == 0 {
		return errLockNotOwned
	}
	return nil
}
