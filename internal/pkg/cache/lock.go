package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lock key only if it still holds our token, so an
// expired lock reacquired by another worker is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockMaxAttempts   = 40
)

// Locker serializes work on a shared key via redis SET NX. Used to run
// webhook reconciliation for one (user, game) pair at a time across all
// instances.
type Locker struct {
	client *redis.Client
}

// NewLocker returns a Locker over the package redis client, or nil when the
// cache was never set up (callers treat a nil locker as "no locking").
func NewLocker() *Locker {
	c := GetClient()
	if c == nil {
		return nil
	}
	return &Locker{client: c}
}

// Acquire takes the lock, waiting briefly if another holder has it. The
// returned release function is safe to call after the TTL elapsed.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	for attempt := 0; attempt < lockMaxAttempts; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				_, _ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Result()
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return nil, errors.New("cache: lock acquisition timed out on " + key)
}
