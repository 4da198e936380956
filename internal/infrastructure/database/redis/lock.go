package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// unlockScript deletes the lock only when the caller still owns it, so a
// holder whose TTL expired cannot release a lock another instance has since
// acquired.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// TriggerLock implements the scheduler's Locker contract: one non-blocking
// SETNX attempt per trigger run.  The lock is advisory; the store's
// uniqueness constraint keeps concurrent passes correct even without it.
type TriggerLock struct {
	client *Client
	logger logging.Logger
}

// NewTriggerLock builds a trigger lock over the client.
func NewTriggerLock(client *Client, log logging.Logger) *TriggerLock {
	return &TriggerLock{client: client, logger: log.Named("lock")}
}

// Acquire attempts to take the named lock for ttl.  ok=false means another
// instance holds it.  The returned release function deletes the lock only if
// this caller still owns it.
func (l *TriggerLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := l.client.key("lock:trigger:" + name)
	token := uuid.New().String()

	ok, err := l.client.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "acquiring trigger lock")
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Release must not inherit a cancelled run context.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, l.client.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("trigger lock release failed, relying on TTL expiry",
				logging.String("trigger", name), logging.Err(err))
		}
	}
	return release, true, nil
}
