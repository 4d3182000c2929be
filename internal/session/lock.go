package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userLockKeyPattern = "session:lock:%d"
	lockTTL            = 5 * time.Second
)

// releaseScript deletes the lease only while it still carries the holder's
// token. A plain DEL could release a lease that expired mid-processing and
// was already re-acquired by another process.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Locker serializes event handling per user. Two events for the same user
// must never validate against the same node concurrently; the loser of the
// lock is reported back to the transport instead of racing.
type Locker interface {
	Lock(ctx context.Context, userID int64) error
	Unlock(ctx context.Context, userID int64)
}

// RedisLocker implements Locker with a redis SetNX lease, which also holds
// across multiple bot processes. Each lease carries a per-acquisition token
// so a release after the TTL cannot free another holder's lease.
type RedisLocker struct {
	client *redis.Client
	log    *slog.Logger

	mu     sync.Mutex
	tokens map[int64]string
}

// NewRedisLocker creates a redis-backed per-user lock.
func NewRedisLocker(client *redis.Client, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLocker{
		client: client,
		log:    log,
		tokens: make(map[int64]string),
	}
}

// Lock acquires the per-user lease or returns ErrLocked.
func (l *RedisLocker) Lock(ctx context.Context, userID int64) error {
	key := fmt.Sprintf(userLockKeyPattern, userID)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		l.log.Error("failed to acquire session lock", "user_id", userID, "error", err)
		return err
	}

	if !acquired {
		l.log.Warn("session lock already held", "user_id", userID)
		return ErrLocked
	}

	l.mu.Lock()
	l.tokens[userID] = token
	l.mu.Unlock()

	return nil
}

// Unlock releases the per-user lease if this locker still owns it.
func (l *RedisLocker) Unlock(ctx context.Context, userID int64) {
	l.mu.Lock()
	token := l.tokens[userID]
	delete(l.tokens, userID)
	l.mu.Unlock()

	if token == "" {
		return
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		l.log.Error("failed to release session lock", "user_id", userID, "error", err)
		return
	}

	if released == 0 {
		l.log.Warn("session lock lease expired before release", "user_id", userID)
	}
}
