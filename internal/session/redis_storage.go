package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern  = "session:%d"
	sessionScanPattern = "session:*"
	scanBatchCount     = 100
)

// RedisStorage persists conversation sessions in Redis. Keys carry a TTL
// slightly beyond the session deadline so abandoned sessions disappear even
// without the sweeper; the engine still checks ExpiresAt on access.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
	grace  time.Duration
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) Storage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
		grace:  time.Minute,
	}
}

// Get returns the stored session or ErrNotFound when absent.
func (s *RedisStorage) Get(ctx context.Context, userID int64) (*Session, error) {
	key := sessionKey(userID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		s.log.Error("failed to get session from redis", "user_id", userID, "error", err)
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.log.Error("failed to decode session", "user_id", userID, "error", err)
		return nil, err
	}

	return &sess, nil
}

// Put saves the session, keyed by user, expiring shortly after the deadline.
func (s *RedisStorage) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Error("failed to encode session", "user_id", sess.UserID, "error", err)
		return err
	}

	ttl := time.Until(sess.ExpiresAt) + s.grace
	if ttl <= 0 {
		ttl = s.grace
	}

	key := sessionKey(sess.UserID)
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.log.Error("failed to save session in redis", "user_id", sess.UserID, "error", err)
		return err
	}

	return nil
}

// Delete removes the stored session for the given user.
func (s *RedisStorage) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		s.log.Error("failed to delete session", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// All retrieves every stored session by scanning Redis keys.
func (s *RedisStorage) All(ctx context.Context) ([]*Session, error) {
	var (
		cursor uint64
		result []*Session
	)

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, sessionScanPattern, scanBatchCount).Result()
		if err != nil {
			s.log.Error("failed to scan sessions", "error", err)
			return nil, err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch session", "key", key, "error", err)
				return nil, err
			}

			var sess Session
			if err := json.Unmarshal([]byte(data), &sess); err != nil {
				s.log.Error("failed to decode session", "key", key, "error", err)
				continue
			}

			copied := sess
			result = append(result, &copied)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf(sessionKeyPattern, userID)
}
