package session

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage implementation. Suitable for a
// single-process deployment and for tests; multi-process deployments need
// the Redis backend so sessions survive rebalancing.
type MemoryStorage struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemoryStorage creates an empty in-memory session store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[int64]*Session)}
}

func (s *MemoryStorage) Get(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneSession(sess), nil
}

func (s *MemoryStorage) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.UserID] = cloneSession(sess)
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStorage) All(ctx context.Context) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	return out, nil
}

func cloneSession(sess *Session) *Session {
	if sess == nil {
		return nil
	}

	copied := *sess
	copied.Answers = make(Answers, len(sess.Answers))
	copy(copied.Answers, sess.Answers)
	return &copied
}
