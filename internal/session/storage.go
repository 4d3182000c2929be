package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no session exists for the user.
	ErrNotFound = errors.New("session not found")
	// ErrLocked indicates that another event for the same user is being
	// processed; events for one user are strictly serialized.
	ErrLocked = errors.New("session is locked, try again later")
)

// Storage defines the persistence contract for conversation sessions.
type Storage interface {
	// Get returns the session for the specified user or ErrNotFound.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Put saves the session, replacing any previous one for the user.
	Put(ctx context.Context, sess *Session) error
	// Delete removes the session for the specified user.
	Delete(ctx context.Context, userID int64) error
	// All returns every stored session, for sweeping and metrics.
	All(ctx context.Context) ([]*Session, error)
}
