package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidTransition indicates a lifecycle change from a status that
	// does not allow it, including the loser of a moderation race.
	ErrInvalidTransition = errors.New("invalid status transition")
)
