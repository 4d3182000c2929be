package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper destroys sessions past their inactivity deadline on a schedule.
// The engine also checks expiry on access; the sweep keeps the store and
// the active-session metrics honest for users who simply walk away.
type Sweeper struct {
	storage  Storage
	log      *slog.Logger
	interval time.Duration
}

// NewSweeper constructs a Sweeper instance.
func NewSweeper(storage Storage, log *slog.Logger, interval time.Duration) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		storage:  storage,
		log:      log,
		interval: interval,
	}
}

// Run starts the sweep loop until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s == nil || s.storage == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	sessions, err := s.storage.All(ctx)
	if err != nil {
		s.log.Error("session sweep failed to list sessions", slog.Any("error", err))
		return
	}

	now := time.Now().UTC()
	for _, sess := range sessions {
		if sess == nil || !sess.Expired(now) {
			continue
		}

		if err := s.storage.Delete(ctx, sess.UserID); err != nil {
			s.log.Error("session sweep failed to delete session",
				slog.Int64("user_id", sess.UserID), slog.Any("error", err))
			continue
		}

		s.log.Info("expired session swept",
			slog.Int64("user_id", sess.UserID), slog.String("flow", string(sess.Flow)))
	}
}
