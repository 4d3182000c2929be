// Package health runs readiness checks against the bot's external
// dependencies for the readiness endpoint.
package health

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	telebot "gopkg.in/telebot.v3"
)

const defaultCheckTimeout = 2 * time.Second

// Check reports whether a single dependency is reachable.
type Check func(ctx context.Context) error

// Status is the aggregated outcome of one readiness pass. Components maps
// check name to "ok" or the failure message.
type Status struct {
	Healthy    bool
	Components map[string]string
}

// Checker runs registered checks in registration order, each under its own
// timeout so one hung dependency cannot stall the whole endpoint.
type Checker struct {
	log     *slog.Logger
	timeout time.Duration
	names   []string
	checks  map[string]Check
}

// NewChecker builds a checker. A non-positive timeout selects the default
// per-check timeout.
func NewChecker(log *slog.Logger, timeout time.Duration) *Checker {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	return &Checker{
		log:     log,
		timeout: timeout,
		checks:  make(map[string]Check),
	}
}

// Register adds a named check. Re-registering a name replaces the check but
// keeps its original position.
func (c *Checker) Register(name string, check Check) {
	if name == "" || check == nil {
		return
	}

	if _, exists := c.checks[name]; !exists {
		c.names = append(c.names, name)
	}
	c.checks[name] = check
}

// Check runs every registered check and aggregates the results.
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{
		Healthy:    true,
		Components: make(map[string]string, len(c.names)),
	}

	for _, name := range c.names {
		if err := c.run(ctx, c.checks[name]); err != nil {
			status.Healthy = false
			status.Components[name] = err.Error()
			c.log.Error("health check failed", slog.String("component", name), slog.Any("error", err))
			continue
		}
		status.Components[name] = "ok"
	}

	return status
}

func (c *Checker) run(ctx context.Context, check Check) error {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return check(checkCtx)
}

// Postgres pings the database connection pool.
func Postgres(db *sql.DB) Check {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		return db.PingContext(ctx)
	}
}

// Redis issues a PING against the session store.
func Redis(client *redis.Client) Check {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis not configured")
		}
		return client.Ping(ctx).Err()
	}
}

// Telegram reports whether the bot authenticated against the Bot API.
func Telegram(bot *telebot.Bot) Check {
	return func(context.Context) error {
		if bot == nil || bot.Me == nil {
			return errors.New("telegram session not established")
		}
		return nil
	}
}
