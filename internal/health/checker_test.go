package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckerAggregatesResults(t *testing.T) {
	checker := NewChecker(testLogger(), 0)
	checker.Register("up", func(context.Context) error { return nil })
	checker.Register("down", func(context.Context) error { return errors.New("connection refused") })

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.Equal(t, "ok", status.Components["up"])
	assert.Equal(t, "connection refused", status.Components["down"])
}

func TestCheckerAllHealthy(t *testing.T) {
	checker := NewChecker(testLogger(), 0)
	checker.Register("a", func(context.Context) error { return nil })
	checker.Register("b", func(context.Context) error { return nil })

	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.Len(t, status.Components, 2)
}

func TestCheckerTimesOutHungDependency(t *testing.T) {
	checker := NewChecker(testLogger(), 50*time.Millisecond)
	checker.Register("hung", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Components["hung"])
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, Redis(client)(context.Background()))

	mr.Close()
	assert.Error(t, Redis(client)(context.Background()))
}

func TestNilDependencyChecks(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, Postgres(nil)(ctx))
	assert.Error(t, Redis(nil)(ctx))
	assert.Error(t, Telegram(nil)(ctx))
}
