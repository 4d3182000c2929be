// Package logger builds the application's structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/addis-listings/dalal-bot/pkg/config"
)

// New builds a slog.Logger from the logger and sentry sections of the
// config. Sensitive attributes are masked before any output is written.
func New(cfg config.Config) *slog.Logger {
	out := output(cfg.Logger.File)

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Logger.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logger.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.Enabled {
		handler = slogmulti.Fanout(
			handler,
			slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
		)
	}

	log := slog.New(NewMaskingHandler(handler)).With(
		slog.String("env", cfg.AppEnv),
	)

	return log
}

func output(file config.LoggerFileConfig) io.Writer {
	if !file.Enabled || file.Path == "" {
		return os.Stdout
	}

	rotating := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   true,
	}

	return io.MultiWriter(os.Stdout, rotating)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
