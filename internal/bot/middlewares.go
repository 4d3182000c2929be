package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/handlers"
	"github.com/addis-listings/dalal-bot/internal/domain"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/i18n"
	"github.com/addis-listings/dalal-bot/internal/user"
)

const (
	ctxKeyUser       = "user"
	ctxKeyTranslator = "translator"
)

func userFrom(c telebot.Context) *domain.User {
	if u, ok := c.Get(ctxKeyUser).(*domain.User); ok {
		return u
	}
	return nil
}

func translatorFrom(c telebot.Context, manager *i18n.Manager) i18n.Translator {
	if t, ok := c.Get(ctxKeyTranslator).(i18n.Translator); ok {
		return t
	}
	return manager.Translator("")
}

// RecoveryMiddleware catches panics, reports them via the centralized
// handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler, manager *i18n.Manager) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))

					key, _ := errHandler.Handle(context.Background(),
						apperrors.NewRepositoryError(fmt.Errorf("panic recovered: %v", r)))

					t := translatorFrom(c, manager)
					if sendErr := c.Send(t.T(key)); sendErr != nil {
						log.Error("failed to notify user about panic", slog.Any("error", sendErr))
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging
// for handler failures. Handlers return raw errors; the user sees the
// localized message for the classified kind.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler, manager *i18n.Manager) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			key, _ := errHandler.Handle(context.Background(), err)
			if key == "" {
				return nil
			}

			t := translatorFrom(c, manager)
			_ = c.Send(t.T(key))

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()

			userID := int64(0)
			if c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := c.Text()
			if cb := c.Callback(); cb != nil {
				action = cb.Data
			}

			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// AuthMiddleware resolves the sender to a user record, creating a buyer on
// first contact, and stashes the user and their translator on the context.
func AuthMiddleware(userService *user.Service, manager *i18n.Manager, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			u, err := userService.GetOrCreate(
				context.Background(),
				sender.ID,
				sender.FirstName,
				sender.LastName,
				sender.Username,
			)
			if err != nil {
				log.Error("failed to resolve user", slog.Int64("telegram_id", sender.ID), slog.Any("error", err))
				return err
			}

			c.Set(ctxKeyUser, u)
			c.Set(ctxKeyTranslator, manager.Translator(u.Language))

			return next(c)
		}
	}
}

// LastActiveMiddleware records user activity timestamps without blocking
// the update flow.
func LastActiveMiddleware(userService *user.Service) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userService != nil && c.Sender() != nil {
				go func(id int64) {
					_ = userService.UpdateLastActive(context.Background(), id)
				}(c.Sender().ID)
			}

			return next(c)
		}
	}
}
