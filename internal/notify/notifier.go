// Package notify delivers broker notifications produced by lifecycle
// transitions. Delivery is best effort: a failed send is logged and
// counted, never propagated back to the transition that produced it.
package notify

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/domain"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/i18n"
)

// Sender is the part of the bot API the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier renders and sends notification commands.
type Notifier struct {
	sender     Sender
	i18n       *i18n.Manager
	errHandler *apperrors.Handler
	log        *slog.Logger
}

func New(sender Sender, manager *i18n.Manager, errHandler *apperrors.Handler, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}

	return &Notifier{
		sender:     sender,
		i18n:       manager,
		errHandler: errHandler,
		log:        log,
	}
}

// Dispatch sends one notification in the recipient's language. A nil
// notification is a no-op so callers can pass through lifecycle results
// unconditionally.
func (n *Notifier) Dispatch(ctx context.Context, notification *domain.Notification, language string) {
	if notification == nil {
		return
	}

	text := n.i18n.Translate(language, notification.MessageKey, notification.Params)

	if _, err := n.sender.Send(&tele.User{ID: notification.RecipientID}, text); err != nil {
		n.log.Warn("notification delivery failed",
			slog.Int64("recipient_id", notification.RecipientID),
			slog.String("message_key", notification.MessageKey),
			slog.Any("error", err))
		n.errHandler.Handle(ctx, apperrors.NewNotifierError(err))
	}
}
