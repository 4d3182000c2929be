package bot

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/keyboard"
	"github.com/addis-listings/dalal-bot/internal/domain"
)

const pendingQueueLimit = 10

// handlePendingQueue sends the oldest pending listings as moderation cards.
func (b *Bot) handlePendingQueue(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)
	u := userFrom(c)

	if !u.IsAdmin() {
		return c.Send(t.T("error.not_an_admin"))
	}

	pending, err := b.listings.Pending(context.Background(), pendingQueueLimit)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return c.Send(t.T("admin.queue_empty"), keyboard.MainMenu(t, u))
	}

	for i := range pending {
		l := &pending[i]
		if err := c.Send(formatListing(l), keyboard.ModerationCard(t, l.ID)); err != nil {
			return err
		}
	}

	return nil
}

// handleApprove is the one-shot approve callback. Rejection goes through
// the moderation flow instead, because it needs a reason.
func (b *Bot) handleApprove(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)
	u := userFrom(c)

	if !u.IsAdmin() {
		return c.Send(t.T("error.not_an_admin"))
	}

	ctx := context.Background()
	id := callbackID(c, keyboard.CallbackApprovePrefix)

	_, notification, err := b.listings.ApproveListing(ctx, id)
	if err != nil {
		return err
	}

	b.dispatchNotification(ctx, notification)
	return c.Send(t.T("admin.approved_done"))
}

// handleMarkSold marks an approved listing as sold. Offered to the owning
// broker on their own cards and to admins.
func (b *Bot) handleMarkSold(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)

	ctx := context.Background()
	id := callbackID(c, keyboard.CallbackSoldPrefix)

	if key := b.deniedOwnership(ctx, c, id); key != "" {
		return c.Send(t.T(key))
	}

	_, notification, err := b.listings.MarkSold(ctx, id)
	if err != nil {
		return err
	}

	b.dispatchNotification(ctx, notification)
	return c.Send(t.T("admin.sold_done"))
}

// handleDelete soft-deletes a listing. Idempotent: deleting twice still
// reports success.
func (b *Bot) handleDelete(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)

	ctx := context.Background()
	id := callbackID(c, keyboard.CallbackDeletePrefix)

	if key := b.deniedOwnership(ctx, c, id); key != "" {
		return c.Send(t.T(key))
	}

	if _, err := b.listings.DeleteListing(ctx, id); err != nil {
		return err
	}

	return c.Send(t.T("admin.deleted_done"))
}

// deniedOwnership allows the action for admins and for the broker who owns
// the listing, returning the error key to show otherwise.
func (b *Bot) deniedOwnership(ctx context.Context, c telebot.Context, id string) string {
	u := userFrom(c)
	if u.IsAdmin() {
		return ""
	}

	listing, err := b.listings.Get(ctx, id)
	if err != nil || listing.BrokerID != u.TelegramID {
		return "error.not_an_admin"
	}

	return ""
}

// handleMyListings sends the broker their own listings with manage buttons.
func (b *Bot) handleMyListings(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)
	u := userFrom(c)

	if !u.IsBroker() {
		return c.Send(t.T("error.not_a_broker"))
	}

	own, err := b.listings.ByBroker(context.Background(), u.TelegramID)
	if err != nil {
		return err
	}

	if len(own) == 0 {
		return c.Send(t.T("flow.no_results"), keyboard.MainMenu(t, u))
	}

	for i := range own {
		l := &own[i]
		text := formatListing(l) + "\n\n" + statusLine(l)
		if err := c.Send(text, keyboard.BrokerCard(t, l)); err != nil {
			return err
		}
	}

	return nil
}

func statusLine(l *domain.Listing) string {
	line := string(l.Status)
	if l.Status == domain.StatusRejected && l.RejectionReason != "" {
		line += ": " + l.RejectionReason
	}
	return line
}

func callbackID(c telebot.Context, prefix string) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(cb.Data), prefix)
}
