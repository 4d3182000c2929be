package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/domain"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/i18n"
)

type fakeSender struct {
	err   error
	sent  []string
	chats []int64
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}

	var chatID int64
	if u, ok := to.(*tele.User); ok {
		chatID = u.ID
	}
	f.chats = append(f.chats, chatID)
	f.sent = append(f.sent, what.(string))
	return &tele.Message{}, nil
}

func testManager(t *testing.T) *i18n.Manager {
	t.Helper()

	dir := t.TempDir()
	content := `
en:
  notify:
    listing_approved: "Your {variant} listing was approved."
am:
  notify:
    listing_approved: "የ{variant} ማስታወቂያዎ ጸድቋል።"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(content), 0o644))

	m, err := i18n.LoadFromDir(dir, "en")
	require.NoError(t, err)
	return m
}

func newTestNotifier(t *testing.T, sender *fakeSender) *Notifier {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(sender, testManager(t), apperrors.NewHandler(log, false), log)
}

func TestDispatchRendersInRecipientLanguage(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender)

	n.Dispatch(context.Background(), &domain.Notification{
		RecipientID: 42,
		MessageKey:  "notify.listing_approved",
		Params:      map[string]string{"variant": "Villa"},
	}, "en")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Your Villa listing was approved.", sender.sent[0])
	assert.Equal(t, []int64{42}, sender.chats)
}

func TestDispatchFallsBackForUnknownLanguage(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender)

	n.Dispatch(context.Background(), &domain.Notification{
		RecipientID: 42,
		MessageKey:  "notify.listing_approved",
		Params:      map[string]string{"variant": "Car"},
	}, "fr")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Your Car listing was approved.", sender.sent[0])
}

func TestDispatchNilNotification(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender)

	n.Dispatch(context.Background(), nil, "en")

	assert.Empty(t, sender.sent)
}

func TestDispatchSwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("bot was blocked by the user")}
	n := newTestNotifier(t, sender)

	// Must not panic or propagate; delivery is best effort.
	n.Dispatch(context.Background(), &domain.Notification{
		RecipientID: 42,
		MessageKey:  "notify.listing_approved",
	}, "en")

	assert.Empty(t, sender.sent)
}
