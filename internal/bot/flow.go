package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/i18n"
	"github.com/addis-listings/dalal-bot/internal/session"
	"github.com/addis-listings/dalal-bot/pkg/metrics"
)

// flowGate feeds the update into the conversation engine. It reports the
// update as unhandled only when the engine had no session and no trigger
// matched, letting commands and menu handlers take over.
func (b *Bot) flowGate(c telebot.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil {
		return false, nil
	}

	t := translatorFrom(c, b.i18n)

	ev, err := b.decodeEvent(c, t)
	if err != nil {
		return true, err
	}

	if key := b.deniedTrigger(c, ev); key != "" {
		return true, c.Send(t.T(key))
	}

	start := time.Now()
	action, err := b.engine.HandleEvent(context.Background(), sender.ID, ev)
	if err != nil {
		if errors.Is(err, session.ErrLocked) {
			return true, c.Send(t.T("error.try_again_later"))
		}
		return true, err
	}

	metrics.RecordEvent(string(action.Flow), string(action.Kind), time.Since(start))

	if action.Kind == flow.ActionNone {
		return false, nil
	}

	return true, b.renderAction(c, t, action)
}

// deniedTrigger gates role-restricted flow triggers, returning the error
// key to show or "" when the event may proceed.
func (b *Bot) deniedTrigger(c telebot.Context, ev flow.Event) string {
	value := ev.Text
	if ev.Kind == flow.EventCallback {
		value = ev.Callback
	}

	u := userFrom(c)

	if value == flow.TriggerSubmit && !u.IsBroker() {
		return "error.not_a_broker"
	}
	if len(value) > len(flow.TriggerRejectPrefix) &&
		value[:len(flow.TriggerRejectPrefix)] == flow.TriggerRejectPrefix && !u.IsAdmin() {
		return "error.not_an_admin"
	}

	return ""
}

// decodeEvent converts the telebot update into an engine event, mapping
// localized menu button labels back to their canonical values.
func (b *Bot) decodeEvent(c telebot.Context, t i18n.Translator) (flow.Event, error) {
	if cb := c.Callback(); cb != nil {
		return flow.CallbackEvent(cb.Data), nil
	}

	if msg := c.Message(); msg != nil && msg.Photo != nil {
		data, err := b.downloadPhoto(msg.Photo)
		if err != nil {
			return flow.Event{}, fmt.Errorf("download photo: %w", err)
		}
		return flow.PhotoEvent(data, "image/jpeg"), nil
	}

	text := c.Text()
	switch text {
	case t.T("menu.submit"):
		text = flow.TriggerSubmit
	case t.T("menu.filter"):
		text = flow.TriggerFilter
	case t.T("menu.cancel"):
		text = flow.TriggerCancel
	case t.T("menu.done"):
		text = "done"
	case t.T("menu.any"):
		text = flow.AnySentinel
	}

	return flow.TextEvent(text), nil
}

func (b *Bot) downloadPhoto(photo *telebot.Photo) ([]byte, error) {
	rc, err := b.telebot.File(&photo.File)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
