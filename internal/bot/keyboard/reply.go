// Package keyboard renders telebot reply and inline markup for the
// listing flows.
package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/i18n"
)

const buttonsPerRow = 3

// MainMenu builds a localized reply keyboard for the user's roles.
func MainMenu(t i18n.Translator, u *domain.User) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	rows := []telebot.Row{
		markup.Row(markup.Text(t.T("menu.filter")), markup.Text(t.T("menu.browse"))),
	}

	if u.IsBroker() {
		rows = append(rows, markup.Row(markup.Text(t.T("menu.submit")), markup.Text(t.T("menu.my_listings"))))
	}
	if u.IsAdmin() {
		rows = append(rows, markup.Row(markup.Text(t.T("menu.pending"))))
	}

	markup.Reply(rows...)
	return markup
}

// ForNode builds the reply keyboard matching a flow node: its options in
// rows, a Done button on photo nodes, and always a Cancel button.
func ForNode(t i18n.Translator, node *flow.Node) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	var rows []telebot.Row

	var row []telebot.Btn
	for _, option := range node.Options {
		row = append(row, markup.Text(option))
		if len(row) == buttonsPerRow {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}

	if node.Kind == flow.KindPhotos {
		rows = append(rows, markup.Row(markup.Text(t.T("menu.done"))))
	}
	rows = append(rows, markup.Row(markup.Text(t.T("menu.cancel"))))

	markup.Reply(rows...)
	return markup
}

// Remove hides any reply keyboard.
func Remove() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}
