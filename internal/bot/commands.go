package bot

import (
	"context"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/keyboard"
	"github.com/addis-listings/dalal-bot/internal/domain"
)

const (
	CommandStart      = "/start"
	CommandBrowse     = "/browse"
	CommandMyListings = "/mylistings"
	CommandPending    = "/pending"
	CommandLanguage   = "/language"
)

const languageCallbackPrefix = "lang:"

// handleStart greets the user. Plain buyers are asked how they will use
// the platform first, so brokers can register themselves.
func (b *Bot) handleStart(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)
	u := userFrom(c)

	if !u.IsBroker() && !u.IsAdmin() {
		return c.Send(t.T("role.prompt"), keyboard.RoleSelect(t))
	}

	return c.Send(t.T("flow.reset"), keyboard.MainMenu(t, u))
}

// handleSetRole applies the first-contact role choice. Picking broker
// grants the role; picking buyer just proceeds to the menu.
func (b *Bot) handleSetRole(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)
	u := userFrom(c)

	if callbackID(c, keyboard.CallbackRolePrefix) == string(domain.RoleBroker) && !u.IsBroker() {
		if err := b.userService.GrantRole(context.Background(), u.TelegramID, domain.RoleBroker); err != nil {
			return err
		}
		u.Roles = append(u.Roles, domain.RoleBroker)
		return c.Send(t.T("role.broker_granted"), keyboard.MainMenu(t, u))
	}

	return c.Send(t.T("flow.reset"), keyboard.MainMenu(t, u))
}

// handleBrowse sends every approved listing.
func (b *Bot) handleBrowse(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)

	results, err := b.listings.BrowseAll(context.Background())
	if err != nil {
		return err
	}

	return b.sendResults(c, t, results)
}

// handleLanguage offers the loaded locales as inline buttons.
func (b *Bot) handleLanguage(c telebot.Context) error {
	markup := &telebot.ReplyMarkup{}

	var row []telebot.Btn
	for _, lang := range b.i18n.Languages() {
		btn := markup.Data(strings.ToUpper(lang), "set_language", "")
		btn.Data = languageCallbackPrefix + lang
		row = append(row, btn)
	}
	markup.Inline(markup.Row(row...))

	return c.Send("🌐", markup)
}

// handleSetLanguage stores the picked locale and re-renders the menu.
func (b *Bot) handleSetLanguage(c telebot.Context) error {
	lang := callbackID(c, languageCallbackPrefix)
	u := userFrom(c)

	if err := b.userService.SetLanguage(context.Background(), u.TelegramID, lang); err != nil {
		return err
	}
	u.Language = lang

	t := b.i18n.Translator(lang)
	return c.Send(t.T("flow.reset"), keyboard.MainMenu(t, u))
}

// menuFallback maps localized menu button labels that are not flow
// triggers, and shows the menu for anything else.
func (b *Bot) menuFallback(c telebot.Context) error {
	t := translatorFrom(c, b.i18n)

	switch c.Text() {
	case t.T("menu.browse"):
		return b.handleBrowse(c)
	case t.T("menu.my_listings"):
		return b.handleMyListings(c)
	case t.T("menu.pending"):
		return b.handlePendingQueue(c)
	}

	return c.Send(t.T("flow.reset"), keyboard.MainMenu(t, userFrom(c)))
}
