package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/bot/keyboard"
	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/i18n"
)

// renderAction turns an engine action into chat messages. It also
// dispatches any notification attached to a moderation result.
func (b *Bot) renderAction(c telebot.Context, t i18n.Translator, action *flow.Action) error {
	u := userFrom(c)

	switch action.Kind {
	case flow.ActionPrompt:
		return b.sendPrompt(c, t, action)

	case flow.ActionInvalid:
		if err := c.Send(t.T(action.ErrorKey, stringParams(action.Params))); err != nil {
			return err
		}
		return b.sendPrompt(c, t, &flow.Action{Kind: flow.ActionPrompt, Node: action.Node})

	case flow.ActionCancelled:
		return c.Send(t.T("flow.cancelled"), keyboard.MainMenu(t, u))

	case flow.ActionExpired:
		return c.Send(t.T("flow.expired"), keyboard.MainMenu(t, u))

	case flow.ActionReset:
		return c.Send(t.T("flow.reset"), keyboard.MainMenu(t, u))

	case flow.ActionSubmitted:
		return c.Send(t.T("flow.submitted"), keyboard.MainMenu(t, u))

	case flow.ActionResults:
		return b.sendResults(c, t, action.Results)

	case flow.ActionRejected:
		b.dispatchNotification(context.Background(), action.Notification)
		return c.Send(t.T("flow.rejected_done"), keyboard.MainMenu(t, u))

	case flow.ActionFailed:
		return c.Send(t.T(action.ErrorKey), keyboard.MainMenu(t, u))
	}

	return nil
}

func (b *Bot) sendPrompt(c telebot.Context, t i18n.Translator, action *flow.Action) error {
	node := action.Node
	if node == nil {
		return nil
	}

	key := action.PromptKey
	if key == "" {
		key = node.PromptKey
	}

	return c.Send(t.T(key, stringParams(action.Params)), keyboard.ForNode(t, node))
}

func (b *Bot) sendResults(c telebot.Context, t i18n.Translator, results []domain.Listing) error {
	u := userFrom(c)

	if len(results) == 0 {
		return c.Send(t.T("flow.no_results"), keyboard.MainMenu(t, u))
	}

	header := t.T("flow.results_header", map[string]string{"count": strconv.Itoa(len(results))})
	if err := c.Send(header, keyboard.MainMenu(t, u)); err != nil {
		return err
	}

	for i := range results {
		if err := c.Send(formatListing(&results[i])); err != nil {
			return err
		}
	}

	return nil
}

// dispatchNotification delivers a broker notification in the broker's own
// language. Best effort: failures are handled inside the notifier.
func (b *Bot) dispatchNotification(ctx context.Context, n *domain.Notification) {
	if n == nil {
		return
	}

	language := ""
	if recipient, err := b.userService.GetOrCreate(ctx, n.RecipientID, "", "", ""); err == nil {
		language = recipient.Language
	}

	b.notifier.Dispatch(ctx, n, language)
}

// formatListing renders one listing card as plain text.
func formatListing(l *domain.Listing) string {
	var sb strings.Builder

	if l.IsCar() {
		fmt.Fprintf(&sb, "🚗 %s", l.Variant)
		if l.CarMake != nil && l.CarModel != nil {
			fmt.Fprintf(&sb, " — %s %s", *l.CarMake, *l.CarModel)
		}
		if l.CarYear != nil {
			fmt.Fprintf(&sb, " (%d)", *l.CarYear)
		}
		sb.WriteString("\n")
		if l.CarTransmission != nil {
			fmt.Fprintf(&sb, "⚙️ %s\n", *l.CarTransmission)
		}
		if l.CarMileageKm != nil {
			fmt.Fprintf(&sb, "🛣 %.0f km\n", *l.CarMileageKm)
		}
	} else {
		fmt.Fprintf(&sb, "🏠 %s", l.Variant)
		if l.Scheme != nil {
			fmt.Fprintf(&sb, " (%s)", *l.Scheme)
		}
		sb.WriteString("\n")
		if l.Site != nil {
			fmt.Fprintf(&sb, "📍 %s\n", *l.Site)
		}
		if l.Bedrooms != nil {
			fmt.Fprintf(&sb, "🛏 %d bedrooms", *l.Bedrooms)
			if l.Bathrooms != nil {
				fmt.Fprintf(&sb, ", %d bathrooms", *l.Bathrooms)
			}
			sb.WriteString("\n")
		}
		if l.SizeSqm != nil {
			fmt.Fprintf(&sb, "📐 ~%.0f sqm\n", *l.SizeSqm)
		}
		if l.TotalFloors != nil {
			fmt.Fprintf(&sb, "🏢 G+%d, %d units\n", *l.TotalFloors, valueOrZero(l.TotalUnits))
		}
		if l.Furnishing != nil {
			fmt.Fprintf(&sb, "🛋 %s\n", *l.Furnishing)
		}
	}

	if l.Region != "" {
		fmt.Fprintf(&sb, "🌍 %s\n", l.Region)
	}
	fmt.Fprintf(&sb, "💰 %s ETB\n", formatPrice(l.PriceETB))
	if l.Description != "" {
		fmt.Fprintf(&sb, "\n%s", l.Description)
	}

	return sb.String()
}

func formatPrice(price float64) string {
	s := strconv.FormatFloat(price, 'f', 0, 64)

	// group digits in threes
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, ch)
	}

	return string(out)
}

func valueOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}

	out := make(map[string]string, len(params))
	for key, value := range params {
		out[key] = fmt.Sprint(value)
	}
	return out
}
