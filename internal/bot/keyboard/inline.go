package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/i18n"
)

// Callback prefixes for moderation buttons. The listing id follows the
// colon.
const (
	CallbackApprovePrefix = "approve:"
	CallbackRejectPrefix  = "reject:"
	CallbackSoldPrefix    = "sold:"
	CallbackDeletePrefix  = "delete:"
	CallbackRolePrefix    = "role:"
)

// RoleSelect builds the first-contact buyer/broker choice.
func RoleSelect(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	buyer := markup.Data(t.T("role.buyer"), "role_buyer", "")
	buyer.Data = CallbackRolePrefix + string(domain.RoleBuyer)
	broker := markup.Data(t.T("role.broker"), "role_broker", "")
	broker.Data = CallbackRolePrefix + string(domain.RoleBroker)

	markup.Inline(markup.Row(buyer, broker))
	return markup
}

// ModerationCard builds the inline buttons attached to a pending listing
// in the admin queue.
func ModerationCard(t i18n.Translator, listingID string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	approve := markup.Data(t.T("admin.approve"), "mod_approve", "")
	approve.Data = CallbackApprovePrefix + listingID
	reject := markup.Data(t.T("admin.reject"), "mod_reject", "")
	reject.Data = CallbackRejectPrefix + listingID

	markup.Inline(markup.Row(approve, reject))
	return markup
}

// BrokerCard builds the inline buttons attached to a broker's own listing.
// Sold is only offered while the listing is approved.
func BrokerCard(t i18n.Translator, l *domain.Listing) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	var row []telebot.Btn
	if l.Status == domain.StatusApproved {
		sold := markup.Data(t.T("admin.sold"), "mod_sold", "")
		sold.Data = CallbackSoldPrefix + l.ID
		row = append(row, sold)
	}

	del := markup.Data(t.T("admin.delete"), "mod_delete", "")
	del.Data = CallbackDeletePrefix + l.ID
	row = append(row, del)

	markup.Inline(markup.Row(row...))
	return markup
}
