package flow

import (
	"strings"

	"github.com/addis-listings/dalal-bot/internal/session"
)

const (
	nodeRejectReason NodeID = "reject_reason"

	// listingIDField is seeded into the session from the reject callback.
	listingIDField = "listing_id"
)

// ModerationGraph builds the admin rejection flow: the reject button opens
// the flow with the listing id seeded, then one free-text node collects
// the mandatory reason.
func ModerationGraph() *Graph {
	match := func(ev Event) (session.Answers, bool) {
		if ev.Kind != EventCallback || !strings.HasPrefix(ev.Callback, TriggerRejectPrefix) {
			return nil, false
		}

		listingID := strings.TrimPrefix(ev.Callback, TriggerRejectPrefix)
		if listingID == "" {
			return nil, false
		}

		return session.Answers{}.With(listingIDField, listingID), true
	}

	return newGraph(session.FlowModerationReject, nodeRejectReason, match,
		&Node{
			ID:        nodeRejectReason,
			PromptKey: "prompt.reject_reason",
			Kind:      KindText,
			Next:      func(session.Answers) NodeID { return NodeComplete },
		},
	)
}
