// Package flow implements the conversational core of the platform: the
// declarative flow graphs, the field validators, the filter compiler, and
// the engine that drives a user through a flow one event at a time.
package flow

import (
	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/session"
)

// EventKind distinguishes the inbound event shapes the transport produces.
type EventKind string

const (
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventCallback EventKind = "callback"
)

// Event is one inbound user action, already decoded by the transport.
// Photo events carry the raw bytes; the engine stores only the reference
// returned by the image store.
type Event struct {
	Kind        EventKind
	Text        string
	Callback    string
	Photo       []byte
	ContentType string
}

// TextEvent builds a plain text event.
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// PhotoEvent builds a photo attachment event.
func PhotoEvent(data []byte, contentType string) Event {
	return Event{Kind: EventPhoto, Photo: data, ContentType: contentType}
}

// CallbackEvent builds an inline button press event.
func CallbackEvent(data string) Event {
	return Event{Kind: EventCallback, Callback: data}
}

// ActionKind tells the transport what to render after handling an event.
type ActionKind string

const (
	// ActionNone means the event matched no session and no trigger; the
	// transport shows the idle menu.
	ActionNone ActionKind = "none"
	// ActionPrompt asks the current (or next) node's question.
	ActionPrompt ActionKind = "prompt"
	// ActionInvalid re-asks the same node with a validation error.
	ActionInvalid ActionKind = "invalid"
	// ActionCancelled confirms an explicit user cancel.
	ActionCancelled ActionKind = "cancelled"
	// ActionExpired tells the user their conversation timed out.
	ActionExpired ActionKind = "expired"
	// ActionReset recovers a stuck conversation back to the idle menu.
	ActionReset ActionKind = "reset"
	// ActionSubmitted reports a completed submission flow.
	ActionSubmitted ActionKind = "submitted"
	// ActionResults reports a completed filter flow with its matches.
	ActionResults ActionKind = "results"
	// ActionRejected reports a completed moderation-reject flow.
	ActionRejected ActionKind = "rejected"
	// ActionFailed reports a collaborator failure; the session is gone.
	ActionFailed ActionKind = "failed"
)

// Action is the engine's outbound command. The engine performs no message
// sending or persistence of its own; the transport turns the action into
// chat messages and dispatches any attached notification.
type Action struct {
	Kind         ActionKind
	Flow         session.FlowKind
	Node         *Node
	PromptKey    string
	ErrorKey     string
	Params       map[string]any
	Listing      *domain.Listing
	Results      []domain.Listing
	Notification *domain.Notification
}
