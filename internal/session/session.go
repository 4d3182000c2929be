// Package session manages per-user conversation state for the bot.
package session

import "time"

// FlowKind identifies which multi-turn conversation a session belongs to.
type FlowKind string

const (
	FlowSubmission       FlowKind = "submission"
	FlowFilter           FlowKind = "filter"
	FlowModerationReject FlowKind = "moderation_reject"
)

// Answer is one collected field value. Answers are append-only for the
// lifetime of a session, so the collection order is preserved and repeated
// fields (image references) occur as multiple entries.
type Answer struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Answers is the ordered collection of values gathered so far in a flow.
type Answers []Answer

// With returns a new Answers slice with the value appended.
func (a Answers) With(field string, value any) Answers {
	out := make(Answers, len(a), len(a)+1)
	copy(out, a)
	return append(out, Answer{Field: field, Value: value})
}

// Get returns the last value recorded for field.
func (a Answers) Get(field string) (any, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Field == field {
			return a[i].Value, true
		}
	}
	return nil, false
}

// GetString returns the value for field as a string.
func (a Answers) GetString(field string) (string, bool) {
	v, ok := a.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns the value for field as an int. JSON round-trips store
// numbers as float64, so both widths are accepted.
func (a Answers) GetInt(field string) (int, bool) {
	v, ok := a.Get(field)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetFloat returns the value for field as a float64.
func (a Answers) GetFloat(field string) (float64, bool) {
	v, ok := a.Get(field)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetBool returns the value for field as a bool.
func (a Answers) GetBool(field string) (bool, bool) {
	v, ok := a.Get(field)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Count returns how many entries exist for field.
func (a Answers) Count(field string) int {
	n := 0
	for _, ans := range a {
		if ans.Field == field {
			n++
		}
	}
	return n
}

// Strings returns every string value recorded for field, in order.
func (a Answers) Strings(field string) []string {
	var out []string
	for _, ans := range a {
		if ans.Field != field {
			continue
		}
		if s, ok := ans.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Session is the live progress of one user through one flow. At most one
// session exists per user; it is destroyed on completion, cancel, expiry,
// or stuck-conversation recovery.
type Session struct {
	UserID    int64     `json:"user_id"`
	Flow      FlowKind  `json:"flow"`
	NodeID    string    `json:"node_id"`
	Answers   Answers   `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session passed its inactivity deadline.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && now.After(s.ExpiresAt)
}

// Touch extends the inactivity deadline by ttl from now.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	if s == nil {
		return
	}
	s.ExpiresAt = now.Add(ttl)
}
