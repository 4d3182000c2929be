package flow

import (
	"strconv"
	"strings"

	"github.com/addis-listings/dalal-bot/internal/session"
)

// AnySentinel is the canonical "no preference" choice on filter nodes.
// Choosing it omits the predicate instead of storing a value.
const AnySentinel = "Any"

// Canonical yes/no tokens for boolean nodes. Keyboards localize the
// labels; the transport maps them back to these values.
const (
	BoolYes = "Yes"
	BoolNo  = "No"
)

// BoolOptions is the option set rendered for boolean nodes.
var BoolOptions = []string{BoolYes, BoolNo}

const doneSentinel = "done"

// Invalid is a recoverable validation failure: the engine re-asks the same
// node with the reason key.
type Invalid struct {
	Reason string
	Params map[string]any
}

func (e *Invalid) Error() string { return e.Reason }

// PhotoAccepted marks a photo event accepted into a photo-collection node.
type PhotoAccepted struct{}

// PhotosDone marks a closed photo-collection loop.
type PhotosDone struct{ Count int }

// Validate parses one user answer for the node. It is a pure function of
// the event and the answers collected so far; it never touches the session.
func Validate(n *Node, ev Event, prior session.Answers) (any, error) {
	if n.Kind == KindPhotos {
		return validatePhotos(n, ev, prior)
	}

	text := strings.TrimSpace(ev.Text)
	if ev.Kind == EventCallback {
		text = strings.TrimSpace(ev.Callback)
	}
	if ev.Kind == EventPhoto || text == "" {
		return nil, &Invalid{Reason: invalidReasonFor(n.Kind)}
	}

	if n.AllowAny && strings.EqualFold(text, AnySentinel) {
		return AnySentinel, nil
	}

	switch n.Kind {
	case KindChoice:
		for _, opt := range n.Options {
			if text == opt {
				return opt, nil
			}
		}
		return nil, &Invalid{Reason: "error.invalid_choice"}

	case KindBool:
		switch text {
		case BoolYes:
			return true, nil
		case BoolNo:
			return false, nil
		}
		return nil, &Invalid{Reason: "error.invalid_choice"}

	case KindNumber:
		value, err := ParseNumeric(text)
		if err != nil {
			return nil, &Invalid{Reason: "error.invalid_number"}
		}
		return value, nil

	case KindText:
		return text, nil
	}

	return nil, &Invalid{Reason: "error.invalid_choice"}
}

func validatePhotos(n *Node, ev Event, prior session.Answers) (any, error) {
	switch ev.Kind {
	case EventPhoto:
		return PhotoAccepted{}, nil
	case EventText:
		if strings.EqualFold(strings.TrimSpace(ev.Text), doneSentinel) {
			count := prior.Count(imageField)
			if count < n.MinPhotos {
				return nil, &Invalid{
					Reason: "error.need_more_images",
					Params: map[string]any{"count": count, "remaining": n.MinPhotos - count},
				}
			}
			return PhotosDone{Count: count}, nil
		}
	}

	return nil, &Invalid{Reason: "error.not_an_image"}
}

// ParseNumeric parses a numeric answer, tolerating the keyboard suffix
// forms "6+" and "G+2" as well as thousands separators in typed prices.
func ParseNumeric(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "G+"), "g+")
	s = strings.TrimSuffix(s, "+")
	s = strings.ReplaceAll(s, ",", "")

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, strconv.ErrRange
	}

	return value, nil
}

func invalidReasonFor(kind InputKind) string {
	switch kind {
	case KindNumber:
		return "error.invalid_number"
	case KindText:
		return "error.expected_text"
	default:
		return "error.invalid_choice"
	}
}
