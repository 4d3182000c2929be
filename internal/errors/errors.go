// Package errors defines the application error taxonomy and the single
// mapping point from internal failures to user-facing messages.
package errors

import (
	"errors"
	"fmt"

	"github.com/addis-listings/dalal-bot/internal/domain"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kind classifies an application error for metrics and user messaging.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindSessionExpired    Kind = "session_expired"
	KindStuckConversation Kind = "stuck_conversation"
	KindRepository        Kind = "repository"
	KindNotifier          Kind = "notifier"
	KindUnknown           Kind = "unknown"
)

// AppError is the typed error every core operation returns across the
// transport boundary. UserMessageKey is an i18n key, never raw text.
type AppError struct {
	Kind           Kind
	Message        string
	UserMessageKey string
	Severity       Severity
	Retryable      bool
	cause          error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Kind:           KindValidation,
		Message:        msg,
		UserMessageKey: "error.validation",
		Severity:       SeverityLow,
	}
}

func NewInvalidTransitionError(cause error) *AppError {
	return &AppError{
		Kind:           KindInvalidTransition,
		Message:        "listing already handled",
		UserMessageKey: "error.already_handled",
		Severity:       SeverityLow,
		cause:          cause,
	}
}

func NewSessionExpiredError() *AppError {
	return &AppError{
		Kind:           KindSessionExpired,
		Message:        "conversation expired",
		UserMessageKey: "error.session_expired",
		Severity:       SeverityLow,
	}
}

func NewStuckConversationError(msg string) *AppError {
	return &AppError{
		Kind:           KindStuckConversation,
		Message:        msg,
		UserMessageKey: "error.stuck_conversation",
		Severity:       SeverityLow,
	}
}

func NewRepositoryError(cause error) *AppError {
	var underlying string
	if cause != nil {
		underlying = cause.Error()
	}

	return &AppError{
		Kind:           KindRepository,
		Message:        fmt.Sprintf("repository error: %s", underlying),
		UserMessageKey: "error.try_again_later",
		Severity:       SeverityHigh,
		Retryable:      true,
		cause:          cause,
	}
}

func NewNotifierError(cause error) *AppError {
	return &AppError{
		Kind:           KindNotifier,
		Message:        "notification delivery failed",
		UserMessageKey: "",
		Severity:       SeverityMedium,
		Retryable:      true,
		cause:          cause,
	}
}

// Classify maps an arbitrary collaborator error into the taxonomy. Domain
// sentinels keep their kind; anything unrecognized becomes a repository
// error so nothing crosses the transport boundary un-mapped.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
		return NewInvalidTransitionError(err)
	}

	return NewRepositoryError(err)
}
