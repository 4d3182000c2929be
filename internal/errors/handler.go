package errors

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// Handler is the single transport-boundary mapper from errors to user
// message keys. It logs, records metrics hooks via the recorder, and
// forwards high-severity failures to Sentry when enabled.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

var errorRecorder = func(kind, severity string) {}

// RegisterErrorRecorder allows the metrics package to observe handled errors.
func RegisterErrorRecorder(recorder func(kind, severity string)) {
	if recorder == nil {
		errorRecorder = func(string, string) {}
		return
	}

	errorRecorder = recorder
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle classifies err and returns the i18n key for the user-facing
// message plus whether the operation is retryable. An empty key means the
// failure should stay silent (notifier errors).
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr := Classify(err)

	h.log.Error("application error",
		slog.String("kind", string(appErr.Kind)),
		slog.String("message", appErr.Message),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	)

	errorRecorder(string(appErr.Kind), string(appErr.Severity))

	if h.sentryEnabled && (appErr.Severity == SeverityCritical || appErr.Severity == SeverityHigh) {
		h.sendToSentry(appErr)
	}

	key := appErr.UserMessageKey
	if key == "" && appErr.Kind != KindNotifier {
		key = "error.try_again_later"
	}

	return key, appErr.Retryable
}

func (h *Handler) sendToSentry(appErr *AppError) {
	if appErr == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("kind", string(appErr.Kind))
		scope.SetTag("severity", string(appErr.Severity))
		sentry.CaptureException(appErr)
	})
}
