// Package metrics exposes Prometheus collectors for the listing bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/lifecycle"
	"github.com/addis-listings/dalal-bot/internal/session"
)

var (
	flowEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_events_total",
			Help: "Total number of handled flow events labeled by flow and resulting action",
		},
		[]string{"flow", "action"},
	)
	eventDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_duration_seconds",
			Help:    "Duration of flow event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"flow"},
	)
	nodeTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "node_transitions_total",
			Help: "Total number of conversation node transitions",
		},
		[]string{"flow", "from", "to"},
	)
	lifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_transitions_total",
			Help: "Total number of listing status transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by kind and severity",
		},
		[]string{"kind", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of live conversation sessions",
		},
	)
	sessionsByFlow = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_flow",
			Help: "Number of live sessions per flow",
		},
		[]string{"flow"},
	)
)

var trackedFlows = []session.FlowKind{
	session.FlowSubmission,
	session.FlowFilter,
	session.FlowModerationReject,
}

func init() {
	flow.RegisterTransitionRecorder(RecordNodeTransition)
	lifecycle.RegisterLifecycleRecorder(RecordLifecycleTransition)
	apperrors.RegisterErrorRecorder(RecordError)
}

// RecordEvent increments flow event counters and records handling duration.
func RecordEvent(flowName, action string, duration time.Duration) {
	if flowName == "" {
		flowName = "none"
	}
	if action == "" {
		action = "unknown"
	}

	flowEventsTotal.WithLabelValues(flowName, action).Inc()
	eventDurationSeconds.WithLabelValues(flowName).Observe(duration.Seconds())
}

// RecordNodeTransition tracks conversation graph transitions.
func RecordNodeTransition(flowName, from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	nodeTransitionsTotal.WithLabelValues(flowName, from, to).Inc()
}

// RecordLifecycleTransition tracks listing status transitions.
func RecordLifecycleTransition(from, to string) {
	lifecycleTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(kind, severity string) {
	if kind == "" {
		kind = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(kind, severity).Inc()
}

// SessionCollector periodically gathers session counts and emits gauges.
type SessionCollector struct {
	store    session.Storage
	interval time.Duration
}

// NewSessionCollector builds a collector bound to the session store.
func NewSessionCollector(store session.Storage, interval time.Duration) *SessionCollector {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &SessionCollector{store: store, interval: interval}
}

// Run polls the session store until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	sessions, err := c.store.All(ctx)
	if err != nil {
		return err
	}

	activeSessions.Set(float64(len(sessions)))

	counts := make(map[string]int, len(sessions))
	for _, s := range sessions {
		counts[string(s.Flow)]++
	}

	sessionsByFlow.Reset()
	for _, tracked := range trackedFlows {
		sessionsByFlow.WithLabelValues(string(tracked)).Set(float64(counts[string(tracked)]))
	}

	return nil
}
