package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/addis-listings/dalal-bot/internal/domain"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
	"github.com/addis-listings/dalal-bot/internal/session"
)

// Finalizer receives the outcome of a completed flow. Implementations talk
// to the repository and lifecycle manager; the engine itself performs no
// persistence beyond the session store.
type Finalizer interface {
	// CreateListing persists a pending submission draft.
	CreateListing(ctx context.Context, draft *domain.Listing) (*domain.Listing, error)
	// Search runs a compiled filter against the repository.
	Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	// RejectListing performs the moderation rejection transition, returning
	// the broker notification command alongside the updated listing.
	RejectListing(ctx context.Context, listingID, reason string) (*domain.Listing, *domain.Notification, error)
}

// ImageStore persists one photo attachment and returns its reference. The
// engine stores only references in answers, never raw bytes.
type ImageStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

var transitionRecorder = func(flow, from, to string) {}

// RegisterTransitionRecorder allows the metrics package to observe node
// transitions.
func RegisterTransitionRecorder(recorder func(flow, from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Engine drives users through the flow graphs one event at a time. It is
// deterministic: all side effects are either the session store, the image
// store, or the finalizer, and everything else is returned as an Action.
type Engine struct {
	graphs []*Graph
	store  session.Storage
	locker session.Locker
	images ImageStore
	fin    Finalizer
	log    *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewEngine creates an engine with the three flow graphs registered. The
// locker may be nil in single-process deployments backed by MemoryStorage.
func NewEngine(
	store session.Storage,
	images ImageStore,
	fin Finalizer,
	locker session.Locker,
	log *slog.Logger,
	ttl time.Duration,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Engine{
		graphs: []*Graph{SubmissionGraph(), FilterGraph(), ModerationGraph()},
		store:  store,
		locker: locker,
		images: images,
		fin:    fin,
		log:    log,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent is the single integration point for the transport layer.
// Events for one user are serialized via the locker; the returned action
// tells the transport what to render.
func (e *Engine) HandleEvent(ctx context.Context, userID int64, ev Event) (*Action, error) {
	if e.locker != nil {
		if err := e.locker.Lock(ctx, userID); err != nil {
			return nil, err
		}
		defer e.locker.Unlock(ctx, userID)
	}

	sess, err := e.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return e.startFlow(ctx, userID, ev)
		}
		return nil, err
	}

	if isCancel(ev) {
		if err := e.store.Delete(ctx, userID); err != nil {
			return nil, err
		}
		e.log.Info("flow cancelled", slog.Int64("user_id", userID), slog.String("flow", string(sess.Flow)))
		return &Action{Kind: ActionCancelled, Flow: sess.Flow}, nil
	}

	if sess.Expired(e.now()) {
		if err := e.store.Delete(ctx, userID); err != nil {
			return nil, err
		}
		e.log.Info("session expired", slog.Int64("user_id", userID), slog.String("flow", string(sess.Flow)))
		return &Action{Kind: ActionExpired, Flow: sess.Flow}, nil
	}

	return e.advance(ctx, sess, ev)
}

func (e *Engine) startFlow(ctx context.Context, userID int64, ev Event) (*Action, error) {
	for _, g := range e.graphs {
		seed, ok := g.Match(ev)
		if !ok {
			continue
		}

		now := e.now()
		sess := &session.Session{
			UserID:    userID,
			Flow:      g.Kind,
			NodeID:    string(g.Start),
			Answers:   seed,
			CreatedAt: now,
			ExpiresAt: now.Add(e.ttl),
		}

		if err := e.store.Put(ctx, sess); err != nil {
			return nil, err
		}

		e.log.Info("flow started", slog.Int64("user_id", userID), slog.String("flow", string(g.Kind)))
		return &Action{Kind: ActionPrompt, Flow: g.Kind, Node: g.Node(g.Start)}, nil
	}

	return &Action{Kind: ActionNone}, nil
}

func (e *Engine) advance(ctx context.Context, sess *session.Session, ev Event) (*Action, error) {
	g := e.graph(sess.Flow)
	node := g.Node(NodeID(sess.NodeID))
	if node == nil {
		// Graph changed under a live session (deploy); recover to idle.
		e.log.Warn("session points at unknown node",
			slog.Int64("user_id", sess.UserID), slog.String("node", sess.NodeID))
		if err := e.store.Delete(ctx, sess.UserID); err != nil {
			return nil, err
		}
		return &Action{Kind: ActionReset, Flow: sess.Flow}, nil
	}

	if isUnroutable(ev) {
		e.log.Warn("stuck conversation reset",
			slog.Int64("user_id", sess.UserID),
			slog.String("flow", string(sess.Flow)),
			slog.String("node", sess.NodeID))
		if err := e.store.Delete(ctx, sess.UserID); err != nil {
			return nil, err
		}
		return &Action{Kind: ActionReset, Flow: sess.Flow}, nil
	}

	value, err := Validate(node, ev, sess.Answers)
	if err != nil {
		var invalid *Invalid
		if errors.As(err, &invalid) {
			return &Action{Kind: ActionInvalid, Flow: sess.Flow, Node: node, ErrorKey: invalid.Reason, Params: invalid.Params}, nil
		}
		return nil, err
	}

	switch v := value.(type) {
	case PhotoAccepted:
		return e.collectPhoto(ctx, sess, node, ev)
	case PhotosDone:
		_ = v
	default:
		if !(node.AllowAny && value == AnySentinel) {
			sess.Answers = sess.Answers.With(node.field(), value)
		}
	}

	next := node.Next(sess.Answers)
	transitionRecorder(string(sess.Flow), string(node.ID), string(next))

	if next == NodeComplete {
		return e.finalize(ctx, sess)
	}

	sess.NodeID = string(next)
	sess.Touch(e.now(), e.ttl)
	if err := e.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	return &Action{Kind: ActionPrompt, Flow: sess.Flow, Node: g.Node(next)}, nil
}

func (e *Engine) collectPhoto(ctx context.Context, sess *session.Session, node *Node, ev Event) (*Action, error) {
	ref, err := e.images.Put(ctx, ev.Photo, ev.ContentType)
	if err != nil {
		// External collaborator failure: destroy the session, report, never
		// retry here.
		e.log.Error("image store failed", slog.Int64("user_id", sess.UserID), slog.Any("error", err))
		if delErr := e.store.Delete(ctx, sess.UserID); delErr != nil {
			return nil, delErr
		}
		return failedAction(sess.Flow, err), nil
	}

	sess.Answers = sess.Answers.With(imageField, ref)
	sess.Touch(e.now(), e.ttl)
	if err := e.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	count := sess.Answers.Count(imageField)
	return &Action{
		Kind:      ActionPrompt,
		Flow:      sess.Flow,
		Node:      node,
		PromptKey: "prompt.image_received",
		Params:    map[string]any{"count": count},
	}, nil
}

// finalize destroys the session first: a collaborator failure must not
// leave a resumable half-submitted conversation behind.
func (e *Engine) finalize(ctx context.Context, sess *session.Session) (*Action, error) {
	if err := e.store.Delete(ctx, sess.UserID); err != nil {
		return nil, err
	}

	switch sess.Flow {
	case session.FlowSubmission:
		draft := AssembleListing(sess.UserID, sess.Answers)
		created, err := e.fin.CreateListing(ctx, draft)
		if err != nil {
			e.log.Error("listing create failed", slog.Int64("user_id", sess.UserID), slog.Any("error", err))
			return failedAction(sess.Flow, err), nil
		}
		e.log.Info("submission complete",
			slog.Int64("user_id", sess.UserID),
			slog.String("listing_id", created.ID),
			slog.String("variant", string(created.Variant)))
		return &Action{Kind: ActionSubmitted, Flow: sess.Flow, Listing: created}, nil

	case session.FlowFilter:
		filter := CompileFilter(sess.Answers)
		results, err := e.fin.Search(ctx, filter)
		if err != nil {
			e.log.Error("listing search failed", slog.Int64("user_id", sess.UserID), slog.Any("error", err))
			return failedAction(sess.Flow, err), nil
		}
		return &Action{Kind: ActionResults, Flow: sess.Flow, Results: results}, nil

	case session.FlowModerationReject:
		listingID, _ := sess.Answers.GetString(listingIDField)
		reason, _ := sess.Answers.GetString(string(nodeRejectReason))

		listing, notification, err := e.fin.RejectListing(ctx, listingID, reason)
		if err != nil {
			e.log.Warn("listing reject failed",
				slog.Int64("user_id", sess.UserID),
				slog.String("listing_id", listingID),
				slog.Any("error", err))
			return failedAction(sess.Flow, err), nil
		}
		return &Action{Kind: ActionRejected, Flow: sess.Flow, Listing: listing, Notification: notification}, nil
	}

	return &Action{Kind: ActionReset, Flow: sess.Flow}, nil
}

func (e *Engine) graph(kind session.FlowKind) *Graph {
	for _, g := range e.graphs {
		if g.Kind == kind {
			return g
		}
	}
	return nil
}

func failedAction(kind session.FlowKind, err error) *Action {
	return &Action{Kind: ActionFailed, Flow: kind, ErrorKey: apperrors.Classify(err).UserMessageKey}
}

func isCancel(ev Event) bool {
	switch ev.Kind {
	case EventCallback:
		return ev.Callback == TriggerCancel
	case EventText:
		text := strings.TrimPrefix(strings.TrimSpace(ev.Text), "/")
		return strings.EqualFold(text, TriggerCancel)
	}
	return false
}

// isUnroutable reports events no node validator can interpret: slash
// commands and stray inline-button presses mid-flow. Merely wrong-kind
// input (a photo at a boolean node) stays routable and re-prompts instead.
func isUnroutable(ev Event) bool {
	if ev.Kind == EventCallback {
		return true
	}
	return ev.Kind == EventText && strings.HasPrefix(strings.TrimSpace(ev.Text), "/")
}
