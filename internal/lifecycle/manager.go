package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/addis-listings/dalal-bot/internal/domain"
	apperrors "github.com/addis-listings/dalal-bot/internal/errors"
)

// Repository is the persistence surface the manager needs. UpdateStatus
// must be conditional on the expected current status and return
// domain.ErrInvalidTransition when the listing is no longer in it, so
// concurrent moderators race safely.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, rejectionReason string) (*domain.Listing, error)
}

var lifecycleRecorder = func(from, to string) {}

// RegisterLifecycleRecorder allows the metrics package to observe status
// transitions.
func RegisterLifecycleRecorder(recorder func(from, to string)) {
	if recorder == nil {
		lifecycleRecorder = func(string, string) {}
		return
	}

	lifecycleRecorder = recorder
}

// Manager owns every listing status change. Status is never written
// anywhere else; callers get back the updated listing and, for
// broker-visible transitions, a notification command to dispatch.
type Manager struct {
	repo Repository
	log  *slog.Logger
}

func NewManager(repo Repository, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{repo: repo, log: log}
}

// Approve moves a pending listing to approved and clears any stale
// rejection reason.
func (m *Manager) Approve(ctx context.Context, id string) (*domain.Listing, *domain.Notification, error) {
	listing, err := m.transition(ctx, id, domain.StatusPending, domain.StatusApproved, "")
	if err != nil {
		return nil, nil, err
	}

	return listing, &domain.Notification{
		RecipientID: listing.BrokerID,
		MessageKey:  "notify.listing_approved",
		Params:      notifyParams(listing),
	}, nil
}

// Reject moves a pending listing to rejected. The reason is mandatory and
// is stored on the listing and relayed to the broker.
func (m *Manager) Reject(ctx context.Context, id, reason string) (*domain.Listing, *domain.Notification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, apperrors.NewValidationError("rejection reason is required")
	}

	listing, err := m.transition(ctx, id, domain.StatusPending, domain.StatusRejected, reason)
	if err != nil {
		return nil, nil, err
	}

	params := notifyParams(listing)
	params["reason"] = reason
	return listing, &domain.Notification{
		RecipientID: listing.BrokerID,
		MessageKey:  "notify.listing_rejected",
		Params:      params,
	}, nil
}

// MarkSold moves an approved listing to sold.
func (m *Manager) MarkSold(ctx context.Context, id string) (*domain.Listing, *domain.Notification, error) {
	listing, err := m.transition(ctx, id, domain.StatusApproved, domain.StatusSold, "")
	if err != nil {
		return nil, nil, err
	}

	return listing, &domain.Notification{
		RecipientID: listing.BrokerID,
		MessageKey:  "notify.listing_sold",
		Params:      notifyParams(listing),
	}, nil
}

// Delete soft-deletes a listing from any status. Deleting an already
// deleted listing is a silent no-op; no notification is sent either way.
func (m *Manager) Delete(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.StatusDeleted {
		return listing, nil
	}

	updated, err := m.transition(ctx, id, listing.Status, domain.StatusDeleted, "")
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Lost a race with another delete; still a success.
			if current, getErr := m.repo.GetByID(ctx, id); getErr == nil && current.Status == domain.StatusDeleted {
				return current, nil
			}
		}
		return nil, err
	}

	return updated, nil
}

// Transition applies a named admin action to a listing. It is the single
// entry point the moderation handlers use.
func (m *Manager) Transition(ctx context.Context, action, id, reason string) (*domain.Listing, *domain.Notification, error) {
	switch action {
	case "approve":
		return m.Approve(ctx, id)
	case "reject":
		return m.Reject(ctx, id, reason)
	case "sold":
		return m.MarkSold(ctx, id)
	case "delete":
		listing, err := m.Delete(ctx, id)
		return listing, nil, err
	}

	return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unknown lifecycle action %q", action))
}

func (m *Manager) transition(ctx context.Context, id string, from, to domain.Status, reason string) (*domain.Listing, error) {
	if !CanTransition(from, to) {
		return nil, apperrors.NewInvalidTransitionError(
			fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to))
	}

	listing, err := m.repo.UpdateStatus(ctx, id, from, to, reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			m.log.Warn("transition conflict",
				slog.String("listing_id", id),
				slog.String("from", string(from)),
				slog.String("to", string(to)))
			return nil, apperrors.NewInvalidTransitionError(err)
		}
		return nil, err
	}

	lifecycleRecorder(string(from), string(to))
	m.log.Info("listing transition",
		slog.String("listing_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)))

	return listing, nil
}

func notifyParams(l *domain.Listing) map[string]string {
	return map[string]string{
		"listing_id": l.ID,
		"variant":    string(l.Variant),
	}
}
