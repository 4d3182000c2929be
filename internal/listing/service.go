// Package listing is the application service over the listing repository
// and lifecycle manager. It is the flow engine's finalizer and the
// moderation handlers' entry point.
package listing

import (
	"context"
	"log/slog"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/lifecycle"
	"github.com/addis-listings/dalal-bot/internal/repository"
)

// Service coordinates listing persistence and lifecycle transitions.
type Service struct {
	repo      repository.ListingRepository
	lifecycle *lifecycle.Manager
	log       *slog.Logger
}

func NewService(repo repository.ListingRepository, manager *lifecycle.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:      repo,
		lifecycle: manager,
		log:       log,
	}
}

// CreateListing persists a submission draft as a pending listing.
func (s *Service) CreateListing(ctx context.Context, draft *domain.Listing) (*domain.Listing, error) {
	return s.repo.Create(ctx, draft)
}

// Get returns one listing by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// Search runs a compiled filter against the repository.
func (s *Service) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	return s.repo.Query(ctx, filter)
}

// BrowseAll returns every approved listing.
func (s *Service) BrowseAll(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.Query(ctx, domain.ApprovedOnly())
}

// ByBroker returns a broker's own listings.
func (s *Service) ByBroker(ctx context.Context, brokerID int64) ([]domain.Listing, error) {
	return s.repo.ByBroker(ctx, brokerID)
}

// Pending returns the oldest pending listings for moderation.
func (s *Service) Pending(ctx context.Context, limit int) ([]domain.Listing, error) {
	return s.repo.Pending(ctx, limit)
}

// ApproveListing approves a pending listing.
func (s *Service) ApproveListing(ctx context.Context, id string) (*domain.Listing, *domain.Notification, error) {
	return s.lifecycle.Approve(ctx, id)
}

// RejectListing rejects a pending listing with a reason.
func (s *Service) RejectListing(ctx context.Context, id, reason string) (*domain.Listing, *domain.Notification, error) {
	return s.lifecycle.Reject(ctx, id, reason)
}

// MarkSold marks an approved listing as sold.
func (s *Service) MarkSold(ctx context.Context, id string) (*domain.Listing, *domain.Notification, error) {
	return s.lifecycle.MarkSold(ctx, id)
}

// DeleteListing soft-deletes a listing.
func (s *Service) DeleteListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.lifecycle.Delete(ctx, id)
}
