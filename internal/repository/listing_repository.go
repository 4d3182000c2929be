// Package repository holds the SQL-backed persistence layer.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/addis-listings/dalal-bot/internal/domain"
)

const listingColumns = `
	id, broker_id, variant, status, rejection_reason,
	price_etb, image_refs, description, region,
	scheme, site, bedrooms, bathrooms, size_sqm,
	commercial, total_floors, total_units, elevator, floor_level,
	furnishing, rooftop, two_story, private_entrance, title_deed, parking_spaces,
	car_make, car_model, car_year, car_transmission, car_mileage_km,
	created_at, updated_at`

// ListingRepository defines persistence operations for listings. Status is
// only ever written through UpdateStatus, and only conditionally.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, rejectionReason string) (*domain.Listing, error)
	Query(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	Pending(ctx context.Context, limit int) ([]domain.Listing, error)
	ByBroker(ctx context.Context, brokerID int64) ([]domain.Listing, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}

type listingRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewListingRepository creates a new SQL-backed listing repository.
func NewListingRepository(db *sql.DB, log *slog.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log,
	}
}

// Create persists a fresh pending listing and returns it with its
// generated identifier and timestamps set.
func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	const query = `
		INSERT INTO listings (
			id, broker_id, variant, status, rejection_reason,
			price_etb, image_refs, description, region,
			scheme, site, bedrooms, bathrooms, size_sqm,
			commercial, total_floors, total_units, elevator, floor_level,
			furnishing, rooftop, two_story, private_entrance, title_deed, parking_spaces,
			car_make, car_model, car_year, car_transmission, car_mileage_km,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25,
			$26, $27, $28, $29, $30,
			$31, $32
		)
	`

	now := time.Now().UTC()
	stored := *listing
	stored.ID = uuid.NewString()
	stored.Status = domain.StatusPending
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if _, err := r.db.ExecContext(
		ctx,
		query,
		stored.ID, stored.BrokerID, stored.Variant, stored.Status, stored.RejectionReason,
		stored.PriceETB, pq.Array(stored.ImageRefs), stored.Description, stored.Region,
		stored.Scheme, stored.Site, stored.Bedrooms, stored.Bathrooms, stored.SizeSqm,
		stored.Commercial, stored.TotalFloors, stored.TotalUnits, stored.Elevator, stored.FloorLevel,
		stored.Furnishing, stored.Rooftop, stored.TwoStory, stored.PrivateEntrance, stored.TitleDeed, stored.ParkingSpaces,
		stored.CarMake, stored.CarModel, stored.CarYear, stored.CarTransmission, stored.CarMileageKm,
		stored.CreatedAt, stored.UpdatedAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to create listing", slog.Int64("broker_id", stored.BrokerID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	return &stored, nil
}

// GetByID retrieves a listing by its identifier.
func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if r.log != nil {
			r.log.Error("failed to fetch listing", slog.String("listing_id", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}

	return listing, nil
}

// UpdateStatus moves a listing from one status to another in a single
// conditional statement. Zero rows updated means the listing is no longer
// in the expected status and the transition is reported as invalid, which
// is how concurrent moderator actions stay race-safe.
func (r *listingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, rejectionReason string) (*domain.Listing, error) {
	query := fmt.Sprintf(`
		UPDATE listings
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s`, listingColumns)

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, to, rejectionReason, time.Now().UTC(), id, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, fmt.Errorf("listing %s not in status %s: %w", id, from, domain.ErrInvalidTransition)
		}
		if r.log != nil {
			r.log.Error("failed to update listing status",
				slog.String("listing_id", id),
				slog.String("to", string(to)),
				slog.Any("error", err))
		}
		return nil, fmt.Errorf("update listing status: %w", err)
	}

	return listing, nil
}

// Query runs a compiled filter. Unset predicates are omitted from the
// statement entirely.
func (r *listingRepository) Query(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	query, args := buildListingQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to query listings", slog.Any("error", err))
		}
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// Pending returns the oldest pending listings for the moderation queue.
func (r *listingRepository) Pending(ctx context.Context, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`, listingColumns)

	rows, err := r.db.QueryContext(ctx, query, domain.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// ByBroker returns a broker's own listings, newest first, excluding
// deleted ones.
func (r *listingRepository) ByBroker(ctx context.Context, brokerID int64) ([]domain.Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE broker_id = $1 AND status <> $2
		ORDER BY created_at DESC`, listingColumns)

	rows, err := r.db.QueryContext(ctx, query, brokerID, domain.StatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("query broker listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// CountByStatus returns listing counts grouped by status.
func (r *listingRepository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	const query = `SELECT status, COUNT(*) FROM listings GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count listings by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan listing count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// buildListingQuery compiles a sparse filter into a statement and its
// arguments. Kept free of *sql.DB so it can be tested without a database.
func buildListingQuery(filter domain.ListingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Variant != nil {
		add("variant = $%d", *filter.Variant)
	}
	if filter.BrokerID != nil {
		add("broker_id = $%d", *filter.BrokerID)
	}
	if filter.MinBedrooms != nil {
		add("bedrooms >= $%d", *filter.MinBedrooms)
	}
	if filter.Region != nil {
		add("region = $%d", *filter.Region)
	}
	if filter.MinPrice != nil {
		add("price_etb >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price_etb <= $%d", *filter.MaxPrice)
	}
	if filter.Scheme != nil {
		add("scheme = $%d", *filter.Scheme)
	}
	if filter.MinFloorLevel != nil {
		add("floor_level >= $%d", *filter.MinFloorLevel)
	}
	if filter.Commercial != nil {
		add("commercial = $%d", *filter.Commercial)
	}
	if filter.Elevator != nil {
		add("elevator = $%d", *filter.Elevator)
	}

	query := fmt.Sprintf("SELECT %s FROM listings", listingColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID, &l.BrokerID, &l.Variant, &l.Status, &l.RejectionReason,
		&l.PriceETB, pq.Array(&l.ImageRefs), &l.Description, &l.Region,
		&l.Scheme, &l.Site, &l.Bedrooms, &l.Bathrooms, &l.SizeSqm,
		&l.Commercial, &l.TotalFloors, &l.TotalUnits, &l.Elevator, &l.FloorLevel,
		&l.Furnishing, &l.Rooftop, &l.TwoStory, &l.PrivateEntrance, &l.TitleDeed, &l.ParkingSpaces,
		&l.CarMake, &l.CarModel, &l.CarYear, &l.CarTransmission, &l.CarMileageKm,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &l, nil
}

func collectListings(rows *sql.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}
