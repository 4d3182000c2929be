package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/addis-listings/dalal-bot/internal/domain"
)

// UserRepository defines persistence operations for platform users.
type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	AddRole(ctx context.Context, telegramID int64, role domain.Role) error
	SetLanguage(ctx context.Context, telegramID int64, language string) error
	UpdateLastActive(ctx context.Context, telegramID int64, at time.Time) error
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a user by their Telegram identifier.
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, first_name, last_name, username, roles, language, created_at, last_active_at
		FROM users
		WHERE telegram_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, telegramID)

	var (
		user  domain.User
		roles []string
	)
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		pq.Array(&roles),
		&user.Language,
		&user.CreatedAt,
		&user.LastActiveAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by telegram id", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by telegram id: %w", err)
	}

	user.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}

	return &user, nil
}

// Create persists a new user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, first_name, last_name, username, roles, language, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.Username,
		pq.Array(roles),
		user.Language,
		user.CreatedAt,
		user.LastActiveAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to create user", slog.Int64("telegram_id", user.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// AddRole grants a role to a user if they do not hold it already.
func (r *userRepository) AddRole(ctx context.Context, telegramID int64, role domain.Role) error {
	const query = `
		UPDATE users
		SET roles = array_append(roles, $1)
		WHERE telegram_id = $2 AND NOT ($1 = ANY(roles))
	`

	if _, err := r.db.ExecContext(ctx, query, string(role), telegramID); err != nil {
		return fmt.Errorf("add role: %w", err)
	}

	return nil
}

// SetLanguage stores the user's preferred locale.
func (r *userRepository) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	const query = `UPDATE users SET language = $1 WHERE telegram_id = $2`

	if _, err := r.db.ExecContext(ctx, query, language, telegramID); err != nil {
		return fmt.Errorf("set user language: %w", err)
	}

	return nil
}

// UpdateLastActive touches the user's activity timestamp.
func (r *userRepository) UpdateLastActive(ctx context.Context, telegramID int64, at time.Time) error {
	const query = `UPDATE users SET last_active_at = $1 WHERE telegram_id = $2`

	if _, err := r.db.ExecContext(ctx, query, at, telegramID); err != nil {
		return fmt.Errorf("update last active: %w", err)
	}

	return nil
}
