// Package user provides the application service over the user repository.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/repository"
)

// Service manages platform users and their roles.
type Service struct {
	repo            repository.UserRepository
	defaultLanguage string
	log             *slog.Logger
}

func NewService(repo repository.UserRepository, defaultLanguage string, log *slog.Logger) *Service {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:            repo,
		defaultLanguage: defaultLanguage,
		log:             log,
	}
}

// GetOrCreate returns the user for the Telegram sender, creating a buyer
// record on first contact.
func (s *Service) GetOrCreate(ctx context.Context, telegramID int64, firstName, lastName, username string) (*domain.User, error) {
	existing, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := &domain.User{
		TelegramID:   telegramID,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		Roles:        []domain.Role{domain.RoleBuyer},
		Language:     s.defaultLanguage,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	if createErr := s.repo.Create(ctx, created); createErr != nil {
		return nil, createErr
	}

	s.log.Info("created new user", slog.Int64("telegram_id", telegramID))
	return created, nil
}

// GrantRole gives the user an additional role.
func (s *Service) GrantRole(ctx context.Context, telegramID int64, role domain.Role) error {
	if err := s.repo.AddRole(ctx, telegramID, role); err != nil {
		return fmt.Errorf("grant role %s: %w", role, err)
	}

	s.log.Info("granted role", slog.Int64("telegram_id", telegramID), slog.String("role", string(role)))
	return nil
}

// SeedAdmins makes sure every configured admin id exists and holds the
// admin role. Run once at startup.
func (s *Service) SeedAdmins(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := s.GetOrCreate(ctx, id, "", "", ""); err != nil {
			return err
		}
		if err := s.GrantRole(ctx, id, domain.RoleAdmin); err != nil {
			return err
		}
	}

	return nil
}

// SetLanguage stores the user's preferred locale.
func (s *Service) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	return s.repo.SetLanguage(ctx, telegramID, language)
}

// UpdateLastActive touches the user's activity timestamp.
func (s *Service) UpdateLastActive(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateLastActive(ctx, telegramID, time.Now().UTC())
}
