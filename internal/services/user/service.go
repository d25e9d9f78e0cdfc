// Package user manages identities and the accounts they own.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
)

// Compile-time interface check
var _ interfaces.UserService = (*Service)(nil)

// Service implements UserService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new user service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) users() interfaces.InternalStore {
	return s.storage.InternalStore()
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users().GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Service) GetUserByAuthSubject(ctx context.Context, subject string) (*models.User, error) {
	u, err := s.users().GetUserByAuthSubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser registers a user on behalf of an administrator. Status
// defaults to invited.
func (s *Service) CreateUser(ctx context.Context, in *models.UserCreate) (*models.User, error) {
	if in.Status == "" {
		in.Status = models.UserStatusInvited
	}
	if err := models.ValidateUserStatus(in.Status); err != nil {
		return nil, common.Invalidf("%v", err)
	}
	u, err := s.register(ctx, in.AuthSubject, in.Email, in.FullName, in.IsAdmin, in.Status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.UserID).Str("status", string(u.Status)).Msg("User created")
	return u, nil
}

// Signup registers the caller of a verified token as an active, non-admin
// user. A subject that is already registered is a conflict.
func (s *Service) Signup(ctx context.Context, subject, email, name string) (*models.User, error) {
	u, err := s.register(ctx, subject, email, name, false, models.UserStatusActive)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.UserID).Str("email", u.Email).Msg("User signed up")
	return u, nil
}

func (s *Service) register(ctx context.Context, subject, email, name string, admin bool, status models.UserStatus) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	email = strings.TrimSpace(email)
	if subject == "" {
		return nil, common.Invalidf("auth subject is required")
	}
	if email == "" {
		return nil, common.Invalidf("email is required")
	}

	_, err := s.users().GetUserByAuthSubject(ctx, subject)
	if err == nil {
		return nil, common.Conflictf("user with subject %s already exists", subject)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	now := s.now()
	u := &models.User{
		UserID:      ulid.Make().String(),
		AuthSubject: subject,
		Email:       email,
		FullName:    strings.TrimSpace(name),
		IsAdmin:     admin,
		Status:      status,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if err := s.users().SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID string, upd *models.UserUpdate) (*models.User, error) {
	u, err := s.users().GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if upd.Status != nil {
		if err := models.ValidateUserStatus(*upd.Status); err != nil {
			return nil, common.Invalidf("%v", err)
		}
		u.Status = *upd.Status
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email == "" {
			return nil, common.Invalidf("email cannot be empty")
		}
		u.Email = email
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.IsAdmin != nil {
		u.IsAdmin = *upd.IsAdmin
	}
	u.ModifiedAt = s.now()

	if err := s.users().SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("User updated")
	return u, nil
}

// DeleteUser removes a user that owns no accounts. Callers cannot delete
// themselves.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if common.ResolveUserID(ctx) == userID {
		return common.Invalidf("cannot delete your own user")
	}
	if _, err := s.users().GetUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	accounts, err := s.storage.LedgerStore().ListAccounts(ctx, models.ForUser(userID))
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) > 0 {
		return common.Conflictf("user %s still owns %d account(s)", userID, len(accounts))
	}

	if err := s.users().DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("User deleted")
	return nil
}
