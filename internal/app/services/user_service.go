package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/helpers"
)

// UserService covers the admin-facing account management operations
type UserService struct {
	users  UserStore
	tokens TokenStore
	authz  Authorizer
	logger zerolog.Logger
}

// NewUserService creates a UserService
func NewUserService(users UserStore, tokens TokenStore, authz Authorizer, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		authz:  authz,
		logger: logger,
	}
}

// List returns a page of users, optionally filtered by role.
// Admin-only.
func (s *UserService) List(ctx context.Context, adminID int64, roleFilter string, page, size int) ([]models.User, int64, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, 0, err
	}

	var role *models.Role
	if roleFilter != "" {
		parsed, ok := models.ParseRole(roleFilter)
		if !ok {
			return nil, 0, apperrors.NewValidationError("role", roleFilter, "unknown role")
		}
		role = &parsed
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.users.List(ctx, role, offset, limit)
}

// Get returns one user. Admin-only.
func (s *UserService) Get(ctx context.Context, adminID, userID int64) (*models.User, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Deactivate soft-disables an account and revokes its refresh tokens.
// Admin-only.
func (s *UserService) Deactivate(ctx context.Context, adminID, userID int64) error {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return err
	}
	if adminID == userID {
		return apperrors.NewValidationError("userId", userID, "admins cannot deactivate their own account")
	}

	if err := s.users.Deactivate(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke tokens of deactivated user")
	}

	s.logger.Info().Int64("userID", userID).Int64("adminID", adminID).Msg("User deactivated")
	return nil
}

// Delete removes an account permanently. Admin-only. This is the one
// hard-delete path; enrollments and privileges of the user go with it.
func (s *UserService) Delete(ctx context.Context, adminID, userID int64) error {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return err
	}
	if adminID == userID {
		return apperrors.NewValidationError("userId", userID, "admins cannot delete their own account")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Int64("adminID", adminID).Msg("User deleted")
	return nil
}
