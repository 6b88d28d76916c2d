package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

// CanPerform is the pure authorization decision. Admins may do
// anything, students nothing privilege-gated, instructors exactly what
// their live grant set contains.
func CanPerform(role models.Role, granted map[models.PrivilegeName]struct{}, action models.PrivilegeName) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleInstructor:
		_, ok := granted[action]
		return ok
	default:
		return false
	}
}

// Owns is the ownership predicate, applied in addition to the
// privilege check, never instead of it.
func Owns(userID, ownerID int64) bool {
	return userID == ownerID
}

// UserGetter loads users for authorization decisions
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// GrantLoader loads an instructor's live grant set
type GrantLoader interface {
	GrantSet(ctx context.Context, instructorID int64) (map[models.PrivilegeName]struct{}, error)
}

// AuthorizationService wraps the pure decision with user and grant
// lookups. Mutating operations call it explicitly at their start.
type AuthorizationService struct {
	users  UserGetter
	grants GrantLoader
	logger zerolog.Logger
}

// NewAuthorizationService creates an AuthorizationService
func NewAuthorizationService(users UserGetter, grants GrantLoader, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{
		users:  users,
		grants: grants,
		logger: logger,
	}
}

// actor loads an active user or fails with a typed error
func (s *AuthorizationService) actor(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return user, nil
}

// CheckPrivilege verifies that the user may perform the given action.
// Returns ErrPermissionDenied when the decision is negative.
func (s *AuthorizationService) CheckPrivilege(ctx context.Context, userID int64, action models.PrivilegeName) error {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return err
	}

	var granted map[models.PrivilegeName]struct{}
	if user.Role == models.RoleInstructor {
		granted, err = s.grants.GrantSet(ctx, user.ID)
		if err != nil {
			return err
		}
	}

	if !CanPerform(user.Role, granted, action) {
		s.logger.Debug().Int64("userID", userID).Str("role", string(user.Role)).Str("action", string(action)).Msg("Privilege check denied")
		return apperrors.NewForbiddenError("privilege '" + string(action) + "' is required")
	}
	return nil
}

// RequireOwnership verifies that the user owns the resource. Admins
// bypass ownership.
func (s *AuthorizationService) RequireOwnership(ctx context.Context, userID, ownerID int64) error {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	if !Owns(userID, ownerID) {
		return apperrors.NewForbiddenError("you do not own this resource")
	}
	return nil
}

// RequireAdmin verifies that the user is an active admin
func (s *AuthorizationService) RequireAdmin(ctx context.Context, userID int64) error {
	user, err := s.actor(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return apperrors.NewForbiddenError("admin role is required")
	}
	return nil
}
