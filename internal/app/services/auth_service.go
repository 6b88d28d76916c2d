package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	pkgauth "github.com/oguzk/learnsphere/internal/pkg/auth"
	"github.com/oguzk/learnsphere/internal/pkg/email"
	"github.com/oguzk/learnsphere/internal/pkg/validation"
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	privileges PrivilegeStore
	jwt        *pkgauth.JWTService
	mailer     email.EmailService
	logger     zerolog.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	privileges PrivilegeStore,
	jwt *pkgauth.JWTService,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		privileges: privileges,
		jwt:        jwt,
		mailer:     mailer,
		logger:     logger,
	}
}

func validateRegistration(req dto.RegisterRequest) error {
	if !validation.IsValidUsername(req.Username) {
		return apperrors.NewValidationError("username", req.Username, "username must be 3-50 letters, digits or underscores")
	}
	if !validation.IsValidEmail(req.Email) {
		return apperrors.NewValidationError("email", req.Email, "email format is invalid")
	}
	if !validation.IsValidPassword(req.Password) {
		return apperrors.NewValidationError("password", nil, "password must be at least 8 characters")
	}
	return nil
}

// createUser validates, hashes and persists a new account, assigning
// default privileges when the account is an instructor. grantorID is
// the admin recorded on the default grants.
func (s *AuthService) createUser(ctx context.Context, req dto.RegisterRequest, role models.Role, grantorID int64) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	if taken, err := s.users.UsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.ErrUsernameAlreadyExists
	}
	if taken, err := s.users.EmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == models.RoleInstructor {
		s.assignDefaultPrivileges(ctx, user.ID, grantorID)
	}

	// Fire-and-forget; registration never blocks on mail delivery
	go func() {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Username, string(user.Role)); err != nil {
			s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
		}
	}()

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return user, nil
}

// assignDefaultPrivileges grants the fixed default set to a new
// instructor. Row failures are logged and skipped so registration
// still succeeds.
func (s *AuthService) assignDefaultPrivileges(ctx context.Context, instructorID, grantorID int64) {
	for _, name := range models.DefaultInstructorPrivileges() {
		privilege := &models.Privilege{
			InstructorID: instructorID,
			Name:         name,
			Description:  name.Description(),
			AssignedBy:   grantorID,
		}
		if err := s.privileges.Create(ctx, privilege); err != nil {
			s.logger.Warn().Err(err).Int64("instructorID", instructorID).Str("privilege", string(name)).Msg("Failed to assign default privilege")
		}
	}
}

// Register creates a student or instructor account. Admin accounts are
// created by an admin or the seeder, never through public
// registration. Instructor default grants are recorded against the
// first active admin.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("role", req.Role, "role must be one of admin, instructor, student")
	}
	if role == models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("admin accounts cannot be self-registered")
	}

	var grantorID int64
	if role == models.RoleInstructor {
		adminID, err := s.users.FirstAdminID(ctx)
		if err != nil {
			return nil, apperrors.NewCustomError(err, "no active admin available to record default grants")
		}
		grantorID = adminID
	}

	return s.createUser(ctx, req, role, grantorID)
}

// AdminCreateUser creates an account of any role on behalf of an
// admin. The admin is the grantor of instructor default privileges.
func (s *AuthService) AdminCreateUser(ctx context.Context, adminID int64, req dto.RegisterRequest) (*models.User, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("role", req.Role, "role must be one of admin, instructor, student")
	}
	return s.createUser(ctx, req, role, adminID)
}

// Login authenticates by username and issues a token pair. The
// refresh token is persisted for later rotation.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Same answer for unknown user and bad password
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if !pkgauth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token: the presented token is
// revoked and a fresh pair issued.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeToken(ctx, refreshToken)
}

// Profile returns the account behind a user ID
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.CreateToken(ctx, refreshToken, user.ID, s.jwt.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}
