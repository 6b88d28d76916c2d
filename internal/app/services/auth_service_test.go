package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	pkgauth "github.com/oguzk/learnsphere/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fakePrivilegeStore, *fakeTokenStore) {
	t.Helper()

	users := newFakeUserStore()
	users.add(models.User{ID: testAdminID, Username: "admin", Email: "admin@learnsphere.app", Role: models.RoleAdmin, IsActive: true})

	tokens := newFakeTokenStore()
	privileges := newFakePrivilegeStore()

	jwt := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret-0123456789",
		AccessTokenExp:  30 * time.Minute,
		RefreshTokenExp: 168 * time.Hour,
		TokenIssuer:     "learnsphere.test",
	})

	svc := NewAuthService(users, tokens, privileges, jwt, fakeMailer{}, zerolog.Nop())
	return svc, users, privileges, tokens
}

func registerReq(role string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Username: "newuser",
		Email:    "newuser@example.com",
		Password: "s3cret-password",
		Role:     role,
	}
}

func TestRegisterStudent(t *testing.T) {
	svc, _, privileges, _ := newAuthFixture(t)

	user, err := svc.Register(context.Background(), registerReq("student"))
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-password", user.Password, "password must be stored hashed")
	assert.Empty(t, privileges.privileges, "students get no privilege grants")
}

func TestRegisterAdminBlocked(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), registerReq("admin"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRegisterUnknownRole(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), registerReq("superuser"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegisterInstructorGetsDefaultGrants(t *testing.T) {
	svc, _, privileges, _ := newAuthFixture(t)

	user, err := svc.Register(context.Background(), registerReq("instructor"))
	require.NoError(t, err)

	defaults := models.DefaultInstructorPrivileges()
	grants, err := privileges.ListActiveByInstructor(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, grants, len(defaults))

	var names []models.PrivilegeName
	for _, g := range grants {
		names = append(names, g.Name)
		assert.Equal(t, testAdminID, g.AssignedBy, "public registration records the first admin as grantor")
	}
	assert.ElementsMatch(t, defaults, names)
}

func TestAdminCreateUserRecordsCreatingAdmin(t *testing.T) {
	svc, users, privileges, _ := newAuthFixture(t)
	secondAdmin := users.add(models.User{Username: "admin2", Email: "admin2@learnsphere.app", Role: models.RoleAdmin, IsActive: true})

	user, err := svc.AdminCreateUser(context.Background(), secondAdmin.ID, registerReq("instructor"))
	require.NoError(t, err)

	grants, err := privileges.ListActiveByInstructor(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, grants)
	for _, g := range grants {
		assert.Equal(t, secondAdmin.ID, g.AssignedBy)
	}
}

func TestRegisterDuplicateUsernameAndEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("student"))
	require.NoError(t, err)

	dup := registerReq("student")
	dup.Email = "different@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)

	dup = registerReq("student")
	dup.Username = "different_user"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	req := registerReq("student")
	req.Username = "ab"
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = registerReq("student")
	req.Email = "not-an-email"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = registerReq("student")
	req.Password = "short"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLogin(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("student"))
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, dto.LoginRequest{Username: "newuser", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "newuser", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown user gets the same answer as a bad password
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Disabled accounts are told apart
	user, err := users.GetByUsername(ctx, "newuser")
	require.NoError(t, err)
	require.NoError(t, users.Deactivate(ctx, user.ID))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "newuser", Password: "s3cret-password"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("student"))
	require.NoError(t, err)

	first, err := svc.Login(ctx, dto.LoginRequest{Username: "newuser", Password: "s3cret-password"})
	require.NoError(t, err)

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The presented token was revoked during rotation
	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("student"))
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, dto.LoginRequest{Username: "newuser", Password: "s3cret-password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
