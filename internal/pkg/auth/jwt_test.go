package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/learnsphere/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret-0123456789",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 168 * time.Hour,
		TokenIssuer:     "learnsphere.test",
	})
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "teach", Role: models.RoleInstructor}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService(30 * time.Minute)

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	assert.Equal(t, int((30 * time.Minute).Seconds()), expiresIn)
	assert.Equal(t, int((168 * time.Hour).Seconds()), refreshExpiresIn)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "instructor", claims.Role)
	assert.Equal(t, "teach", claims.Subject)
	assert.Equal(t, "learnsphere.test", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	access, _, _, _, err := testService(time.Minute).GenerateTokenPair(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another-secret"})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	// Built directly to sidestep the constructor's expiry floor
	svc := &JWTService{config: JWTConfig{
		SecretKey:      "test-secret-0123456789",
		AccessTokenExp: -time.Minute,
	}}

	access, _, _, _, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	// Raw tokens pass through
	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword(hash, "s3cret-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}
