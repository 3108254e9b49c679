package auth

import (
	"testing"
	"time"

	"github.com/casaverde/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-with-enough-length-123",
		AccessTokenExpiration: expiration,
		Issuer:                "casaverde-backoffice",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	service := newTestService(1 * time.Hour)
	userID := uuid.New()

	issued, err := service.GenerateToken(GenerateTokenInput{
		UserID:   userID,
		Username: "tesorero1",
		Role:     "TESORERIA",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(1*time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := service.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "tesorero1", claims.Username)
	assert.Equal(t, "TESORERIA", claims.Role)
	assert.Equal(t, "casaverde-backoffice", claims.Issuer)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestValidateToken_Expired(t *testing.T) {
	service := newTestService(-1 * time.Minute)

	issued, err := service.GenerateToken(GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "tesorero1",
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_InvalidString(t *testing.T) {
	service := newTestService(1 * time.Hour)

	_, err := service.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := newTestService(1 * time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-key-456",
		AccessTokenExpiration: 1 * time.Hour,
		Issuer:                "casaverde-backoffice",
	})

	issued, err := service.GenerateToken(GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "tesorero1",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetExpiration(t *testing.T) {
	service := newTestService(8 * time.Hour)
	assert.Equal(t, 8*time.Hour, service.GetExpiration())
}
