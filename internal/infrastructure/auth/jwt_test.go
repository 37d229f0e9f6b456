package auth

import (
	"testing"
	"time"

	"github.com/fleet/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-for-unit-tests-only",
		TokenExpiration: time.Hour,
		Issuer:          "fleet-backend",
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := newTestJWTService()

	input := GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "jperez",
		Role:     RoleDriver,
	}

	generated, err := service.GenerateToken(input)

	require.NoError(t, err)
	assert.NotEmpty(t, generated.Token)
	assert.Equal(t, "Bearer", generated.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), generated.ExpiresAt, 5*time.Second)
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := newTestJWTService()

	t.Run("round-trips claims", func(t *testing.T) {
		input := GenerateTokenInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
			Username: "jperez",
			Role:     RoleSupervisor,
		}

		generated, err := service.GenerateToken(input)
		require.NoError(t, err)

		claims, err := service.ValidateToken(generated.Token)

		require.NoError(t, err)
		assert.Equal(t, input.TenantID.String(), claims.TenantID)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "jperez", claims.Username)
		assert.Equal(t, RoleSupervisor, claims.Role)

		tenantID, err := claims.GetTenantUUID()
		require.NoError(t, err)
		assert.Equal(t, input.TenantID, tenantID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-completely-different-secret-key",
			TokenExpiration: time.Hour,
			Issuer:          "fleet-backend",
		})

		generated, err := other.GenerateToken(GenerateTokenInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
			Username: "jperez",
		})
		require.NoError(t, err)

		_, err = service.ValidateToken(generated.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:          "test-secret-key-for-unit-tests-only",
			TokenExpiration: -time.Minute,
			Issuer:          "fleet-backend",
		})

		generated, err := expired.GenerateToken(GenerateTokenInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
			Username: "jperez",
		})
		require.NoError(t, err)

		_, err = service.ValidateToken(generated.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestClaims_HasRole(t *testing.T) {
	claims := &Claims{Role: RoleDriver}

	assert.True(t, claims.HasRole(RoleDriver))
	assert.True(t, claims.HasRole(RoleAdmin, RoleDriver))
	assert.False(t, claims.HasRole(RoleAdmin, RoleSupervisor))
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	service := newTestJWTService()

	generated, err := service.GenerateToken(GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "jperez",
	})
	require.NoError(t, err)

	claims, err := service.ValidateToken(generated.Token)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 55*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}
