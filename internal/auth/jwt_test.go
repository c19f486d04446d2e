package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

// ============================================
// Token Generation and Validation Tests
// ============================================

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresAt, err := svc.GenerateToken("seller-123", "seller@example.com", RoleSeller)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "seller-123", claims.Subject)
	assert.Equal(t, "seller@example.com", claims.Email)
	assert.Equal(t, RoleSeller, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService(testSecret, time.Hour)
	verifier := NewJWTService("a-completely-different-secret-key", time.Hour)

	token, _, err := issuer.GenerateToken("user-1", "u@example.com", RoleUser)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Minute)

	token, _, err := svc.GenerateToken("user-1", "u@example.com", RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// ============================================
// Claims Tests
// ============================================

func TestClaims_SellerID(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	tests := []struct {
		role string
		want string
	}{
		{RoleSeller, "id-1"},
		{RoleAdmin, "id-1"},
		{RoleUser, ""},
	}

	for _, tt := range tests {
		token, _, err := svc.GenerateToken("id-1", "u@example.com", tt.role)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, tt.want, claims.SellerID(), "role %s", tt.role)
	}
}

// ============================================
// Role Mapping Tests
// ============================================

func TestRoleForSignupType(t *testing.T) {
	assert.Equal(t, RoleSeller, RoleForSignupType("seller"))
	assert.Equal(t, RoleAdmin, RoleForSignupType("admin"))
	assert.Equal(t, RoleUser, RoleForSignupType("buyer"))
	assert.Equal(t, RoleUser, RoleForSignupType(""))
}
