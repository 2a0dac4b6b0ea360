package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func mintToken(t *testing.T, secret string, claims *Claims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func testClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "softdesk-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   "user-1",
		Username: "alice",
	}
}

func TestNewJWTValidator(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"nil config", nil, true},
		{"missing secret", &Config{Issuer: "softdesk-api"}, true},
		{"valid", &Config{Secret: testSecret}, false},
		{"valid with issuer", &Config{Secret: testSecret, Issuer: "softdesk-api"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJWTValidator(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	validator, err := NewJWTValidator(&Config{Secret: testSecret, Issuer: "softdesk-api"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		claims, err := validator.Validate(mintToken(t, testSecret, testClaims(), jwt.SigningMethodHS256))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := validator.Validate("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := validator.Validate(mintToken(t, "other-secret", testClaims(), jwt.SigningMethodHS256))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		_, err := validator.Validate(mintToken(t, testSecret, testClaims(), jwt.SigningMethodHS512))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := testClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := validator.Validate(mintToken(t, testSecret, claims, jwt.SigningMethodHS256))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := testClaims()
		claims.Issuer = "someone-else"
		_, err := validator.Validate(mintToken(t, testSecret, claims, jwt.SigningMethodHS256))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := testClaims()
		claims.UserID = ""
		_, err := validator.Validate(mintToken(t, testSecret, claims, jwt.SigningMethodHS256))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidate_NoIssuerCheckWhenUnconfigured(t *testing.T) {
	validator, err := NewJWTValidator(&Config{Secret: testSecret})
	require.NoError(t, err)

	claims := testClaims()
	claims.Issuer = "anything"
	_, err = validator.Validate(mintToken(t, testSecret, claims, jwt.SigningMethodHS256))
	assert.NoError(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))

	_, err = HashPassword("short")
	assert.Error(t, err)
}
