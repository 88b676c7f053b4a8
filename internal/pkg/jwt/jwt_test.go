package jwt_test

import (
	"testing"
	"time"

	"booknet/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := jwt.Generate(42, "alice@example.com", "Alice Smith", []string{"USER"}, testSecret, 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.Validate(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Smith", claims.FullName)
	assert.Equal(t, []string{"USER"}, claims.Roles)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateExpired(t *testing.T) {
	token, err := jwt.Generate(1, "a@x.com", "A X", nil, testSecret, -1)
	require.NoError(t, err)

	claims, err := jwt.Validate(token, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestValidateTampered(t *testing.T) {
	token, err := jwt.Generate(1, "a@x.com", "A X", []string{"USER"}, testSecret, 60)
	require.NoError(t, err)

	// Flipping any byte must invalidate the token without leaking claims
	for _, i := range []int{0, len(token) / 2, len(token) - 1} {
		raw := []byte(token)
		if raw[i] == 'A' {
			raw[i] = 'B'
		} else {
			raw[i] = 'A'
		}

		claims, err := jwt.Validate(string(raw), testSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid, "byte %d", i)
		assert.Nil(t, claims)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := jwt.Generate(1, "a@x.com", "A X", nil, testSecret, 60)
	require.NoError(t, err)

	claims, err := jwt.Validate(token, "another-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
	assert.Nil(t, claims)
}

func TestValidateMalformed(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		claims, err := jwt.Validate(tok, testSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
		assert.Nil(t, claims)
	}
}
