package services_test

import (
	"context"
	"testing"
	"time"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/core/domain"
	"booknet/internal/core/services"
	"booknet/internal/pkg/jwt"
	"booknet/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(email string) *services.RegisterInput {
	return &services.RegisterInput{
		Firstname: "Alice",
		Lastname:  "Smith",
		Email:     email,
		Password:  "s3cret-pass",
	}
}

func TestRegisterCreatesDisabledUserAndSendsCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	err := env.auth.Register(ctx, registerInput("alice@example.com"))
	require.NoError(t, err)

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, user.Enabled)
	assert.False(t, user.AccountLocked)
	assert.Equal(t, []string{models.RoleUser}, user.RoleNames())
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.True(t, password.Verify("s3cret-pass", user.Password))

	require.Equal(t, 1, env.mailer.sentCount())
	mail := env.mailer.lastSent()
	assert.Equal(t, "alice@example.com", mail.To)
	assert.Equal(t, "Alice Smith", mail.DisplayName)
	assert.Equal(t, services.TemplateActivateAccount, mail.Template)
	assert.Equal(t, "account activation", mail.Subject)
	assert.Len(t, mail.Code, 6)

	tokens := env.tokens.forUser(user.ID)
	require.Len(t, tokens, 1)
	assert.Equal(t, mail.Code, tokens[0].Code)
	assert.Nil(t, tokens[0].ValidatedAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tokens[0].ExpiresAt, 5*time.Second)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))

	err := env.auth.Register(ctx, registerInput("alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	assert.Equal(t, 1, env.mailer.sentCount())
}

func TestRegisterMissingUserRole(t *testing.T) {
	env := newTestEnv()
	delete(env.roles.roles, models.RoleUser)

	err := env.auth.Register(context.Background(), registerInput("alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrRoleNotConfigured)
	assert.Equal(t, 0, env.mailer.sentCount())
}

func TestRegisterMailerFailure(t *testing.T) {
	env := newTestEnv()
	env.mailer.failErr = assert.AnError

	err := env.auth.Register(context.Background(), registerInput("alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailDispatch)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))
	code := env.mailer.lastSent().Code
	require.NoError(t, env.auth.ActivateAccount(ctx, code))

	token, user, err := env.auth.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Enabled)

	claims, err := jwt.Validate(token, env.cfg.Token.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Smith", claims.FullName)
	assert.Equal(t, []string{models.RoleUser}, claims.Roles)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))
	code := env.mailer.lastSent().Code
	require.NoError(t, env.auth.ActivateAccount(ctx, code))

	// Unknown email and wrong password must be indistinguishable
	_, _, err := env.auth.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = env.auth.Authenticate(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))

	_, _, err := env.auth.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestAuthenticateLockedAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))
	code := env.mailer.lastSent().Code
	require.NoError(t, env.auth.ActivateAccount(ctx, code))

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	user.AccountLocked = true
	require.NoError(t, env.users.Update(ctx, user))

	_, _, err = env.auth.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
}

func TestAuthenticateWrongPasswordBeforeDisabledCheck(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	require.NoError(t, env.auth.Register(ctx, registerInput("alice@example.com")))

	// Wrong password on a disabled account reveals nothing about its state
	_, _, err := env.auth.Authenticate(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
