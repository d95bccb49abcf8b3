package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvo/listkeeper/internal/auth"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/usercache"
	"github.com/tvo/listkeeper/tests/testutil"
)

// captureMailer records the tokens the service would have mailed.
type captureMailer struct {
	registerTokens map[string]string
	resetTokens    map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		registerTokens: make(map[string]string),
		resetTokens:    make(map[string]string),
	}
}

func (m *captureMailer) SendRegisterEmail(to, token string) {
	m.registerTokens[to] = token
}

func (m *captureMailer) SendResetPasswordEmail(to, token string) {
	m.resetTokens[to] = token
}

func newService(t *testing.T) (*auth.Service, *captureMailer) {
	t.Helper()
	s := testutil.NewTestStore(t)
	mailer := newCaptureMailer()
	service, err := auth.NewService(s, usercache.New(s), mailer, []byte("test-secret"), true)
	require.NoError(t, err)
	return service, mailer
}

func TestRegisterActivateLogin(t *testing.T) {
	service, mailer := newService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "Alice@Example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.Active)

	// Not activated yet.
	_, err = service.Login(ctx, "alice@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrInactive)

	token := mailer.registerTokens["alice@example.com"]
	require.NotEmpty(t, token)

	activated, err := service.Activate(ctx, token)
	require.NoError(t, err)
	assert.True(t, activated.Active)

	// Redeeming the token again is harmless.
	_, err = service.Activate(ctx, token)
	require.NoError(t, err)

	loggedIn, err := service.Login(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	service, mailer := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	_, err = service.Activate(ctx, mailer.registerTokens["alice@example.com"])
	require.NoError(t, err)

	// Wrong password and unknown email look the same.
	_, err = service.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
	_, err = service.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	_, err = service.Register(ctx, "alice@example.com", "other")
	assert.ErrorIs(t, err, store.ErrIntegrity)
}

func TestRegistrationClosed(t *testing.T) {
	s := testutil.NewTestStore(t)
	service, err := auth.NewService(s, usercache.New(s), newCaptureMailer(), []byte("test-secret"), false)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "alice@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)
}

func TestPasswordReset(t *testing.T) {
	service, mailer := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	_, err = service.Activate(ctx, mailer.registerTokens["alice@example.com"])
	require.NoError(t, err)

	require.NoError(t, service.RequestPasswordReset(ctx, "alice@example.com"))
	token := mailer.resetTokens["alice@example.com"]
	require.NotEmpty(t, token)

	_, err = service.ConfirmPasswordReset(ctx, token, "correct horse")
	require.NoError(t, err)

	_, err = service.Login(ctx, "alice@example.com", "hunter2")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
	_, err = service.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	service, mailer := newService(t)

	// No error and no mail: the caller learns nothing.
	require.NoError(t, service.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.resetTokens)
}
