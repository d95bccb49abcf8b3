package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/tests/testutil"
)

func TestCreateAndGetUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	assert.False(t, user.Active)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, model.User{Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, model.User{Email: "alice@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, store.ErrIntegrity)
}

func TestActivateUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	activated, err := s.ActivateUser(ctx, user.ID, user.Version)
	require.NoError(t, err)
	assert.True(t, activated.Active)
	assert.NotEqual(t, user.Version, activated.Version)

	// The original stamp is spent.
	_, err = s.ActivateUser(ctx, user.ID, user.Version)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestUpdateUserPassword(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{Email: "alice@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	updated, err := s.UpdateUserPassword(ctx, user.ID, user.Version, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.PasswordHash)

	_, err = s.UpdateUserPassword(ctx, user.ID, user.Version, "newer")
	assert.ErrorIs(t, err, store.ErrConflict)
}
