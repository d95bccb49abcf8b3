package usercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
)

// countingLoader serves canned users and counts the loads.
type countingLoader struct {
	users map[string]model.User
	loads int
}

func (l *countingLoader) GetUserByID(_ context.Context, id string) (*model.User, error) {
	l.loads++
	if user, ok := l.users[id]; ok {
		return &user, nil
	}
	return nil, store.ErrNotFound
}

func TestCacheReadThrough(t *testing.T) {
	loader := &countingLoader{users: map[string]model.User{
		"u1": {ID: "u1", Email: "alice@example.com"},
	}}
	cache := New(loader)
	ctx := context.Background()

	user, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 1, loader.loads)

	// Second read is served from memory.
	_, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads)
}

func TestCacheMissNotCached(t *testing.T) {
	loader := &countingLoader{users: map[string]model.User{}}
	cache := New(loader)
	ctx := context.Background()

	_, err := cache.Get(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = cache.Get(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 2, loader.loads)
}

func TestCacheInvalidate(t *testing.T) {
	loader := &countingLoader{users: map[string]model.User{
		"u1": {ID: "u1", Email: "alice@example.com"},
	}}
	cache := New(loader)
	ctx := context.Background()

	_, err := cache.Get(ctx, "u1")
	require.NoError(t, err)

	loader.users["u1"] = model.User{ID: "u1", Email: "alice@new.example.com"}
	cache.Invalidate("u1")

	user, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", user.Email)
	assert.Equal(t, 2, loader.loads)
}

func TestCachePut(t *testing.T) {
	loader := &countingLoader{users: map[string]model.User{}}
	cache := New(loader)

	cache.Put(model.User{ID: "u1", Email: "alice@example.com"})

	user, err := cache.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 0, loader.loads)
}
