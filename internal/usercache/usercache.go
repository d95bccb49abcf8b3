// Package usercache keeps recently loaded accounts in memory so views can
// resolve owner IDs without a query per row. Entries are invalidated
// synchronously by whoever writes the user, never by a timer.
package usercache

import (
	"context"
	"sync"

	"github.com/tvo/listkeeper/internal/model"
)

// Loader is the subset of the store the cache reads through to.
type Loader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Cache is a read-through cache of users keyed by ID. Safe for concurrent
// use.
type Cache struct {
	loader Loader

	mu    sync.Mutex
	users map[string]model.User
}

// New returns an empty cache backed by the given loader.
func New(loader Loader) *Cache {
	return &Cache{
		loader: loader,
		users:  make(map[string]model.User),
	}
}

// Get returns the user with the given ID, loading it on a miss. Load
// errors are returned as-is and nothing is cached for the key.
func (c *Cache) Get(ctx context.Context, id string) (*model.User, error) {
	c.mu.Lock()
	if user, ok := c.users[id]; ok {
		c.mu.Unlock()
		return &user, nil
	}
	c.mu.Unlock()

	user, err := c.loader.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.users[user.ID] = *user
	c.mu.Unlock()
	return user, nil
}

// Put stores a freshly written user, replacing any cached copy.
func (c *Cache) Put(user model.User) {
	c.mu.Lock()
	c.users[user.ID] = user
	c.mu.Unlock()
}

// Invalidate drops the cached copy for the given ID, if any.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.users, id)
	c.mu.Unlock()
}
