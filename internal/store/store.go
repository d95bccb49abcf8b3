// Package store defines the persistence contract for lists, categories,
// items, and their versioned associations. Every mutation is a
// read-check-write against a client-supplied version stamp; a stale stamp
// aborts the write with ErrConflict and leaves stored state untouched.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tvo/listkeeper/internal/model"
)

var (
	// ErrNotFound indicates a referenced row is missing, or resolves but
	// fails the visibility check. The two causes are deliberately not
	// distinguishable.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the client's version stamp does not match the
	// stored one (or disagrees about the row's existence). The caller
	// should re-read current state and re-present the operation.
	ErrConflict = errors.New("concurrent modification")
	// ErrIntegrity indicates a uniqueness constraint was violated or a
	// delete was refused because dependents still exist.
	ErrIntegrity = errors.New("integrity constraint violated")
	// ErrInvalidInput indicates a structurally invalid request (missing id,
	// stamp, or value), rejected before any store access.
	ErrInvalidInput = errors.New("missing or invalid input")
)

// ListFilter controls filtering and sorting for list queries.
type ListFilter struct {
	OwnerOnly bool    // only lists owned by the requesting user
	Query     *string // search list names
	SortBy    string  // "name" (default)
	SortDesc  bool
	Limit     int
	Offset    int
}

// CatalogItem pairs an item with its per-list state. State is nil when the
// item has no row in the list.
type CatalogItem struct {
	Item  model.Item
	State *model.ListItem
}

// CatalogCategory is one category of a list's catalog together with its
// checked association (nil when unchecked) and its items.
type CatalogCategory struct {
	Category model.Category
	Checked  *model.ListCategory
	Items    []CatalogItem
}

// ListEntry is one visible row of an opened checklist: an item whose state
// row exists and whose category is checked in the list.
type ListEntry struct {
	Category model.Category
	Item     model.Item
	State    model.ListItem
}

// Store is the persistence interface for users, lists, and the toggle
// engine. All reads and writes that touch a list consult the visibility
// filter for the given user id; inaccessible lists behave as missing.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ActivateUser(ctx context.Context, id, version string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, version, passwordHash string) (*model.User, error)

	// === Lists ===

	CreateList(ctx context.Context, list model.List) (*model.List, error)
	GetList(ctx context.Context, userID, listID string) (*model.List, error)
	GetLists(ctx context.Context, userID string, filter ListFilter) ([]model.List, error)
	UpdateList(ctx context.Context, userID string, list model.List) (*model.List, error)
	DeleteList(ctx context.Context, userID, listID, version string) error

	// === Categories ===

	CreateCategory(ctx context.Context, userID string, category model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, userID string, category model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID, version string) error
	GetCategories(ctx context.Context, userID, listID string) ([]model.Category, error)

	// === Items ===

	CreateItem(ctx context.Context, userID string, item model.Item) (*model.Item, error)
	UpdateItem(ctx context.Context, userID string, item model.Item) (*model.Item, error)
	DeleteItem(ctx context.Context, userID, itemID, version string) error
	GetItems(ctx context.Context, userID, categoryID string) ([]model.Item, error)

	// === Toggle engine ===

	// ToggleListCategory flips the presence of a category-in-list
	// association. Returns the new association, or nil when the toggle
	// removed it.
	ToggleListCategory(ctx context.Context, userID, listID, categoryID, clientVersion string) (*model.ListCategory, error)

	// ToggleListItem flips the presence of an item's state row. A created
	// row starts as a selection with default payloads. Returns nil when
	// the toggle removed the row.
	ToggleListItem(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error)

	// AdvanceListItemType moves the item's state one step along the ring
	// none -> selection -> number -> text -> none. Returns nil when the
	// cycle reached none and the row was deleted.
	AdvanceListItemType(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error)

	// Payload setters; each is an independent conflict-checked write that
	// leaves the type untouched.
	SetListItemSelection(ctx context.Context, userID, listID, itemID, clientVersion string) (*model.ListItem, error)
	SetListItemNumber(ctx context.Context, userID, listID, itemID, clientVersion string, number, toAdd decimal.Decimal) (*model.ListItem, error)
	SetListItemText(ctx context.Context, userID, listID, itemID, clientVersion, text string) (*model.ListItem, error)

	// === Read side ===

	GetCatalog(ctx context.Context, userID, listID string) ([]CatalogCategory, error)
	GetListEntries(ctx context.Context, userID, listID string) ([]ListEntry, error)

	// UncheckedCategories returns categories that have items with state
	// rows in the list but are not themselves checked, so their items are
	// invisible in the opened checklist. Informational only.
	UncheckedCategories(ctx context.Context, userID, listID string) ([]model.Category, error)
}
