package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/tests/testutil"
)

// fixture is a user with a list holding one category and one item.
type fixture struct {
	user     model.User
	list     model.List
	category model.Category
	item     model.Item
}

func newFixture(t *testing.T, s *store.SQLiteStore) fixture {
	t.Helper()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{
		Email:        "owner@example.com",
		PasswordHash: "x",
		Active:       true,
	})
	require.NoError(t, err)

	list, err := s.CreateList(ctx, model.List{Name: "Groceries", OwnerID: user.ID})
	require.NoError(t, err)

	category, err := s.CreateCategory(ctx, user.ID, model.Category{
		ListID: list.ID,
		Name:   "Dairy",
	})
	require.NoError(t, err)

	item, err := s.CreateItem(ctx, user.ID, model.Item{
		CategoryID: category.ID,
		Name:       "Milk",
	})
	require.NoError(t, err)

	return fixture{user: *user, list: *list, category: *category, item: *item}
}

func TestToggleListCategory(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	// Toggle on: the client believes the association is absent.
	assoc, err := s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)
	require.NotNil(t, assoc)
	assert.NotEqual(t, model.VersionAbsent, assoc.Version)

	// Replaying the same request must not toggle again.
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	assert.ErrorIs(t, err, store.ErrConflict)

	// A stale stamp is rejected the same way.
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.NewVersion())
	assert.ErrorIs(t, err, store.ErrConflict)

	// Toggle off with the current stamp removes the association.
	removed, err := s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, assoc.Version)
	require.NoError(t, err)
	assert.Nil(t, removed)

	// And the off request cannot be replayed either.
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, assoc.Version)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestToggleListCategoryWrongList(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	other, err := s.CreateList(ctx, model.List{Name: "Chores", OwnerID: f.user.ID})
	require.NoError(t, err)

	_, err = s.ToggleListCategory(ctx, f.user.ID, other.ID, f.category.ID, model.VersionAbsent)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleListItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	state, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.TypeSelection, state.Type)
	assert.False(t, state.Selection)
	assert.True(t, state.Number.IsZero())
	assert.Empty(t, state.Text)

	_, err = s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	assert.ErrorIs(t, err, store.ErrConflict)

	removed, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestAdvanceListItemType(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	// none -> selection creates the row.
	state, err := s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.TypeSelection, state.Type)

	// selection -> number.
	state, err = s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Equal(t, model.TypeNumber, state.Type)

	// number -> text.
	state, err = s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Equal(t, model.TypeText, state.Type)

	// text -> none deletes the row.
	gone, err := s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// A fresh lap starts over with default payloads.
	state, err = s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.TypeSelection, state.Type)
	assert.False(t, state.Selection)
	assert.True(t, state.Number.IsZero())
	assert.Empty(t, state.Text)
}

func TestPayloadsSurviveTypeChanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	state, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)

	state, err = s.SetListItemSelection(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.True(t, state.Selection)

	state, err = s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Equal(t, model.TypeNumber, state.Type)
	assert.True(t, state.Selection, "selection payload survives leaving the selection type")

	state, err = s.SetListItemNumber(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version,
		decimal.NewFromInt(7), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "7", state.Number.String())

	state, err = s.AdvanceListItemType(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version)
	require.NoError(t, err)
	assert.Equal(t, model.TypeText, state.Type)
	assert.Equal(t, "7", state.Number.String(), "number payload survives leaving the number type")

	state, err = s.SetListItemText(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version, "skim")
	require.NoError(t, err)

	assert.True(t, state.Selection)
	assert.Equal(t, "7", state.Number.String())
	assert.Equal(t, "skim", state.Text)
}

func TestSetListItemNumberDelta(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	state, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)

	state, err = s.SetListItemNumber(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version,
		decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "5", state.Number.String())

	state, err = s.SetListItemNumber(ctx, f.user.ID, f.list.ID, f.item.ID, state.Version,
		state.Number, decimal.NewFromInt(-1))
	require.NoError(t, err)
	assert.Equal(t, "4", state.Number.String())
}

func TestSettersRequireExistingRow(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	// No state row yet: a client claiming a stamp is out of date.
	_, err := s.SetListItemSelection(ctx, f.user.ID, f.list.ID, f.item.ID, model.NewVersion())
	assert.ErrorIs(t, err, store.ErrConflict)

	// The absent sentinel makes no sense for a payload write.
	_, err = s.SetListItemText(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent, "x")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestConcurrentToggleSingleWinner(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, store.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer may create the association")
}

func TestUncheckedCategories(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	// Item in the list, category not checked: warn.
	_, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)

	warnings, err := s.UncheckedCategories(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, f.category.ID, warnings[0].ID)

	// Checking the category clears the warning.
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)

	warnings, err = s.UncheckedCategories(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestGetListEntries(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	bakery, err := s.CreateCategory(ctx, f.user.ID, model.Category{
		ListID: f.list.ID,
		Name:   "Bakery",
	})
	require.NoError(t, err)
	bread, err := s.CreateItem(ctx, f.user.ID, model.Item{
		CategoryID: bakery.ID,
		Name:       "Bread",
	})
	require.NoError(t, err)

	// Both items get state rows, but only Bakery is checked.
	_, err = s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	_, err = s.ToggleListItem(ctx, f.user.ID, f.list.ID, bread.ID, model.VersionAbsent)
	require.NoError(t, err)
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, bakery.ID, model.VersionAbsent)
	require.NoError(t, err)

	entries, err := s.GetListEntries(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bread", entries[0].Item.Name)
	assert.Equal(t, "Bakery", entries[0].Category.Name)
	assert.Equal(t, model.TypeSelection, entries[0].State.Type)

	// Checking Dairy too makes both visible, ordered by category name.
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)

	entries, err = s.GetListEntries(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bakery", entries[0].Category.Name)
	assert.Equal(t, "Dairy", entries[1].Category.Name)
}

func TestGetCatalog(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	state, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	assoc, err := s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)

	catalog, err := s.GetCatalog(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	cc := catalog[0]
	assert.Equal(t, f.category.ID, cc.Category.ID)
	require.NotNil(t, cc.Checked)
	assert.Equal(t, assoc.Version, cc.Checked.Version)

	require.Len(t, cc.Items, 1)
	require.NotNil(t, cc.Items[0].State)
	assert.Equal(t, state.Version, cc.Items[0].State.Version)
	assert.Equal(t, model.TypeSelection, cc.Items[0].State.Type)
}
