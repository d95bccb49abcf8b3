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

func TestCategoryNamesScopedToList(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	// Same name in another list is fine.
	other, err := s.CreateList(ctx, model.List{Name: "Pantry", OwnerID: f.user.ID})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, f.user.ID, model.Category{ListID: other.ID, Name: "Dairy"})
	require.NoError(t, err)

	// A duplicate within the same list is not.
	_, err = s.CreateCategory(ctx, f.user.ID, model.Category{ListID: f.list.ID, Name: "Dairy"})
	assert.ErrorIs(t, err, store.ErrIntegrity)
}

func TestUpdateCategoryConflict(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	renamed := f.category
	renamed.Name = "Dairy & Eggs"
	updated, err := s.UpdateCategory(ctx, f.user.ID, renamed)
	require.NoError(t, err)
	assert.NotEqual(t, f.category.Version, updated.Version)

	stale := f.category
	stale.Name = "Cheese"
	_, err = s.UpdateCategory(ctx, f.user.ID, stale)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteCategoryRestrict(t *testing.T) {
	s := testutil.NewTestStoreWithMode(t, model.DeleteModeRestrict)
	f := newFixture(t, s)
	ctx := context.Background()

	// Items remain, so the delete is refused.
	err := s.DeleteCategory(ctx, f.user.ID, f.category.ID, f.category.Version)
	assert.ErrorIs(t, err, store.ErrIntegrity)

	// After removing the item the category can go.
	err = s.DeleteItem(ctx, f.user.ID, f.item.ID, f.item.Version)
	require.NoError(t, err)
	err = s.DeleteCategory(ctx, f.user.ID, f.category.ID, f.category.Version)
	require.NoError(t, err)

	categories, err := s.GetCategories(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestDeleteCategoryCascade(t *testing.T) {
	s := testutil.NewTestStoreWithMode(t, model.DeleteModeCascade)
	f := newFixture(t, s)
	ctx := context.Background()

	_, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)

	err = s.DeleteCategory(ctx, f.user.ID, f.category.ID, f.category.Version)
	require.NoError(t, err)

	categories, err := s.GetCategories(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)

	// The items and their state went with it.
	catalog, err := s.GetCatalog(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	assert.Empty(t, catalog)
	warnings, err := s.UncheckedCategories(ctx, f.user.ID, f.list.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestDeleteCategoryConflict(t *testing.T) {
	s := testutil.NewTestStoreWithMode(t, model.DeleteModeCascade)
	f := newFixture(t, s)

	err := s.DeleteCategory(context.Background(), f.user.ID, f.category.ID, model.NewVersion())
	assert.ErrorIs(t, err, store.ErrConflict)
}
