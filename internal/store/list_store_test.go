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

func createUser(t *testing.T, s *store.SQLiteStore, email string) model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), model.User{
		Email:        email,
		PasswordHash: "x",
		Active:       true,
	})
	require.NoError(t, err)
	return *user
}

func TestListVisibility(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	private, err := s.CreateList(ctx, model.List{Name: "Diary", OwnerID: alice.ID, Private: true})
	require.NoError(t, err)
	public, err := s.CreateList(ctx, model.List{Name: "Party", OwnerID: alice.ID})
	require.NoError(t, err)

	// The owner sees both.
	got, err := s.GetList(ctx, alice.ID, private.ID)
	require.NoError(t, err)
	assert.Equal(t, "Diary", got.Name)

	// Another user sees the private list as missing, not as forbidden.
	_, err = s.GetList(ctx, bob.ID, private.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.GetList(ctx, bob.ID, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Party", got.Name)

	lists, err := s.GetLists(ctx, bob.ID, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, public.ID, lists[0].ID)
}

func TestListVisibilityCoversChildren(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	private, err := s.CreateList(ctx, model.List{Name: "Diary", OwnerID: alice.ID, Private: true})
	require.NoError(t, err)
	category, err := s.CreateCategory(ctx, alice.ID, model.Category{ListID: private.ID, Name: "Secrets"})
	require.NoError(t, err)
	item, err := s.CreateItem(ctx, alice.ID, model.Item{CategoryID: category.ID, Name: "Entry"})
	require.NoError(t, err)

	_, err = s.GetCategories(ctx, bob.ID, private.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetItems(ctx, bob.ID, category.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.ToggleListItem(ctx, bob.ID, private.ID, item.ID, model.VersionAbsent)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetCatalog(ctx, bob.ID, private.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateListConflict(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")

	list, err := s.CreateList(ctx, model.List{Name: "Groceries", OwnerID: alice.ID})
	require.NoError(t, err)

	// First rename wins and refreshes the stamp.
	renamed := *list
	renamed.Name = "Weekly groceries"
	updated, err := s.UpdateList(ctx, alice.ID, renamed)
	require.NoError(t, err)
	assert.NotEqual(t, list.Version, updated.Version)

	// A second write presenting the old stamp loses.
	stale := *list
	stale.Name = "Monthly groceries"
	_, err = s.UpdateList(ctx, alice.ID, stale)
	assert.ErrorIs(t, err, store.ErrConflict)

	// The losing write left no trace.
	got, err := s.GetList(ctx, alice.ID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly groceries", got.Name)
}

func TestListNameUnique(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")

	_, err := s.CreateList(ctx, model.List{Name: "Groceries", OwnerID: alice.ID})
	require.NoError(t, err)
	_, err = s.CreateList(ctx, model.List{Name: "Groceries", OwnerID: alice.ID})
	assert.ErrorIs(t, err, store.ErrIntegrity)
}

func TestGetListsFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	_, err := s.CreateList(ctx, model.List{Name: "Groceries", OwnerID: alice.ID})
	require.NoError(t, err)
	_, err = s.CreateList(ctx, model.List{Name: "Gifts", OwnerID: bob.ID})
	require.NoError(t, err)
	_, err = s.CreateList(ctx, model.List{Name: "Chores", OwnerID: bob.ID})
	require.NoError(t, err)

	query := "G"
	lists, err := s.GetLists(ctx, alice.ID, store.ListFilter{Query: &query})
	require.NoError(t, err)
	assert.Len(t, lists, 2)

	lists, err = s.GetLists(ctx, alice.ID, store.ListFilter{OwnerOnly: true})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Groceries", lists[0].Name)

	lists, err = s.GetLists(ctx, alice.ID, store.ListFilter{SortDesc: true})
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, "Groceries", lists[0].Name)
}

func TestDeleteListCleansUp(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := newFixture(t, s)
	ctx := context.Background()

	_, err := s.ToggleListItem(ctx, f.user.ID, f.list.ID, f.item.ID, model.VersionAbsent)
	require.NoError(t, err)
	_, err = s.ToggleListCategory(ctx, f.user.ID, f.list.ID, f.category.ID, model.VersionAbsent)
	require.NoError(t, err)

	// Deleting with a stale stamp is refused.
	err = s.DeleteList(ctx, f.user.ID, f.list.ID, model.NewVersion())
	assert.ErrorIs(t, err, store.ErrConflict)

	err = s.DeleteList(ctx, f.user.ID, f.list.ID, f.list.Version)
	require.NoError(t, err)

	_, err = s.GetList(ctx, f.user.ID, f.list.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetItems(ctx, f.user.ID, f.category.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
