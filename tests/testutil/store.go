package testutil

import (
	"path/filepath"
	"testing"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
)

// NewTestStore creates a SQLiteStore on a throwaway database file with all
// migrations applied and the restrict delete mode. It automatically closes
// the store when the test completes.
//
// A file, not :memory:, because the pool may hand different connections to
// concurrent transactions and each in-memory connection is its own database.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return NewTestStoreWithMode(t, model.DeleteModeRestrict)
}

// NewTestStoreWithMode is NewTestStore with an explicit category delete mode.
func NewTestStoreWithMode(t *testing.T, deleteMode string) *store.SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "listkeeper.db")
	s, err := store.NewSQLiteStore(dbPath, deleteMode)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
