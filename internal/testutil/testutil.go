// Package testutil provides shared test helpers for setting up workspaces and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/havenfs/internal/index"
	"github.com/starford/havenfs/internal/storage"
)

// Extension is the description file suffix used by test workspaces.
const Extension = ".havenfs"

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "haven-test-*.db")
	require.NoError(t, err)
	require.NoError(t, dbFile.Close())
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, Extension)
	require.NoError(t, err)
	return dir, store
}
