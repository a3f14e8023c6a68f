package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/db"

	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
