// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/isdelr/weight-tracker-be/internal/config"
	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/stretchr/testify/require"
)

// New returns a migrated SQLite database in the test's temp dir. It is
// closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()

	cfg, err := config.ParseDatabaseURL("sqlite:///" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
