package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/weight-tracker-be/internal/config"
	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/database/dbtest"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &database.DB{Dialect: config.DriverPostgres}
	require.Equal(t,
		"SELECT id FROM client WHERE id = $1 AND user_id = $2",
		pg.Rebind("SELECT id FROM client WHERE id = ? AND user_id = ?"))

	lite := &database.DB{Dialect: config.DriverSQLite}
	require.Equal(t, "SELECT 1 WHERE ? = ?", lite.Rebind("SELECT 1 WHERE ? = ?"))
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	_, err := database.New(config.Database{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
}

func TestMigrate_CreatesSchemaAndIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	for _, table := range []string{"account", "client", "weight_entry", "session"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// client.user_id is nullable for rows that predate accounts.
	_, err := db.ExecContext(ctx, "INSERT INTO client (name, email, created_at) VALUES ('Legacy', 'legacy@x.com', CURRENT_TIMESTAMP)")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := dbtest.New(t)
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO weight_entry (weight, date, client_id) VALUES (70, '2024-01-01', 999)")
	require.Error(t, err)
}

func TestMapError(t *testing.T) {
	require.NoError(t, database.MapError(nil))
	require.ErrorIs(t, database.MapError(sql.ErrNoRows), database.ErrNotFound)
	require.ErrorIs(t, database.MapError(fmt.Errorf("scan: %w", sql.ErrNoRows)), database.ErrNotFound)
	require.ErrorIs(t, database.MapError(&pq.Error{Code: "23505", Constraint: "client_email_key"}), database.ErrConflict)

	other := errors.New("connection refused")
	require.Equal(t, other, database.MapError(other))
	require.NotErrorIs(t, database.MapError(&pq.Error{Code: "23503"}), database.ErrConflict)
}

func TestMapError_SQLiteUniqueViolation(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	insert := "INSERT INTO account (username, email, password_hash, created_at) VALUES (?, ?, 'x', CURRENT_TIMESTAMP)"
	_, err := db.ExecContext(ctx, insert, "alice", "a@x.com")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "alice", "other@x.com")
	require.ErrorIs(t, database.MapError(err), database.ErrConflict)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{DB: mockDB, Dialect: config.DriverSQLite}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM weight_entry").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM client").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = db.WithTx(context.Background(), func(tx *database.Tx) error {
		if _, err := tx.ExecContext(context.Background(), "DELETE FROM weight_entry WHERE client_id = ?", 1); err != nil {
			return err
		}
		_, err := tx.ExecContext(context.Background(), "DELETE FROM client WHERE id = ?", 1)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{DB: mockDB, Dialect: config.DriverSQLite}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM weight_entry").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM client").WithArgs(1).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = db.WithTx(context.Background(), func(tx *database.Tx) error {
		if _, err := tx.ExecContext(context.Background(), "DELETE FROM weight_entry WHERE client_id = ?", 1); err != nil {
			return err
		}
		_, err := tx.ExecContext(context.Background(), "DELETE FROM client WHERE id = ?", 1)
		return err
	})
	require.EqualError(t, err, "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{DB: mockDB, Dialect: config.DriverSQLite}

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = db.WithTx(context.Background(), func(tx *database.Tx) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_RebindFollowsPoolDialect(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{DB: mockDB, Dialect: config.DriverPostgres}

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = db.WithTx(context.Background(), func(tx *database.Tx) error {
		require.Equal(t, "DELETE FROM session WHERE id = $1", tx.Rebind("DELETE FROM session WHERE id = ?"))
		return nil
	})
	require.NoError(t, err)
}

// openUnmigrated returns a SQLite pool in the test's temp dir without
// applying migrations.
func openUnmigrated(t *testing.T) *database.DB {
	t.Helper()
	cfg, err := config.ParseDatabaseURL("sqlite:///" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEnsureSchema_WaitsForReachableStore(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{DB: mockDB, Dialect: config.DriverSQLite}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err = db.EnsureSchema(context.Background())
	require.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_MigratesOnce(t *testing.T) {
	db := openUnmigrated(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureSchema(ctx))

	var name string
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'weight_entry'").Scan(&name))

	// A closed pool would fail a second ping or migration.
	require.NoError(t, db.Close())
	require.NoError(t, db.EnsureSchema(ctx))
}

func TestMigrate_RefusesLegacyClientOwnerColumn(t *testing.T) {
	db := openUnmigrated(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE client (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(120) NOT NULL UNIQUE,
		created_at DATETIME,
		user_id INTEGER
	)`)
	require.NoError(t, err)

	err = database.Migrate(db)
	require.ErrorIs(t, err, database.ErrLegacySchema)

	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'account'").Scan(&tables))
	require.Zero(t, tables, "no migration should have run")
}
