package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/isdelr/weight-tracker-be/internal/config"
	"github.com/isdelr/weight-tracker-be/internal/database/migrations"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Querier is the subset of *sql.DB and *sql.Tx the services run queries on.
// Queries are written with ? placeholders; Rebind adapts them to the dialect.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Rebind(query string) string
}

// ErrLegacySchema is returned by Migrate for a SQLite file whose client
// table already has a user_id column but no migration history.
var ErrLegacySchema = errors.New("database: legacy schema without migration history")

// DB is a connection pool bound to one SQL dialect.
type DB struct {
	*sql.DB
	Dialect string

	migrateMu sync.Mutex
	migrated  atomic.Bool
}

// New opens a connection pool for the configured store. It does not contact
// the database; call PingContext to check reachability.
func New(cfg config.Database) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	return &DB{DB: db, Dialect: cfg.Driver}, nil
}

// Rebind rewrites ? placeholders into the dialect's form.
func (db *DB) Rebind(query string) string {
	return rebind(db.Dialect, query)
}

// EnsureSchema applies migrations the first time the store answers a ping.
// Once that succeeds, later calls return immediately.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db.migrated.Load() {
		return nil
	}
	db.migrateMu.Lock()
	defer db.migrateMu.Unlock()
	if db.migrated.Load() {
		return nil
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return Migrate(db)
}

// Migrate applies any pending embedded migrations for the pool's dialect.
func Migrate(db *DB) error {
	var (
		driver migratedb.Driver
		err    error
	)
	switch db.Dialect {
	case config.DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	case config.DriverPostgres:
		driver, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	default:
		err = fmt.Errorf("no migrations for dialect %q", db.Dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, db.Dialect)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, db.Dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	if db.Dialect == config.DriverSQLite {
		if err := checkLegacySchema(db, instance); err != nil {
			return err
		}
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	db.migrated.Store(true)
	return nil
}

// checkLegacySchema refuses SQLite files where client.user_id was added
// outside the migrations. SQLite has no ADD COLUMN IF NOT EXISTS, so
// 0002_client_owner would fail halfway on them.
func checkLegacySchema(db *DB, instance *migrate.Migrate) error {
	version, _, err := instance.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case version >= 2:
		return nil
	}

	var columns int
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('client') WHERE name = 'user_id'").Scan(&columns)
	if err != nil {
		return fmt.Errorf("failed to inspect client table: %w", err)
	}
	if columns > 0 {
		return fmt.Errorf("%w: client.user_id already exists; import the data into a fresh database", ErrLegacySchema)
	}
	return nil
}

func rebind(dialect, query string) string {
	if dialect != config.DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
