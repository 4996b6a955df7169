package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSQLitePath = "weight_tracker.db"

// Database describes which store to open and how.
type Database struct {
	Driver string
	DSN    string
}

// ParseDatabaseURL turns a DATABASE_URL value into a driver name and a DSN
// the driver understands. An empty value selects the development SQLite file.
func ParseDatabaseURL(raw string) (Database, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return sqliteDatabase(defaultSQLitePath), nil
	case strings.HasPrefix(raw, "sqlite:///"):
		return sqliteDatabase(strings.TrimPrefix(raw, "sqlite:///")), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteDatabase(strings.TrimPrefix(raw, "sqlite://")), nil
	case strings.HasPrefix(raw, "file:"):
		return sqliteDatabase(strings.TrimPrefix(raw, "file:")), nil
	case strings.HasPrefix(raw, "postgresql://"):
		return postgresDatabase("postgres://" + strings.TrimPrefix(raw, "postgresql://"))
	case strings.HasPrefix(raw, "postgres://"):
		return postgresDatabase(raw)
	}
	return Database{}, fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(raw))
}

func sqliteDatabase(path string) Database {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = defaultSQLitePath
	}
	return Database{
		Driver: DriverSQLite,
		DSN:    "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
	}
}

func postgresDatabase(raw string) (Database, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Database{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return Database{Driver: DriverPostgres, DSN: u.String()}, nil
}

// redact hides credentials before a URL ends up in an error or a log line.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
