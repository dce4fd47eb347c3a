package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens the platform DB and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:lumenlms.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/lumenlms?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// SQLite has a single writer; keep the pool tiny to avoid busy errors.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the platform tables when missing. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS external_tools (
  client_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  login_url TEXT NOT NULL DEFAULT '',
  launch_uri TEXT NOT NULL,
  deployment_id TEXT NOT NULL DEFAULT '1',
  username_field TEXT NOT NULL DEFAULT 'ANON_ID',
  key_id TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  token TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  slug TEXT NOT NULL,
  run TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL DEFAULT '',
  anon_id TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS enrollments (
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  active INTEGER NOT NULL DEFAULT 1,
  PRIMARY KEY (user_id, course_id)
);

CREATE TABLE IF NOT EXISTS tool_views (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  client_id TEXT NOT NULL REFERENCES external_tools(client_id) ON DELETE CASCADE,
  resource_link_id TEXT NOT NULL UNIQUE,
  launch_type TEXT NOT NULL DEFAULT 'iframe',
  custom_target_uri TEXT NOT NULL DEFAULT '',
  append_custom_target INTEGER NOT NULL DEFAULT 0,
  return_url TEXT NOT NULL DEFAULT ''
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS external_tools (
  client_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  login_url TEXT NOT NULL DEFAULT '',
  launch_uri TEXT NOT NULL,
  deployment_id TEXT NOT NULL DEFAULT '1',
  username_field TEXT NOT NULL DEFAULT 'ANON_ID',
  key_id TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id BIGSERIAL PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  slug TEXT NOT NULL,
  run TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL DEFAULT '',
  anon_id TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS enrollments (
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  PRIMARY KEY (user_id, course_id)
);

CREATE TABLE IF NOT EXISTS tool_views (
  id BIGSERIAL PRIMARY KEY,
  course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  client_id TEXT NOT NULL REFERENCES external_tools(client_id) ON DELETE CASCADE,
  resource_link_id TEXT NOT NULL UNIQUE,
  launch_type TEXT NOT NULL DEFAULT 'iframe',
  custom_target_uri TEXT NOT NULL DEFAULT '',
  append_custom_target BOOLEAN NOT NULL DEFAULT FALSE,
  return_url TEXT NOT NULL DEFAULT ''
);
`
