package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the record store for users, wrappers, prompts, integrations and
// conversations. Identity generation and creation timestamps belong to the
// store; callers never supply them.
type Store struct {
	db     *sql.DB
	driver string
	sql    sq.StatementBuilderType
}

// Open connects to the datastore and optionally applies migrations.
// Supported drivers are postgres (pgx) and sqlite (modernc).
func Open(ctx context.Context, driver, dsn string, autoMigrate bool) (*Store, error) {
	driver = normalizeDriver(driver)
	if dsn == "" {
		return nil, fmt.Errorf("dsn is empty")
	}

	sqlDriver := driver
	if driver == "postgres" {
		sqlDriver = "pgx"
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == "sqlite" {
		// modernc sqlite gives every pooled connection its own :memory:
		// database; one connection keeps the schema visible everywhere.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if autoMigrate {
		if err := Migrate(ctx, db, driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == "postgres" {
		placeholder = sq.Dollar
	}

	return &Store{
		db:     db,
		driver: driver,
		sql:    sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Migrate brings the schema up to date. Postgres goes through goose with the
// embedded migration files; sqlite applies the schema directly.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	switch normalizeDriver(driver) {
	case "postgres":
		goose.SetBaseFS(migrationsFS)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("set goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	case "sqlite":
		if err := initSQLiteSchema(ctx, db); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
}

func normalizeDriver(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch d {
	case "postgres", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return d
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func initSQLiteSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS wrappers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    base_model TEXT NOT NULL,
    system_prompt TEXT NOT NULL DEFAULT '',
    temperature INTEGER NOT NULL DEFAULT 70,
    max_tokens INTEGER NOT NULL DEFAULT 2048,
    top_p INTEGER NOT NULL DEFAULT 90,
    enable_memory INTEGER NOT NULL DEFAULT 1,
    knowledge_base_integration INTEGER NOT NULL DEFAULT 0,
    web_search_access INTEGER NOT NULL DEFAULT 0,
    user_id INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS prompts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    content TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    wrapper_id INTEGER NOT NULL,
    tags_json TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS integrations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    config_json TEXT NOT NULL DEFAULT '{}',
    wrapper_id INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    wrapper_id INTEGER NOT NULL,
    messages_json TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wrappers_user_id ON wrappers(user_id);
CREATE INDEX IF NOT EXISTS idx_prompts_wrapper_id ON prompts(wrapper_id);
CREATE INDEX IF NOT EXISTS idx_integrations_wrapper_id ON integrations(wrapper_id);
CREATE INDEX IF NOT EXISTS idx_conversations_wrapper_id ON conversations(wrapper_id);
INSERT OR IGNORE INTO users (id, username, password_hash) VALUES (1, 'demo', '');
`
	_, err := db.ExecContext(ctx, schema)
	return err
}
