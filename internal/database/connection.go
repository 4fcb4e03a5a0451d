package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/wordsrs/internal/config"
)

// Connect opens the configured database and creates the schema if needed.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Type {
	case "postgres":
		return connectPostgres(cfg.DSN)
	case "sqlite", "":
		return connectSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func connectSQLite(path string) (*sqlx.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers, and every connection to
	// :memory: would be a different database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initializeSchema(db, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func connectPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := initializeSchema(db, postgresSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type table struct {
	name string
	ddl  string
}

var sqliteSchema = []table{
	{"learning_items", `
		CREATE TABLE IF NOT EXISTS learning_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL,
			translation TEXT NOT NULL,
			pronunciation TEXT NOT NULL DEFAULT '',
			level_tag INTEGER NOT NULL DEFAULT 1,
			times_seen INTEGER NOT NULL DEFAULT 0,
			times_correct INTEGER NOT NULL DEFAULT 0,
			times_incorrect INTEGER NOT NULL DEFAULT 0,
			last_seen_at TIMESTAMP,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review_due TIMESTAMP,
			UNIQUE(term, level_tag)
		)
	`},
	{"learning_items level index", `
		CREATE INDEX IF NOT EXISTS idx_learning_items_level_due
		ON learning_items (level_tag, next_review_due)
	`},
	{"sessions", `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP,
			goal INTEGER NOT NULL DEFAULT 0,
			words_reviewed INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			incorrect_count INTEGER NOT NULL DEFAULT 0,
			access_tier TEXT NOT NULL
		)
	`},
	{"review_events", `
		CREATE TABLE IF NOT EXISTS review_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL,
			reviewed_at TIMESTAMP NOT NULL,
			quality INTEGER NOT NULL,
			was_correct BOOLEAN NOT NULL,
			response_time_ms INTEGER,
			session_id TEXT,
			FOREIGN KEY (item_id) REFERENCES learning_items(id),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)
	`},
}

var postgresSchema = []table{
	{"learning_items", `
		CREATE TABLE IF NOT EXISTS learning_items (
			id BIGSERIAL PRIMARY KEY,
			term TEXT NOT NULL,
			translation TEXT NOT NULL,
			pronunciation TEXT NOT NULL DEFAULT '',
			level_tag INTEGER NOT NULL DEFAULT 1,
			times_seen INTEGER NOT NULL DEFAULT 0,
			times_correct INTEGER NOT NULL DEFAULT 0,
			times_incorrect INTEGER NOT NULL DEFAULT 0,
			last_seen_at TIMESTAMPTZ,
			ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review_due TIMESTAMPTZ,
			UNIQUE(term, level_tag)
		)
	`},
	{"learning_items level index", `
		CREATE INDEX IF NOT EXISTS idx_learning_items_level_due
		ON learning_items (level_tag, next_review_due)
	`},
	{"sessions", `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			goal INTEGER NOT NULL DEFAULT 0,
			words_reviewed INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			incorrect_count INTEGER NOT NULL DEFAULT 0,
			access_tier TEXT NOT NULL
		)
	`},
	{"review_events", `
		CREATE TABLE IF NOT EXISTS review_events (
			id BIGSERIAL PRIMARY KEY,
			item_id BIGINT NOT NULL REFERENCES learning_items(id),
			reviewed_at TIMESTAMPTZ NOT NULL,
			quality INTEGER NOT NULL,
			was_correct BOOLEAN NOT NULL,
			response_time_ms BIGINT,
			session_id TEXT REFERENCES sessions(id)
		)
	`},
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB, schema []table) error {
	for _, t := range schema {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.name, err)
		}
	}
	return nil
}
