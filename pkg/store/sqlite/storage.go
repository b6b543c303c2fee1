package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const SessionAttributesSchema = `
	CREATE TABLE IF NOT EXISTS session_attributes (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
`

const SessionExpiryIndex = `
	CREATE INDEX IF NOT EXISTS idx_session_attributes_expires_at ON session_attributes(expires_at);
`

var bootQueries = []string{
	SessionAttributesSchema,
	SessionExpiryIndex,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath != ":memory:" {
		if dir := filepath.Dir(settings.DbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", settings.DbPath)
	if err != nil {
		return nil, err
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	for _, query := range bootQueries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run boot query: %w", err)
		}
	}
	return db, nil
}
