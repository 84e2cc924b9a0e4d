// Package db is the Postgres persistence layer: registered users, pending
// registration requests and the daily reports themselves. Report value
// columns are derived from the declared field schema, so adding a field to
// fields.yaml grows the table on the next boot.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/user/report-bot/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

type Manager struct {
	db     *sql.DB
	schema *schema.Schema
	loc    *time.Location
}

// NewManager opens the connection pool and verifies it. The location fixes
// which wall clock decides when one report day ends and the next begins.
func NewManager(databaseURL string, s *schema.Schema, loc *time.Location) (*Manager, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is not set")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Manager{db: db, schema: s, loc: loc}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// InitSchema creates the base tables and then reconciles the reports table
// with the declared field schema, adding a column per missing field.
func (m *Manager) InitSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	for _, f := range m.schema.Fields() {
		stmt := fmt.Sprintf(
			"ALTER TABLE reports ADD COLUMN IF NOT EXISTS %s %s",
			f.Key, columnType(f.Kind),
		)
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add report column %s: %w", f.Key, err)
		}
	}

	return nil
}

// columnType maps a field kind to its column definition. Field keys pass
// the schema loader's identifier check, so interpolating them is safe.
func columnType(k schema.Kind) string {
	if k == schema.Numeric {
		return "INTEGER NOT NULL DEFAULT 0"
	}
	return "TEXT NOT NULL DEFAULT ''"
}

// today returns the current report date in the configured location.
func (m *Manager) today() string {
	return time.Now().In(m.loc).Format("2006-01-02")
}
