package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Postgres wraps the shared *sql.DB handle. The handle is opened once at
// startup and injected into repositories; no package-level connection state.
type Postgres struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL connection and verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{DB: db}, nil
}

// Migrate applies pending migrations from sourceURL (e.g. "file://migrations").
// A database with no pending migrations is not an error.
func Migrate(sourceURL, databaseURL string) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	srcErr, dbErr := m.Close()
	return errors.Join(srcErr, dbErr)
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.DB.Close()
}

// Ping checks if the database is available.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
