package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/smarttransit/bus-booking/internal/config"
)

// PostgresDB wraps the sqlx connection pool
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (*PostgresDB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Add idle timeout to prevent stale connections
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// bookingsSchema creates the bookings table. ticket_number is unique so generated ids can never collide silently.
const bookingsSchema = `
	CREATE TABLE IF NOT EXISTS bookings (
		id            UUID PRIMARY KEY,
		seats         INTEGER NOT NULL CHECK (seats >= 1),
		departure     TEXT NOT NULL,
		arrival       TEXT NOT NULL,
		phone         TEXT NOT NULL,
		email         TEXT NOT NULL,
		booking_date  TEXT NOT NULL,
		booking_time  TEXT NOT NULL,
		payment_id    TEXT NOT NULL,
		ticket_number TEXT NOT NULL UNIQUE,
		source        TEXT NOT NULL DEFAULT 'web',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// EnsureSchema creates the bookings table if it does not exist
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, bookingsSchema); err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}
	return nil
}
