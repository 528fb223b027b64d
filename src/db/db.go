package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zillorz/svue-api/src/config"

	_ "github.com/lib/pq"
)

// DB represents the database connection used by the response cache.
type DB struct {
	conn *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS gradebook_cache (
    user_hash     TEXT        NOT NULL,
    report_period INTEGER     NOT NULL,
    payload       JSONB       NOT NULL,
    fetched_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_hash, report_period)
);
CREATE INDEX IF NOT EXISTS gradebook_cache_fetched_at_idx
    ON gradebook_cache (fetched_at);
`

// NewDB creates a new database connection and bootstraps the cache schema.
func NewDB(cfg *config.GlobalConfig) (*DB, error) {
	dbConfig := cfg.GetDatabaseConfig()
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.GetHost(),
		dbConfig.GetPort(),
		dbConfig.GetUser(),
		dbConfig.GetPassword(),
		dbConfig.GetDBName(),
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL database",
		"host", dbConfig.GetHost(),
		"port", dbConfig.GetPort(),
		"database", dbConfig.GetDBName())

	if _, err := conn.ExecContext(ctx, cacheSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// GetConnection returns the underlying sql.DB connection
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
