package dal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// PostgresDAL implements RosterDAL using PostgreSQL
type PostgresDAL struct {
	sqlRoster
}

// PostgresOptions tunes how NewPostgresDAL waits for the database.
type PostgresOptions struct {
	MaxRetries  int
	RetryDelay  time.Duration
	PingTimeout time.Duration
}

// DefaultPostgresOptions tolerates slow DNS and failovers in Kubernetes.
func DefaultPostgresOptions() PostgresOptions {
	return PostgresOptions{
		MaxRetries:  5,
		RetryDelay:  5 * time.Second,
		PingTimeout: 30 * time.Second,
	}
}

// NewPostgresDAL connects with the default retry policy.
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	return NewPostgresDALWithOptions(connString, DefaultPostgresOptions())
}

func NewPostgresDALWithOptions(connString string, opts PostgresOptions) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	var lastErr error
	for i := 0; i < opts.MaxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			break
		}
		logger.Warn("Postgres not reachable yet", "attempt", i+1, "error", lastErr)
		if i < opts.MaxRetries-1 {
			time.Sleep(opts.RetryDelay)
		}
	}
	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", opts.MaxRetries, lastErr)
	}

	dal := &PostgresDAL{sqlRoster{db: db, numbered: true}}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS team_presets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		game_length TEXT NOT NULL,
		match_length TEXT NOT NULL,
		style TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	ALTER TABLE match_settings ADD COLUMN IF NOT EXISTS subtitles BOOLEAN NOT NULL DEFAULT false;

	CREATE INDEX IF NOT EXISTS idx_team_presets_name ON team_presets(name);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return p.seedIfEmpty()
}
