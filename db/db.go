package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS competitors (
		name       TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tournaments (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		finished   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT tournaments_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS tournament_competitors (
		tournament_id INT  NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
		competitor    TEXT NOT NULL REFERENCES competitors (name),
		seed          INT  NOT NULL,
		PRIMARY KEY (tournament_id, competitor)
	)`,
	`CREATE TABLE IF NOT EXISTS rounds (
		id            SERIAL PRIMARY KEY,
		tournament_id INT NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
		number        INT NOT NULL CHECK (number > 0),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT rounds_tournament_number_key UNIQUE (tournament_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS duels (
		id           SERIAL PRIMARY KEY,
		round_id     INT  NOT NULL REFERENCES rounds (id) ON DELETE CASCADE,
		competitor_a TEXT NOT NULL REFERENCES competitors (name),
		competitor_b TEXT NOT NULL REFERENCES competitors (name),
		a_wins       INT  NOT NULL DEFAULT 0 CHECK (a_wins >= 0),
		b_wins       INT  NOT NULL DEFAULT 0 CHECK (b_wins >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT chk_duel_distinct CHECK (competitor_a <> competitor_b)
	)`,
	`CREATE INDEX IF NOT EXISTS duels_competitor_a_idx ON duels (competitor_a)`,
	`CREATE INDEX IF NOT EXISTS duels_competitor_b_idx ON duels (competitor_b)`,
}

// Migrate creates the tables and the bye competitor row used by bye duels.
func Migrate(ctx context.Context, db *sql.DB, byeName string) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx, `INSERT INTO competitors (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, byeName)
	if err != nil {
		return fmt.Errorf("failed to insert bye competitor: %w", err)
	}
	return nil
}
