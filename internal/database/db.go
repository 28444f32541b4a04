// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/imposter/internal/config"
	log "github.com/sirupsen/logrus"
)

var DB *pgxpool.Pool

// ConnectDB opens the global pool and pings it.
func ConnectDB(cfg config.PostgresConfig) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	DB = pool
	log.Infof("Connected to database at %s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
	return nil
}

// Close releases the global pool if it was opened.
func Close() {
	if DB != nil {
		DB.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	games_played INT NOT NULL DEFAULT 0,
	times_imposter INT NOT NULL DEFAULT 0,
	imposter_wins INT NOT NULL DEFAULT 0,
	wins INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lobbies (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	host_id UUID,
	settings JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	version BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lobby_players (
	id UUID PRIMARY KEY,
	lobby_id UUID NOT NULL REFERENCES lobbies(id) ON DELETE CASCADE,
	user_id UUID NOT NULL,
	username TEXT NOT NULL,
	join_order INT NOT NULL,
	is_host BOOLEAN NOT NULL DEFAULT false,
	connected BOOLEAN NOT NULL DEFAULT true,
	is_ready BOOLEAN NOT NULL DEFAULT false,
	is_imposter BOOLEAN NOT NULL DEFAULT false,
	is_eliminated BOOLEAN NOT NULL DEFAULT false,
	is_spectating BOOLEAN NOT NULL DEFAULT false,
	vote_target UUID,
	ready_for_voting BOOLEAN NOT NULL DEFAULT false,
	ready_for_next_round BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS game_states (
	lobby_id UUID PRIMARY KEY REFERENCES lobbies(id) ON DELETE CASCADE,
	phase TEXT NOT NULL,
	current_word TEXT,
	speaking_order JSONB,
	votes_revealed BOOLEAN NOT NULL DEFAULT false,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lobby_events (
	lobby_id UUID NOT NULL,
	event_index INT NOT NULL,
	actor_user_id UUID,
	event_type TEXT NOT NULL,
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (lobby_id, event_index)
);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context) error {
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
