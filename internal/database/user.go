// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/imposter/internal/models"
)

const userColumns = `id, username, password, games_played, times_imposter, imposter_wins, wins, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password,
		&u.GamesPlayed, &u.TimesImposter, &u.ImposterWins, &u.Wins, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts a user whose Password already holds the hash. A taken username
// yields models.ErrConflict.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	q := `INSERT INTO users (id, username, password) VALUES ($1, $2, $3) RETURNING created_at`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, user.ID, user.Username, user.Password).Scan(&user.CreatedAt)
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w: %v", models.ErrStorage, err)
	}
	return nil
}

// GetUserByUsername looks a user up case-insensitively.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return scanUser(DB.QueryRow(ctx, q, username))
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(DB.QueryRow(ctx, q, id))
}

// RecordGameStats applies one statistics delta; see models.User.ApplyStats for the mapping.
func RecordGameStats(ctx context.Context, userID uuid.UUID, s models.GameStats) error {
	var q string
	var args []any
	if s.Won {
		q = `UPDATE users SET wins = wins + 1, imposter_wins = imposter_wins + $2 WHERE id = $1`
		args = []any{userID, boolToInt(s.WasImposter)}
	} else {
		q = `UPDATE users SET games_played = games_played + $2, times_imposter = times_imposter + $3 WHERE id = $1`
		args = []any{userID, boolToInt(s.Played), boolToInt(s.WasImposter)}
	}

	tag, err := DB.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to record stats: %w: %v", models.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
