// internal/database/user_update.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/imposter/internal/models"
)

// UpdateUserProfile writes a new username and password hash for the user.
// The hash must already be computed by the caller.
func UpdateUserProfile(ctx context.Context, id uuid.UUID, username, passwordHash string) error {
	q := `UPDATE users SET username = $1, password = $2 WHERE id = $3`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, e := tx.Exec(ctx, q, username, passwordHash, id)
		if e != nil {
			return e
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", username, models.ErrConflict)
	}
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("user %s: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w: %v", models.ErrStorage, err)
	}
	return nil
}
