package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser resolves a login to a user ID, creating the row on first
// sight. last_seen is touched on every call so idle accounts are visible.
func (db *DB) GetOrCreateUser(ctx context.Context, login string) (int, error) {
	if login == "" {
		return 0, fmt.Errorf("login must not be empty")
	}
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login)
		VALUES ($1)
		ON CONFLICT (login) DO UPDATE SET last_seen = NOW()
		RETURNING id
	`, login).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving user %q: %w", login, err)
	}
	return id, nil
}
