package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps users in the users table of Postgres or SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open connection; the schema comes from migrations.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Load returns every stored user id.
func (s *SQLStore) Load(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users ORDER BY first_seen, user_id`); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return ids, nil
}

// Add inserts u unless the id already exists.
func (s *SQLStore) Add(ctx context.Context, u User) error {
	query := s.db.Rebind(`INSERT INTO users (user_id, username, first_seen) VALUES (?, ?, ?) ON CONFLICT (user_id) DO NOTHING`)
	username := sql.NullString{String: u.Username, Valid: u.Username != ""}
	if _, err := s.db.ExecContext(ctx, query, u.ID, username, u.FirstSeen); err != nil {
		return fmt.Errorf("insert user %d: %w", u.ID, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
