package credentials

import (
	"context"
	"database/sql"

	"cattlesense/internal/db"
)

// Store persists password credentials, keyed by user id.
type Store interface {
	GetHash(ctx context.Context, userID string) (string, error)
	// Upsert sets the user's password hash, creating the credential row if
	// the account was provisioned through OAuth only.
	Upsert(ctx context.Context, userID, hash, version string) error
}

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash FROM credentials WHERE user_id = $1
	`, userID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, userID, hash, version string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    hash_version  = EXCLUDED.hash_version,
		    updated_at    = NOW()
	`, userID, hash, version)
	return err
}
