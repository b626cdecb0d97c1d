package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/codematch/internal/types"
)

// ErrAPIKeyNotFound is returned when revoking an unknown or already revoked key.
var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKey is a stored key. Only the HMAC of the key is kept.
type APIKey struct {
	APIKeyID   string          `db:"api_key_id"`
	ProjectID  types.ProjectID `db:"project_id"`
	Name       string          `db:"name"`
	SecretID   string          `db:"secret_id"`
	KeyHash    string          `db:"key_hash"`
	CreatedAt  time.Time       `db:"created_at"`
	LastUsedAt sql.NullTime    `db:"last_used_at"`
	RevokedAt  sql.NullTime    `db:"revoked_at"`
}

// APIKeys manages api_keys rows.
type APIKeys struct {
	queries *Queries
}

// NewAPIKeys creates a key store over loaded queries.
func NewAPIKeys(queries *Queries) *APIKeys {
	return &APIKeys{queries: queries}
}

// Insert stores key, stamping CreatedAt if unset.
func (s *APIKeys) Insert(ctx context.Context, key *APIKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	_, err := s.queries.Exec(ctx, "insert-api-key",
		key.APIKeyID, key.ProjectID, key.Name, key.SecretID, key.KeyHash, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert api key: %w", err)
	}
	return nil
}

// Revoke marks a key revoked.
func (s *APIKeys) Revoke(ctx context.Context, apiKeyID string) error {
	res, err := s.queries.Exec(ctx, "revoke-api-key", time.Now().UTC(), apiKeyID)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAPIKeyNotFound, apiKeyID)
	}
	return nil
}

// ListByProject returns every key issued for project, oldest first.
func (s *APIKeys) ListByProject(ctx context.Context, project types.ProjectID) ([]APIKey, error) {
	var keys []APIKey
	if err := s.queries.Select(ctx, "list-api-keys-by-project", &keys, project); err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}
