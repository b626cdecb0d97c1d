// Package auth provides HMAC-based API key authentication for the gRPC API.
//
// Each key belongs to one project; the interceptor resolves the key and
// places the project ID in the request context for the service layer.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/codematch/internal/types"
)

type contextKey string

const projectIDKey = contextKey("project_id")

// APIKeyHeader is the metadata key carrying the caller's API key.
const APIKeyHeader = "x-api-key"

// healthServicePrefix marks methods that bypass authentication.
const healthServicePrefix = "/grpc.health.v1.Health/"

// lastUsedThrottle bounds how often last_used_at is rewritten per key.
const lastUsedThrottle = time.Minute

// Queries is the subset of *db.Queries the authenticator needs.
type Queries interface {
	Get(ctx context.Context, name string, dest any, args ...any) error
	Exec(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	now     func() time.Time
}

// NewAuthenticator creates an authenticator over secrets keyed by secret ID.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		now:     time.Now,
	}
}

// Authenticate resolves apiKey to its project.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (types.ProjectID, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	var row struct {
		APIKeyID   string       `db:"api_key_id"`
		ProjectID  string       `db:"project_id"`
		Name       string       `db:"name"`
		SecretID   string       `db:"secret_id"`
		KeyHash    string       `db:"key_hash"`
		CreatedAt  time.Time    `db:"created_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
	}

	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if row.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	now := a.now().UTC()
	if !row.LastUsedAt.Valid || now.Sub(row.LastUsedAt.Time) > lastUsedThrottle {
		if _, err := a.queries.Exec(ctx, "touch-api-key", now, row.APIKeyID); err != nil {
			log.Warn().Err(err).Str("api_key_id", row.APIKeyID).Msg("failed to update last_used_at")
		}
	}

	return types.ProjectID(row.ProjectID), nil
}

// UnaryInterceptor authenticates every call except health checks.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		keys := md.Get(APIKeyHeader)
		if len(keys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		projectID, err := a.Authenticate(ctx, keys[0])
		switch {
		case err == nil:
		case errors.Is(err, ErrKeyRevoked):
			return nil, status.Error(codes.PermissionDenied, err.Error())
		case errors.Is(err, ErrDatabase):
			log.Error().Err(err).Str("method", info.FullMethod).Msg("authentication unavailable")
			return nil, status.Error(codes.Unavailable, ErrDatabase.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(WithProjectID(ctx, projectID), req)
	}
}

// WithProjectID returns ctx carrying projectID.
func WithProjectID(ctx context.Context, projectID types.ProjectID) context.Context {
	return context.WithValue(ctx, projectIDKey, projectID)
}

// ProjectIDFromContext returns the authenticated project, or "" if none.
func ProjectIDFromContext(ctx context.Context) types.ProjectID {
	if projectID, ok := ctx.Value(projectIDKey).(types.ProjectID); ok {
		return projectID
	}
	return ""
}
