package auth

import "errors"

// UNAUTHENTICATED for missing/invalid keys (does not confirm key existence).
// PERMISSION_DENIED for revoked keys. UNAVAILABLE for storage failures.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")
	ErrDatabase         = errors.New("database error")
	ErrNoSecrets        = errors.New("no HMAC secrets configured (set CM_HMAC_SECRET)")
)
