// Package config provides configuration management for codematch services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solatis/codematch/internal/types"
)

// CodeAPIConfig holds configuration for the gRPC code service.
type CodeAPIConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxCodeLength  int
	MetricsPort    int // Prometheus /metrics listener, 0 disables
}

// Config is the full service configuration.
type Config struct {
	CodeAPI CodeAPIConfig

	// Templates are custom per-project template definitions merged over the
	// built-in set. Compile failures are reported by the registry, not here.
	Templates []types.TemplateDefinition
}

// DefaultCodeAPIConfig returns configuration with default values.
func DefaultCodeAPIConfig() *CodeAPIConfig {
	return &CodeAPIConfig{
		Host:           "0.0.0.0",
		Port:           50061,
		RequestTimeout: 5 * time.Second,
		MaxCodeLength:  types.MaxCodeLength,
		MetricsPort:    9090,
	}
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports CM_HMAC_SECRET (single) and CM_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv("CM_HMAC_SECRET"); val != "" {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("CM_HMAC_SECRET: %w", err)
		}
		secrets[secretID] = decoded
	}

	// Numbered secrets keep old keys valid while new ones roll out.
	for i := 1; ; i++ {
		key := fmt.Sprintf("CM_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return nil, fmt.Errorf("duplicate secret_id '%s' found in environment variables (check CM_HMAC_SECRET and CM_HMAC_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
