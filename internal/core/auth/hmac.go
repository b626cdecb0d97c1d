package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const (
	keyPrefix  = "cm"
	keyVersion = "v1"

	secretIDLength   = 32
	randomDataLength = 64
)

// ParseAPIKey splits a key of the form cm-v1-<secret_id>-<random_data>.
// secret_id is 32 lowercase hex chars, random_data 64.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0] != keyPrefix || parts[1] != keyVersion {
		return "", "", ErrInvalidKeyFormat
	}

	secretID, randomData = parts[2], parts[3]
	if len(secretID) != secretIDLength || len(randomData) != randomDataLength {
		return "", "", ErrInvalidKeyFormat
	}
	if !isLowerHex(secretID) || !isLowerHex(randomData) {
		return "", "", ErrInvalidKeyFormat
	}

	return secretID, randomData, nil
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// FormatAPIKey assembles a key from its parts.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("%s-%s-%s-%s", keyPrefix, keyVersion, secretID, randomData)
}

// ComputeHMAC returns the hex HMAC-SHA256 of apiKey under secret.
// This is the value stored in api_keys.key_hash.
func ComputeHMAC(secret []byte, apiKey string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateAPIKey creates a fresh key bound to secretID and returns it with its hash.
// The plaintext key is shown once and never stored.
func GenerateAPIKey(secretID string, secret []byte) (key, keyHash string, err error) {
	if len(secretID) != secretIDLength || !isLowerHex(secretID) {
		return "", "", fmt.Errorf("%w: secret_id must be %d lowercase hex chars", ErrInvalidKeyFormat, secretIDLength)
	}

	random := make([]byte, randomDataLength/2)
	if _, err := rand.Read(random); err != nil {
		return "", "", fmt.Errorf("failed to read random data: %w", err)
	}

	key = FormatAPIKey(secretID, hex.EncodeToString(random))
	return key, ComputeHMAC(secret, key), nil
}

// SelectSecret picks the secret to sign new keys with: the requested ID,
// or the lexicographically first one when id is empty.
func SelectSecret(secrets map[string][]byte, id string) (string, []byte, error) {
	if len(secrets) == 0 {
		return "", nil, ErrNoSecrets
	}
	if id != "" {
		secret, ok := secrets[id]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownKey, id)
		}
		return id, secret, nil
	}

	ids := make([]string, 0, len(secrets))
	for k := range secrets {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids[0], secrets[ids[0]], nil
}
