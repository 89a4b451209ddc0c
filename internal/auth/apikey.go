package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

const apiKeyScheme = "iea"

// NewAPIKeySecret mints a key string of the form iea_<base58 secret>. Base58
// keeps the secret free of characters that get mangled in URLs and shell
// quoting.
func NewAPIKeySecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key secret: %w", err)
	}
	return apiKeyScheme + "_" + base58.Encode(raw), nil
}

// HashAPIKey returns the hex SHA-256 digest stored in place of the secret.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// KeyPrefix returns the displayable head of a key, enough to identify it
// without revealing the secret.
func KeyPrefix(key string) string {
	const n = 12
	if len(key) < n {
		return key
	}
	return key[:n]
}
