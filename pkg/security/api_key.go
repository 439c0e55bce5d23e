package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	apiKeyBytes     = 32
	apiKeyPrefixLen = 8
)

// GeneratedAPIKey is returned once at creation; only Hash and Prefix are persisted.
type GeneratedAPIKey struct {
	Plain  string
	Hash   string
	Prefix string
}

// GenerateAPIKey returns a 64-character hex secret with its digest and display prefix.
func GenerateAPIKey() (GeneratedAPIKey, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return GeneratedAPIKey{}, fmt.Errorf("generate api key: %w", err)
	}
	plain := hex.EncodeToString(buf)
	return GeneratedAPIKey{
		Plain:  plain,
		Hash:   HashAPIKey(plain),
		Prefix: plain[:apiKeyPrefixLen],
	}, nil
}

// HashAPIKey returns the lookup digest of a presented key.
func HashAPIKey(plain string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(plain)))
	return hex.EncodeToString(sum[:])
}
