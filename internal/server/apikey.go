package server

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	apiKeyHashIterations = 120000
	apiKeyHashKeyLength  = 32
	apiKeyHashSaltLength = 16
)

// APIKeyConfig holds the shared secret the guard compares against. Either
// the plaintext key or its PBKDF2 digest must be set; when both are present
// the digest wins, keeping the plaintext out of process configuration.
type APIKeyConfig struct {
	Key     string
	KeyHash string
}

type apiKeyGuard struct {
	key  string
	hash string
}

func newAPIKeyGuard(cfg APIKeyConfig) (*apiKeyGuard, error) {
	key := strings.TrimSpace(cfg.Key)
	hash := strings.TrimSpace(cfg.KeyHash)
	if key == "" && hash == "" {
		return nil, fmt.Errorf("api key or api key hash is required")
	}
	if hash != "" {
		if _, _, _, err := decodeAPIKeyHash(hash); err != nil {
			return nil, fmt.Errorf("invalid api key hash: %w", err)
		}
	}
	return &apiKeyGuard{key: key, hash: hash}, nil
}

// authorize compares the received header value against the configured
// secret. Comparison is constant time in both modes.
func (g *apiKeyGuard) authorize(candidate string) bool {
	if candidate == "" {
		return false
	}
	if g.hash != "" {
		return verifyAPIKey(g.hash, candidate) == nil
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.key)) == 1
}

// HashAPIKey derives a PBKDF2 digest of the key in the encoded form accepted
// by APIKeyConfig.KeyHash: pbkdf2$sha256$<iterations>$<salt>$<key>.
func HashAPIKey(key string) (string, error) {
	salt := make([]byte, apiKeyHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(key), salt, apiKeyHashIterations, apiKeyHashKeyLength, sha256.New)
	return fmt.Sprintf("pbkdf2$sha256$%d$%s$%s",
		apiKeyHashIterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(derived)), nil
}

func verifyAPIKey(encodedHash, candidate string) error {
	iterations, salt, storedKey, err := decodeAPIKeyHash(encodedHash)
	if err != nil {
		return err
	}
	derived := pbkdf2.Key([]byte(candidate), salt, iterations, len(storedKey), sha256.New)
	if subtle.ConstantTimeCompare(derived, storedKey) != 1 {
		return fmt.Errorf("api key mismatch")
	}
	return nil
}

func decodeAPIKeyHash(encodedHash string) (int, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return 0, nil, nil, fmt.Errorf("invalid hash format")
	}
	if parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return 0, nil, nil, fmt.Errorf("unsupported hash identifier")
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, fmt.Errorf("invalid iteration count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	storedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	return iterations, salt, storedKey, nil
}
