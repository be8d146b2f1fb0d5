package model

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateAPIKey returns a new random API key. Keys are 32 random bytes,
// base64url encoded so they survive URL path segments and HTTP headers.
func GenerateAPIKey() ([]byte, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return []byte(base64.URLEncoding.EncodeToString(bytes)), nil
}
