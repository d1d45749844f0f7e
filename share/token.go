package share

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 256 bits of entropy per token, well past the point where
// guessing is feasible. Encoded length is 43 URL-safe characters.
const tokenBytes = 32

// generateToken draws a fresh random token. The value carries no structure:
// nothing about the owner, the file, or the creation time can be read out of
// it. Uniqueness is backstopped by the store's unique index; the service
// retries on the (practically impossible) collision.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
