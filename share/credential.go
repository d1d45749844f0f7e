package share

import "golang.org/x/crypto/bcrypt"

// hashPassword derives the stored hash for a protected link. bcrypt keeps
// offline brute force against a leaked store expensive.
func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword gates redemption. No stored hash means the link is open and
// any supplied plaintext is ignored. A protected link rejects an absent
// plaintext outright; otherwise bcrypt performs the constant-time comparison.
// The plaintext is never stored or logged.
func verifyPassword(hash *string, plaintext string) bool {
	if hash == nil {
		return true
	}
	if plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(plaintext)) == nil
}
