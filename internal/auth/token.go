// Package auth provides bearer token hashing and verification for the
// admin API.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashToken returns a SHA-256 hash of the token.
func HashToken(token string) string {
	token = strings.TrimSpace(token)

	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Verify reports whether the presented token matches the expected one.
// Both sides are hashed first so the comparison runs in constant time
// regardless of token length.
func Verify(presented, expected string) bool {
	a := HashToken(presented)
	b := HashToken(expected)
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
