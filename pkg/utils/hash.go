// Package utils holds password hashing helpers.
package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plain password against a stored hash.
// Hashes written by the previous version of the hub are unsalted
// SHA-256 hex digests; those still verify so existing users.json files
// keep working. New hashes are always bcrypt.
func CheckPassword(plain, hashed string) bool {
	if isLegacyHash(hashed) {
		sum := sha256.Sum256([]byte(plain))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(hashed)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// IsLegacyHash reports whether the stored hash predates bcrypt and
// should be upgraded on the next successful login.
func IsLegacyHash(hashed string) bool { return isLegacyHash(hashed) }

func isLegacyHash(hashed string) bool {
	if len(hashed) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(hashed)
	return err == nil
}
