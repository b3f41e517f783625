package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// NewWidgetKey generates the secret a site embeds to talk to its bot. The
// plaintext is shown once at provisioning; only the hash is stored.
func NewWidgetKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate widget key: %w", err)
	}
	return "wk_" + hex.EncodeToString(buf), nil
}

// HashKey returns a bcrypt hash of the widget key.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash widget key: %w", err)
	}
	return string(hash), nil
}

// CheckKey validates a widget key against its stored hash.
func CheckKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
