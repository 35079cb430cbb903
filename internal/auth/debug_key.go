package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt truncates inputs at 72 bytes.
	bcryptMaxKeyBytes = 72
	minDebugKeyBytes  = 16
)

// HashDebugKey returns the bcrypt hash to put in DEBUG_KEY_HASH.
func HashDebugKey(plain string) (string, error) {
	if len(plain) < minDebugKeyBytes {
		return "", fmt.Errorf("debug key must be at least %d bytes", minDebugKeyBytes)
	}
	if len(plain) > bcryptMaxKeyBytes {
		return "", fmt.Errorf("debug key too long: bcrypt only supports up to %d bytes", bcryptMaxKeyBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CompareDebugKey(hash string, plain string) error {
	if plain == "" {
		return fmt.Errorf("debug key required")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
