package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the work factor the sauce frontend was tuned against
const BcryptCost = 10

// HashPassword produces a one-way digest of the plaintext password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword reports whether plaintext matches the stored digest
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
