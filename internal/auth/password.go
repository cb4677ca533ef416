package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePasswordStrength enforces the minimum length accepted by account
// management. The seed accounts predate this rule.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("le mot de passe doit comporter au moins 8 caractères")
	}
	return nil
}
