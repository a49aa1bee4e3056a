package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// HashPassword returns the bcrypt hash of a plain-text password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errors.New("password is too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether the plain-text password matches the hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks password preconditions shared by both registration
// paths and the user-update path.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is required")
	}
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
