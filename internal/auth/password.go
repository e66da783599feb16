package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Work factor for account password hashes. Raising it only affects
	// newly stored hashes; existing records verify at their own cost.
	hashCost = 12

	minPasswordLength = 8
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters long")

// HashPassword validates an account password and returns its bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
