package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost bounds
const (
	// DefaultCost takes roughly 250ms per hash on current hardware.
	DefaultCost = 12
	MinCost     = 10
	MaxCost     = 31
)

// Password errors
var (
	ErrEmptyPassword    = errors.New("auth: password cannot be empty")
	ErrPasswordMismatch = errors.New("auth: password does not match")
	ErrInvalidHash      = errors.New("auth: invalid password hash format")
	ErrInvalidCost      = errors.New("auth: invalid bcrypt cost")
)

// HashPassword returns a salted bcrypt hash of password at the given cost.
// A cost outside [MinCost, MaxCost] is rejected.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if cost < MinCost || cost > MaxCost {
		return "", fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidCost, cost, MinCost, MaxCost)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares password with hash in constant time. Any failure,
// including a malformed hash, reports ErrPasswordMismatch.
func VerifyPassword(password, hash string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if hash == "" {
		return ErrInvalidHash
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// HashCost extracts the cost factor from a bcrypt hash.
func HashCost(hash string) (int, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, ErrInvalidHash
	}
	return cost, nil
}
