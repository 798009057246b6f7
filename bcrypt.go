package campus

import (
	"crypto/sha256"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured. Tuned
// for roughly 100ms per hash on commodity hardware.
const DefaultBcryptCost = 12

// prehashPassword reduces the plaintext to a fixed 32 byte digest so bcrypt's
// 72 byte input ceiling never truncates long passwords.
func prehashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, passwordHashCost())
}

// HashPasswordCost hashes with an explicit work factor
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword(prehashPassword(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. A malformed stored hash yields the same mismatch error
// as a wrong password; this function never panics into the caller.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), prehashPassword(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		// bad digest format, cost out of range, truncated hash... none of
		// these should tell the caller more than "no match"
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
