package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost keeps a single verification well under 100ms on current hardware.
const DefaultCost = 10

// Hasher hashes and verifies contributor passwords with bcrypt. Every hash
// carries its own random salt and cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or DefaultCost when cost is outside
// bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the work factor applied to new hashes.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt encoding of plaintext. bcrypt only reads the first
// 72 bytes, so longer inputs are rejected instead of silently truncated.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches storedHash. A stored hash that is
// not a valid bcrypt encoding yields ErrCredentialFormat, never (false, nil).
func (h *Hasher) Verify(plaintext, storedHash string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(storedHash)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCredentialFormat, err)
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCredentialFormat, err)
	}
}
