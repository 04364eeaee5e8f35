// Package crypto holds the password hashing implementation.
package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, clamped to bcrypt's valid
// range. Zero selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash. bcrypt generates the salt itself, so two
// calls with the same input differ.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrMalformedInput, maxPasswordBytes)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches secretHash. Malformed or legacy
// hashes simply do not match.
func (h *BcryptHasher) Verify(plaintext, secretHash string) bool {
	if secretHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(plaintext)) == nil
}

// Cost reports the work factor new hashes are created with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}
