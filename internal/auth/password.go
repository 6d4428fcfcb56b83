package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/practicheck/practicheck/internal/shared"
)

// mismatchHash is a syntactically valid bcrypt hash compared against when the
// looked-up user does not exist, so that unknown-identity and wrong-password
// take the same time to answer.
const mismatchHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Hasher performs one-way salted password hashing. Cost is fixed at startup.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given bcrypt cost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash derives an opaque salted hash. Two calls on the same plaintext produce
// different outputs.
func (h Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A hash that
// cannot be parsed surfaces as ErrCorruptCredential, never as an ordinary
// mismatch.
func (h Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", shared.ErrCorruptCredential, err)
}

// verifyAgainstMissing burns a bcrypt comparison for lookups that found no
// user, equalizing response time with the wrong-password path.
func (h Hasher) verifyAgainstMissing(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(mismatchHash), []byte(plaintext))
}
