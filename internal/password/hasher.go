// Package password provides one-way password hashing and breach screening.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost 12 lands around 50-100ms per hash on current hardware.
const bcryptCost = 12

// ErrEmptyPassword is a caller error, not a domain failure: the request
// validators reject empty passwords before this package ever sees one.
var ErrEmptyPassword = errors.New("password must not be empty")

type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcryptCost}
}

// Hash produces a salted bcrypt hash. Output differs between calls on the
// same input; both outputs verify it.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash returns
// false rather than an error so callers cannot leak format information.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
