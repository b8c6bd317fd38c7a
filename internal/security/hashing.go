package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies guard passwords with bcrypt. Plaintext passwords
// never leave this type's call sites.
type Hasher struct {
	Cost int
}

// NewHasher clamps cost into bcrypt's valid range. Zero or negative picks the
// bcrypt default; tests pass a low cost to keep hashing fast.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password in storable string form.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether password matches hash. A nil return means match;
// bcrypt.ErrMismatchedHashAndPassword or a parse error otherwise.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
