package domain

import (
	"errors"
	"time"
)

// Guard is a checkpoint operator account. Admins may additionally force-end
// sessions and record manual override decisions.
type Guard struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Active       bool
	CreatedAt    time.Time
}

// Validate validates the guard for persistence. Returns an error describing the first validation failure.
func (g *Guard) Validate() error {
	if g.Email == "" {
		return errors.New("email is required")
	}
	if g.Name == "" {
		return errors.New("name is required")
	}
	if g.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
