package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	guarddomain "campus-access-control/backend/internal/guard/domain"
	"campus-access-control/backend/internal/security"
)

// Sentinel errors for the auth service; the HTTP layer maps them to status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// AuthResult holds the outcome of a successful login.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	GuardID     string
	GuardName   string
	IsAdmin     bool
}

// GuardRepo is the minimal guard repository needed by the auth service.
type GuardRepo interface {
	GetByEmail(ctx context.Context, email string) (*guarddomain.Guard, error)
	Create(ctx context.Context, g *guarddomain.Guard) error
}

// AuthService implements password login for guards and admin-driven account creation.
type AuthService struct {
	guardRepo GuardRepo
	hasher    *security.Hasher
	tokens    *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(guardRepo GuardRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{
		guardRepo: guardRepo,
		hasher:    hasher,
		tokens:    tokens,
	}
}

// Register creates a guard account with the given email and password.
// Intended for admin use; new accounts are active and non-admin.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*guarddomain.Guard, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.guardRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	g := &guarddomain.Guard{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      false,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.guardRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Login authenticates with email/password and returns an access token.
// Inactive accounts and unknown emails fail the same way as bad passwords.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	g, err := s.guardRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if g == nil || !g.Active || g.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(g.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.IssueAccess(g.ID, g.Name, g.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		GuardID:     g.ID,
		GuardName:   g.Name,
		IsAdmin:     g.IsAdmin,
	}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case r < '0' || (r > '9' && r < 'A') || (r > 'Z' && r < 'a') || r > 'z':
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
