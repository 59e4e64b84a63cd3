package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Wendpat-byte/banfora/internal/platform/auth"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on any failed login, without
	// revealing whether the identifier or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 8

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser registers an account with a bcrypt-hashed password. The
// identifier must be unique; the storage constraint arbitrates races.
func (s *Service) CreateUser(ctx context.Context, lastName, firstName, identifier, password, role string) (*User, error) {
	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	identifier = strings.TrimSpace(identifier)

	if lastName == "" || firstName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		LastName:     lastName,
		FirstName:    firstName,
		Identifier:   identifier,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks the identifier and password and returns the principal
// for the session. All failure modes collapse into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*auth.Principal, error) {
	u, err := s.repo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &auth.Principal{ID: u.ID, FullName: u.FullName(), Role: u.Role}, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}
