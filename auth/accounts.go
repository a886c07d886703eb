// Package auth creates and authenticates user accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/KK-2k06/DreamInk/db"
)

// Account errors
var (
	ErrMissingFields      = errors.New("auth: missing required fields")
	ErrAlreadyExists      = errors.New("auth: account already exists")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)

// UserStore persists accounts. *db.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, u db.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
}

// Account is the public view of a user; it never carries the hash.
type Account struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

// Signup is the input to CreateAccount.
type Signup struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Service implements signup and signin over a UserStore.
type Service struct {
	store UserStore
	cost  int

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a Service hashing at cost. Zero means DefaultCost.
func NewService(store UserStore, cost int) *Service {
	if cost == 0 {
		cost = DefaultCost
	}
	return &Service{store: store, cost: cost}
}

// NormalizeEmail trims and lower-cases an email address. Emails are unique
// regardless of case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers a new user.
func (s *Service) CreateAccount(ctx context.Context, in Signup) (Account, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	email := NormalizeEmail(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" {
		return Account{}, ErrMissingFields
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, db.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, db.ErrDuplicateEmail) {
		return Account{}, ErrAlreadyExists
	}
	if err != nil {
		return Account{}, fmt.Errorf("create user: %w", err)
	}

	return Account{ID: id, FirstName: first, LastName: last, Email: email}, nil
}

// Authenticate checks credentials. Unknown email and wrong password both
// return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, ErrMissingFields
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		// Spend the same bcrypt time as a real check.
		_ = VerifyPassword(password, s.dummy())
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := VerifyPassword(password, u.PasswordHash); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	return Account{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = HashPassword("dreamink-placeholder", s.cost)
	})
	return s.dummyHash
}
