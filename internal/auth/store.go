// Package auth implements the in-memory fallback identity store used when no
// external identity provider is configured. Accounts live only for the
// process lifetime; nothing survives a restart.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists reports a duplicate registration for an email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials reports a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the public account shape; password hashes never leave the store.
type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Location  string    `json:"location"`
	FarmSize  string    `json:"farmSize"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile carries the registration fields beyond credentials.
type Profile struct {
	FullName string
	Location string
	FarmSize string
}

type account struct {
	user         User
	passwordHash []byte
}

// Store is a concurrency-safe user store keyed by email.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]account
	clock    clockwork.Clock
}

// NewStore creates an empty fallback store.
func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		accounts: make(map[string]account),
		clock:    clock,
	}
}

// Register creates an account. The password is stored as a bcrypt hash.
func (s *Store) Register(email, password string, profile Profile) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[email]; ok {
		return User{}, ErrUserExists
	}

	user := User{
		UID:       uuid.NewString(),
		Email:     email,
		FullName:  profile.FullName,
		Location:  profile.Location,
		FarmSize:  profile.FarmSize,
		UserType:  "farmer",
		CreatedAt: s.clock.Now(),
	}
	s.accounts[email] = account{user: user, passwordHash: hash}
	return user, nil
}

// Authenticate verifies credentials and returns the account's user.
func (s *Store) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	acct, ok := s.accounts[email]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}
