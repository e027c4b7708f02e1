package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/calvinschedulo/schedulo/internal/database"
)

// ErrInvalidCredentials is returned when login fails. It deliberately does
// not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrWeakPassword is returned when a signup password is too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

const minPasswordLength = 8

// Service handles signup and login against the user store.
type Service struct {
	db *database.DB
}

// NewService creates an authentication service.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Signup registers a new account. The password is bcrypt-hashed before it
// touches the database.
func (s *Service) Signup(email, password string, name *string) (*database.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(email, string(hash), name)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Auth: registered user %s\n", user.Email)
	return user, nil
}

// Login verifies credentials and records the login time on success.
func (s *Service) Login(email, password string) (*database.User, error) {
	user, err := s.db.GetUserByEmail(email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.db.TouchLastLogin(user.ID); err != nil {
		// Login still succeeds; the timestamp is best effort.
		fmt.Printf("Auth: failed to record login for %s: %v\n", user.Email, err)
	}

	return user, nil
}
