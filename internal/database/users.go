package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when signup hits an existing email.
var ErrEmailTaken = errors.New("email already registered")

// User represents an account in the system. PasswordHash is a bcrypt hash
// and never leaves this package except for verification.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// CreateUser inserts a new user with an already-hashed password.
func (d *DB) CreateUser(email, passwordHash string, name *string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := d.Exec(`
		INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?)
	`, email, passwordHash, name)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	return d.GetUserByID(id)
}

// GetUserByID returns the user with the given ID.
func (d *DB) GetUserByID(id int64) (*User, error) {
	return d.scanUser(d.QueryRow(`
		SELECT id, email, password_hash, name, COALESCE(timezone, 'America/Los_Angeles'), created_at, updated_at, last_login_at
		FROM users
		WHERE id = ?
	`, id))
}

// GetUserByEmail returns the user with the given email, case-insensitively.
func (d *DB) GetUserByEmail(email string) (*User, error) {
	return d.scanUser(d.QueryRow(`
		SELECT id, email, password_hash, name, COALESCE(timezone, 'America/Los_Angeles'), created_at, updated_at, last_login_at
		FROM users
		WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

// TouchLastLogin records a successful login.
func (d *DB) TouchLastLogin(userID int64) error {
	_, err := d.Exec(`
		UPDATE users
		SET last_login_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// UpdateUserTimezone updates a user's preferred timezone.
func (d *DB) UpdateUserTimezone(userID int64, timezone string) error {
	_, err := d.Exec(`
		UPDATE users
		SET timezone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, timezone, userID)
	if err != nil {
		return fmt.Errorf("failed to update user timezone: %w", err)
	}
	return nil
}

func (d *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Timezone,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
