// internal/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gatelog/internal/database"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password, so responses never reveal which field was incorrect.
var ErrInvalidCredentials = errors.New("invalid username or password")

// The demo account created at startup when absent.
const (
	SeedUsername = "user1"
	SeedPassword = "aaay"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CreateUser hashes the password and inserts a new credential record.
func CreateUser(ctx context.Context, db *database.DB, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return db.CreateUser(ctx, username, hash)
}

// EnsureSeedUser creates the seed account if no record with that
// username exists. An existing record is left untouched, hash included.
// The check-then-insert pair is not atomic; this runs once from a
// single-process startup, where that is acceptable.
func EnsureSeedUser(ctx context.Context, db *database.DB, logger *log.Logger) error {
	_, err := db.GetUserByUsername(ctx, SeedUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("error checking seed user: %w", err)
	}

	if err := CreateUser(ctx, db, SeedUsername, SeedPassword); err != nil {
		return fmt.Errorf("error creating seed user: %w", err)
	}
	if logger != nil {
		logger.Printf("Created seed user %q", SeedUsername)
	}
	return nil
}
