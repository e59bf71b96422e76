// Package secrets covers generation and verification of the shared API
// credentials approvers exchange for access tokens.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "intake/pkg/domain-errors"
)

// Generate creates a cryptographically secure random secret, base64-encoded.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of the provided secret for storage.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext secret matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}
