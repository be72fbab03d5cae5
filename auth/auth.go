// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// pollTokenBytes gives 64 bits of entropy per token.
const pollTokenBytes = 8

// GeneratePollToken creates the random public identifier of a poll.
// URL-safe base64 without padding, 11 characters.
func GeneratePollToken() (string, error) {
	b := make([]byte, pollTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate poll token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashPassword returns the bcrypt hash of the normalized site password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(normalizePassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a login attempt against the stored hash.
// Surrounding whitespace and letter case are ignored.
func CheckPassword(hash, attempt string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(normalizePassword(attempt)))
	if err != nil {
		return ErrInvalidPassword
	}
	return nil
}

func normalizePassword(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// SafeNextURL returns next if it is a local path, otherwise fallback.
func SafeNextURL(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}
