package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"os"
	"strings"
)

// ErrCredentials is the only error a failed owner login reports. It never
// says which part of the credentials was wrong.
var ErrCredentials = errors.New("credentials incorrect")

// ErrOwnerRequired is returned when a non-owner session attempts an owner action.
var ErrOwnerRequired = errors.New("owner session required")

// Credentials are presented at owner login.
type Credentials struct {
	Email  string
	Secret string
}

// Verifier decides whether credentials grant the Owner role. This is a
// convenience gate for a single-user library, not access control.
type Verifier interface {
	Verify(ctx context.Context, c Credentials) error
}

// StaticSecret accepts one fixed email and secret pair.
type StaticSecret struct {
	email  string
	secret string
}

// NewStaticSecret returns a verifier for email and secret. An empty secret
// rejects every attempt.
func NewStaticSecret(email, secret string) *StaticSecret {
	return &StaticSecret{email: strings.TrimSpace(email), secret: secret}
}

// StaticSecretFromEnv reads the secret from the environment variable
// envName. The value is held in memory only.
func StaticSecretFromEnv(email, envName string) *StaticSecret {
	return NewStaticSecret(email, os.Getenv(envName))
}

// Configured reports whether a secret is set.
func (s *StaticSecret) Configured() bool { return s.secret != "" }

// Verify implements Verifier.
func (s *StaticSecret) Verify(_ context.Context, c Credentials) error {
	if s.secret == "" {
		return ErrCredentials
	}
	emailOK := s.email == "" || strings.EqualFold(strings.TrimSpace(c.Email), s.email)
	secretOK := subtle.ConstantTimeCompare([]byte(c.Secret), []byte(s.secret)) == 1
	if !emailOK || !secretOK {
		return ErrCredentials
	}
	return nil
}
