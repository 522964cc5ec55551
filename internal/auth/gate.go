// ABOUTME: Authentication gate issuing tokens for verified credentials
// ABOUTME: Checks logins against a fixed bcrypt credential set

package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any login failure. It deliberately
// does not say whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown so login
// timing does not reveal which usernames exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Gate issues tokens for verified credentials and verifies presented
// tokens. The credential set is fixed at construction (username to bcrypt
// hash) and read-only afterwards.
type Gate struct {
	codec       *Codec
	lifetime    time.Duration
	credentials map[string]string
}

// NewGate creates a Gate that issues tokens valid for lifetime.
func NewGate(codec *Codec, lifetime time.Duration, credentials map[string]string) *Gate {
	return &Gate{
		codec:       codec,
		lifetime:    lifetime,
		credentials: credentials,
	}
}

// Lifetime returns the configured token lifetime.
func (g *Gate) Lifetime() time.Duration {
	return g.lifetime
}

// Issue creates a token for the given subject, valid from now for the
// configured lifetime.
func (g *Gate) Issue(subject string) (string, error) {
	now := time.Now()
	return g.codec.Encode(subject, now, now.Add(g.lifetime))
}

// Verify decodes and validates a token, returning the Principal it encodes.
func (g *Gate) Verify(token string) (Principal, error) {
	return g.codec.Decode(token)
}

// Login checks the supplied credentials and issues a token on success.
// Any mismatch returns ErrInvalidCredentials.
func (g *Gate) Login(username, password string) (string, error) {
	hash, ok := g.credentials[username]
	if !ok || hash == "" {
		// Dummy comparison keeps timing constant for unknown usernames.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return g.Issue(username)
}
