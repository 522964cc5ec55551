// ABOUTME: JWT token codec for issuing and verifying session tokens
// ABOUTME: Uses HS256 signing with a process-wide secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret length in bytes.
// HS256 secrets shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// Token errors. Callers must not branch security decisions on which one
// came back; they exist for diagnostics and tests. A request carrying a
// token that fails for any of these reasons is treated as anonymous.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrExpiredToken   = errors.New("token expired")
)

// Principal is the authenticated identity materialized from a verified
// token. It is rebuilt on every verification and never stored server-side.
type Principal struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies compact session tokens. The secret is loaded
// once at startup and is read-only for the process lifetime, so a Codec
// needs no synchronization.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec with the given signing secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &Codec{secret: secret}, nil
}

// Encode serializes and signs a token carrying the subject and the issue
// and expiry instants. The signature is a deterministic function of the
// payload and the secret: any payload mutation invalidates it.
func (c *Codec) Encode(subject string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode parses and verifies a token, returning the Principal it encodes.
// Checks run structural, then cryptographic, then temporal; the first
// failure maps to ErrMalformedToken, ErrBadSignature or ErrExpiredToken.
// There is no clock-skew leeway.
func (c *Codec) Decode(tokenString string) (Principal, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Principal{}, ErrBadSignature
		default:
			return Principal{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid {
		return Principal{}, ErrBadSignature
	}

	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	if claims.ExpiresAt == nil {
		return Principal{}, fmt.Errorf("%w: missing expiry", ErrMalformedToken)
	}

	p := Principal{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	return p, nil
}
