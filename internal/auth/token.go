// Package auth issues and verifies bearer tokens and implements account
// registration and login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// Claims is the payload of an access token. The subject is the user id.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// Verifier checks bearer tokens. The middleware depends on this rather than
// on the issuer.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. ttl is the lifetime of issued tokens.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for u.
func (t *TokenIssuer) Issue(u *models.User) (string, error) {
	now := t.now()
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks its signature, algorithm and expiry.
// Every failure is an auth error; the cause is not revealed to the client.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Auth("Not authorized, no token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Auth("Not authorized, token expired")
		}
		return nil, apperr.Auth("Not authorized, token failed")
	}
	if claims.Subject == "" {
		return nil, apperr.Auth("Not authorized, token failed")
	}
	return claims, nil
}
