package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionSubject is the subject claim carried by every admin session token.
const SessionSubject = "admin"

var ErrInvalidSession = errors.New("invalid or expired session")

// Identity is the request-scoped result of verifying a session token. It
// is what handlers see; no global session state exists.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
}

// Sessions issues and verifies signed admin session tokens (HS256 JWT,
// carried in an HttpOnly cookie by the HTTP layer).
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a new session token for the admin.
func (s *Sessions) Issue() (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   SessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the identity it
// carries. Any failure maps to ErrInvalidSession.
func (s *Sessions) Verify(tokenString string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject != SessionSubject {
		return Identity{}, ErrInvalidSession
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return Identity{Subject: claims.Subject, ExpiresAt: exp}, nil
}
