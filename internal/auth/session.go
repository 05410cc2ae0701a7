package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/brijesht/folio/internal/apperr"
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	UID         string `json:"uid"`
	DisplayName string `json:"name,omitempty"`
}

// Sessions issues and verifies HS256 session tokens. Sign-out puts the
// token's jti on an in-process denylist until its natural expiry, so a
// revoked token cannot restore a session even before it expires.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache

	// Now is overridable in tests.
	Now func() time.Time
}

// NewSessions creates a session issuer with the given signing secret and TTL.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: cache.New(ttl, 2*ttl),
		Now:     time.Now,
	}
}

// Issue mints a signed session token for the user.
func (s *Sessions) Issue(u User) (string, error) {
	now := s.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UID:         u.ID,
		DisplayName: u.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the user it
// carries. The session is restored from the token alone; the identity
// delegate is never re-contacted.
func (s *Sessions) Verify(token string) (User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return User{}, err
	}
	if _, found := s.revoked.Get(claims.ID); found {
		return User{}, apperr.ErrUnauthorized
	}
	return User{ID: claims.UID, Email: claims.Subject, DisplayName: claims.DisplayName}, nil
}

// Revoke denylists the token until its expiry. Invalid tokens are a
// no-op; sign-out never fails.
func (s *Sessions) Revoke(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}
	until := cache.DefaultExpiration
	if claims.ExpiresAt != nil {
		if d := claims.ExpiresAt.Sub(s.Now()); d > 0 {
			until = d
		}
	}
	s.revoked.Set(claims.ID, struct{}{}, until)
}

func (s *Sessions) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.Now() }))
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperr.ErrUnauthorized
	}
	return claims, nil
}
