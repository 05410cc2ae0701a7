// Package auth implements the session gate: a two-stage authenticator
// (static admin pair first, then the managed identity delegate) and JWT
// session tokens with sign-out revocation.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/brijesht/folio/internal/apperr"
)

// User is the opaque account handle surfaced to the rest of the service.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Provider authenticates an email/password pair against a backing
// identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (User, error)
}

// StaticAdminID identifies sessions minted from the static pair.
const StaticAdminID = "static-admin-001"

// Static matches one configured admin credential pair without any
// network call. The password may be held as a bcrypt hash (preferred)
// or plaintext.
type Static struct {
	Email        string
	Password     string
	PasswordHash string
	DisplayName  string
}

// Match reports whether the pair matches the static credentials.
func (s *Static) Match(email, password string) (User, bool) {
	if s == nil || s.Email == "" {
		return User{}, false
	}
	if !strings.EqualFold(email, s.Email) {
		return User{}, false
	}
	if s.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) != nil {
			return User{}, false
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(s.Password)) != 1 {
		return User{}, false
	}
	return User{ID: StaticAdminID, Email: s.Email, DisplayName: s.DisplayName}, true
}

// Chain is the two-stage authenticator. The static check always runs
// first; a static match never contacts the delegate.
type Chain struct {
	Static   *Static
	Delegate Provider
}

// SignIn authenticates via the static pair, then the delegate.
func (c *Chain) SignIn(ctx context.Context, email, password string) (User, error) {
	if u, ok := c.Static.Match(email, password); ok {
		return u, nil
	}
	if c.Delegate == nil {
		return User{}, apperr.ErrInvalidCredentials
	}
	return c.Delegate.SignIn(ctx, email, password)
}
