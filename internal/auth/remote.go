package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brijesht/folio/internal/apperr"
)

// CredentialError carries the identity service's rejection message. The
// message is surfaced verbatim on the login form.
type CredentialError struct {
	Message string
}

func (e *CredentialError) Error() string { return e.Message }

// Unwrap lets callers classify the failure with errors.Is.
func (e *CredentialError) Unwrap() error { return apperr.ErrInvalidCredentials }

// Remote delegates sign-in to a managed identity service over HTTP.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a delegate client for the given sign-in endpoint.
func NewRemote(endpoint string) *Remote {
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type remoteResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// SignIn posts the pair to the identity service. A 401/403 response
// becomes a CredentialError with the service's own message; anything
// else unexpected is an internal failure.
func (r *Remote) SignIn(ctx context.Context, email, password string) (User, error) {
	body, err := json.Marshal(remoteRequest{Email: email, Password: password})
	if err != nil {
		return User{}, fmt.Errorf("auth: marshal sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return User{}, fmt.Errorf("auth: build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("auth: identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var decoded remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return User{}, fmt.Errorf("auth: decode identity response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return User{ID: decoded.ID, Email: decoded.Email, DisplayName: decoded.DisplayName}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		msg := decoded.Error
		if msg == "" {
			msg = "invalid email or password"
		}
		return User{}, &CredentialError{Message: msg}
	default:
		return User{}, fmt.Errorf("auth: identity service returned %d", resp.StatusCode)
	}
}
