package api

import (
	"context"
	"net/url"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// AuthService calls the session identity endpoints. There is no token
// handling here: the session is an opaque server cookie, forwarded via
// WithCredentials, and the server alone decides whether it is valid.
type AuthService struct {
	c *Client
}

// NewAuthService creates an AuthService on the shared client.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

// Me fetches the current session user. An unauthorized error means there is
// no session.
func (s *AuthService) Me(ctx context.Context) (*clinic.User, error) {
	var out clinic.User
	if err := s.c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout terminates the server session. Callers treat this as best-effort
// and clear their local user state regardless of the result.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.get(ctx, "/auth/logout", nil, nil)
}

// LoginURL builds the default login redirect target, carrying the caller's
// location so the OAuth flow can return to it.
func (s *AuthService) LoginURL(state string) string {
	return s.c.baseURL + "/oauth/google/login?state=" + url.QueryEscape(state)
}

type loginTarget struct {
	URL string `json:"url"`
}

// ResolveLoginURL asks the login endpoint for a server-provided redirect
// target (json=1). Any failure falls back to the default URL construction;
// re-authentication must never itself fail.
func (s *AuthService) ResolveLoginURL(ctx context.Context, state string) string {
	q := url.Values{
		"state": []string{state},
		"json":  []string{"1"},
	}
	var target loginTarget
	if err := s.c.get(ctx, "/oauth/google/login", q, &target); err != nil || target.URL == "" {
		return s.LoginURL(state)
	}
	return target.URL
}
