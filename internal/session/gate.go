// Package session is the portal's auth gate. It asks the clinic API who the
// current session belongs to, caches the answer per session cookie for a
// short window, and redirects unauthenticated requests to the login URL with
// the current location as the return state. The server owns the session
// entirely; there is no token refresh, no retry, and no multi-tab
// coordination here.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// DefaultTTL is how long one GET /auth/me answer serves repeat checks for
// the same session cookie.
const DefaultTTL = 30 * time.Second

// Identity is the outcome of a session check.
type Identity struct {
	User *clinic.User
	// CheckedAt is when the API answered.
	CheckedAt time.Time
}

// Authenticated reports whether a user is present.
func (id Identity) Authenticated() bool { return id.User != nil }

// Gate checks and caches session identity.
type Gate struct {
	auth *api.AuthService
	ttl  time.Duration

	mu      sync.Mutex
	entries map[string]Identity // by credential cookie, successes only
}

// NewGate creates a Gate over the auth service.
func NewGate(auth *api.AuthService, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{auth: auth, ttl: ttl, entries: make(map[string]Identity)}
}

// Current returns the session identity for the given credentials, using the
// cached answer when it is still fresh.
func (g *Gate) Current(ctx context.Context, creds string) (Identity, error) {
	g.mu.Lock()
	if id, ok := g.entries[creds]; ok && time.Since(id.CheckedAt) < g.ttl {
		g.mu.Unlock()
		return id, nil
	}
	g.mu.Unlock()

	return g.Refresh(ctx, creds)
}

// Refresh re-checks the session, bypassing the cache. Only successful checks
// are cached: entry keys are whatever Cookie header the client sent, and
// caching failures would let unauthenticated traffic grow the map with
// arbitrary keys. Expired entries are swept on every store.
func (g *Gate) Refresh(ctx context.Context, creds string) (Identity, error) {
	user, err := g.auth.Me(api.WithCredentials(ctx, creds))
	id := Identity{CheckedAt: time.Now()}
	if err == nil {
		id.User = user
	}

	g.mu.Lock()
	g.prune(id.CheckedAt)
	if err == nil && creds != "" {
		g.entries[creds] = id
	} else {
		delete(g.entries, creds)
	}
	g.mu.Unlock()

	return id, err
}

// prune drops entries past the TTL. Caller holds mu.
func (g *Gate) prune(now time.Time) {
	for k, id := range g.entries {
		if now.Sub(id.CheckedAt) >= g.ttl {
			delete(g.entries, k)
		}
	}
}

// Logout calls the logout endpoint and drops the cached identity. The
// local state is cleared regardless of whether the endpoint succeeded.
func (g *Gate) Logout(ctx context.Context, creds string) error {
	err := g.auth.Logout(api.WithCredentials(ctx, creds))

	g.mu.Lock()
	delete(g.entries, creds)
	g.mu.Unlock()

	return err
}

// LoginURL resolves where an unauthenticated browser should be sent,
// carrying state so the OAuth flow returns to the page the user wanted.
func (g *Gate) LoginURL(ctx context.Context, state string) string {
	return g.auth.ResolveLoginURL(ctx, state)
}
