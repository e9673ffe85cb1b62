package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/api"
)

// fakeAuthServer mimics the API's session endpoints: a request carrying
// the good cookie is signed in, everything else gets the sentinel 401.
func fakeAuthServer(t *testing.T, goodCookie string, meCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(meCalls, 1)
		if r.Header.Get("Cookie") == goodCookie {
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "name": "Dr. Rao", "role": "admin"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": api.UnauthorizedSentinel})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/oauth/google/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://login.example.com/start"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGate(t *testing.T, srvURL string, ttl time.Duration) *Gate {
	t.Helper()
	client := api.NewClient(api.Config{BaseURL: srvURL})
	return NewGate(api.NewAuthService(client), ttl)
}

func TestGate_AuthenticatedAndCached(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	id, err := gate.Current(context.Background(), "session=good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.Authenticated() || id.User.Name != "Dr. Rao" {
		t.Fatalf("identity = %+v", id)
	}

	// Second check within the TTL must not hit the API again.
	gate.Current(context.Background(), "session=good")
	if n := atomic.LoadInt32(&meCalls); n != 1 {
		t.Errorf("auth/me called %d times, want 1", n)
	}
}

func TestGate_Unauthenticated(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	id, err := gate.Current(context.Background(), "session=stale")
	if err == nil {
		t.Fatal("expected error for a bad session")
	}
	if id.Authenticated() {
		t.Error("identity must not be authenticated")
	}
	if !api.IsUnauthorized(err) {
		t.Errorf("expected the unauthorized class, got %v", err)
	}
}

func TestGate_RefreshBypassesCache(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	gate.Current(context.Background(), "session=good")
	gate.Refresh(context.Background(), "session=good")
	if n := atomic.LoadInt32(&meCalls); n != 2 {
		t.Errorf("auth/me called %d times, want 2", n)
	}
}

func TestGate_LogoutClearsCachedIdentity(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	gate.Current(context.Background(), "session=good")
	if err := gate.Logout(context.Background(), "session=good"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate.Current(context.Background(), "session=good")
	if n := atomic.LoadInt32(&meCalls); n != 2 {
		t.Errorf("auth/me called %d times after logout, want 2", n)
	}
}

func TestGate_FailedChecksAreNotCached(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	// Unauthenticated traffic picks its own Cookie headers; none of them
	// may take up residence in the map.
	for i := 0; i < 100; i++ {
		gate.Current(context.Background(), fmt.Sprintf("session=scan-%d", i))
	}

	gate.mu.Lock()
	n := len(gate.entries)
	gate.mu.Unlock()
	if n != 0 {
		t.Fatalf("gate retained %d entries for failed checks, want 0", n)
	}
}

func TestGate_ExpiredEntriesArePruned(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, 10*time.Millisecond)

	gate.Current(context.Background(), "session=good")
	time.Sleep(20 * time.Millisecond)

	// Any later check sweeps entries past the TTL.
	gate.Current(context.Background(), "session=other")

	gate.mu.Lock()
	n := len(gate.entries)
	gate.mu.Unlock()
	if n != 0 {
		t.Fatalf("gate retains %d expired entries, want 0", n)
	}
}

func TestMiddleware_RedirectsUnauthenticated(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	e := echo.New()
	handler := Middleware(gate)(func(c echo.Context) error {
		return c.String(http.StatusOK, "page")
	})

	req := httptest.NewRequest(http.MethodGet, "http://portal.local/patients?q=a", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://login.example.com/start" {
		t.Errorf("redirect location = %q", loc)
	}
}

func TestMiddleware_PassesAuthenticated(t *testing.T) {
	var meCalls int32
	srv := fakeAuthServer(t, "session=good", &meCalls)
	gate := newGate(t, srv.URL, time.Minute)

	e := echo.New()
	handler := Middleware(gate)(func(c echo.Context) error {
		u := UserFrom(c)
		if u == nil {
			t.Error("expected the session user on the context")
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, "hello "+u.Name)
	})

	req := httptest.NewRequest(http.MethodGet, "http://portal.local/", nil)
	req.Header.Set("Cookie", "session=good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Dr. Rao") {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}
