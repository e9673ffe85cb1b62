package session

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

const (
	userContextKey  = "session_user"
	credsContextKey = "session_credentials"
)

// Middleware gates every UI route behind the session check. Requests with
// no valid session are redirected to the login URL with the current
// location as the state parameter; authenticated requests proceed with the
// user and the forwarded credentials stored on the echo context.
func Middleware(gate *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			creds := req.Header.Get("Cookie")

			id, err := gate.Current(req.Context(), creds)
			if err != nil || !id.Authenticated() {
				state := currentLocation(c)
				return c.Redirect(http.StatusFound, gate.LoginURL(req.Context(), state))
			}

			c.Set(userContextKey, id.User)
			c.Set(credsContextKey, creds)
			c.SetRequest(req.WithContext(api.WithCredentials(req.Context(), creds)))
			return next(c)
		}
	}
}

// UserFrom returns the session user the middleware attached, or nil.
func UserFrom(c echo.Context) *clinic.User {
	u, _ := c.Get(userContextKey).(*clinic.User)
	return u
}

// CredentialsFrom returns the forwarded cookie header the middleware
// attached.
func CredentialsFrom(c echo.Context) string {
	s, _ := c.Get(credsContextKey).(string)
	return s
}

// currentLocation rebuilds the absolute URL the browser asked for, which
// becomes the OAuth return state.
func currentLocation(c echo.Context) string {
	req := c.Request()
	scheme := c.Scheme()
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + req.Host + req.RequestURI
}
