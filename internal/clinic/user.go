package clinic

// User is the session identity returned by GET /auth/me. It lives in memory
// for the duration of the authenticated session and is never persisted.
type User struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
