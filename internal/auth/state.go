package auth

import "strings"

// Role is the privilege level attached to an authenticated caller.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Recognized reports whether the role is one the system understands.
// Unrecognized roles degrade to RoleUser during cookie reconciliation.
func (r Role) Recognized() bool {
	return r == RoleAdmin || r == RoleUser
}

// Cookie names shared with the controller layer that issues them.
const (
	CookieAuth     = "auth"
	CookieUserType = "userType"
)

// Session is the server-side view of the caller's authentication state. The
// guard both reads it and promotes it when the cookie channel proves
// authentication that the session has lost.
type Session interface {
	Authenticated() bool
	Role() Role
	SetAuthenticated(authenticated bool)
	SetRole(role Role)
}

// Cookies is the client-side view of the caller's authentication state.
type Cookies interface {
	Value(name string) (string, bool)
}

// Request carries the per-request state the guard consults.
type Request struct {
	Path    string
	Accept  string
	Session Session
	Cookies Cookies
}

const apiPathPrefix = "/api"

// IsAPI reports whether the request expects a structured error rather than a
// redirect on rejection.
func (r *Request) IsAPI() bool {
	return strings.HasPrefix(r.Path, apiPathPrefix) || strings.Contains(r.Accept, "application/json")
}
