package auth

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	messageUnauthenticated = "not authenticated"
	messageForbidden       = "insufficient permissions"

	defaultLoginPath = "/login"
)

// Options configures the access guard.
type Options struct {
	// Enabled toggles authentication enforcement process-wide. It is read-only
	// after construction.
	Enabled   bool
	LoginPath string
	Logger    *logrus.Logger
}

// Guard reconciles the session and cookie authentication channels into one
// admission decision per request. The cookie channel is a fallback for session
// loss: when only the cookie proves authentication, the session is promoted to
// match it before any role check runs.
type Guard struct {
	enabled   bool
	loginPath string
	logger    *logrus.Logger
}

// NewGuard constructs an access guard.
func NewGuard(opts Options) *Guard {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = defaultLoginPath
	}

	return &Guard{enabled: opts.Enabled, loginPath: loginPath, logger: opts.Logger}
}

// AdmitAuthenticated decides whether the request comes from an authenticated
// caller. Unauthenticated API requests get a 401 error body; page requests
// get a redirect to the login view.
func (g *Guard) AdmitAuthenticated(req *Request) Decision {
	if !g.enabled {
		return Admit()
	}

	if req.Session != nil && req.Session.Authenticated() {
		return Admit()
	}

	if g.reconcileFromCookie(req) {
		return Admit()
	}

	return g.denyUnauthenticated(req)
}

// AdmitAdmin decides whether the request comes from an authenticated admin.
// An authenticated caller lacking the admin role is denied with 403, never
// redirected.
func (g *Guard) AdmitAdmin(req *Request) Decision {
	if !g.enabled {
		return Admit()
	}

	authenticated := req.Session != nil && req.Session.Authenticated()
	if !authenticated && !g.reconcileFromCookie(req) {
		return g.denyUnauthenticated(req)
	}

	if req.Session.Role() == RoleAdmin {
		return Admit()
	}

	g.logDecision(req, logrus.Fields{"role": string(req.Session.Role())}, "admin access denied")
	return Deny(http.StatusForbidden, messageForbidden)
}

// reconcileFromCookie promotes the session when the cookie channel proves
// authentication. Reconciliation is idempotent: an already-synced session
// never reaches here because both admit paths check it first.
func (g *Guard) reconcileFromCookie(req *Request) bool {
	if req.Session == nil || req.Cookies == nil {
		return false
	}

	value, ok := req.Cookies.Value(CookieAuth)
	if !ok || value != "true" {
		return false
	}

	req.Session.SetAuthenticated(true)

	role := RoleUser
	if raw, ok := req.Cookies.Value(CookieUserType); ok {
		if candidate := Role(raw); candidate.Recognized() {
			role = candidate
		}
	}
	req.Session.SetRole(role)

	g.logDecision(req, logrus.Fields{"role": string(role)}, "session restored from cookie")
	return true
}

func (g *Guard) denyUnauthenticated(req *Request) Decision {
	g.logDecision(req, nil, "request not authenticated")

	if req.IsAPI() {
		return Deny(http.StatusUnauthorized, messageUnauthenticated)
	}
	return Redirect(g.loginPath)
}

func (g *Guard) logDecision(req *Request, fields logrus.Fields, message string) {
	if g.logger == nil {
		return
	}

	entry := g.logger.WithField("path", req.Path)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Debug(message)
}
