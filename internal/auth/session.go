package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rotisserie/eris"
)

const (
	sessionKeyAuthenticated = "isAuthenticated"
	sessionKeyUserType      = "userType"
)

// SessionState adapts a gorilla session to the guard's Session view. Writes
// mutate the session values in place; persisting them is the caller's job.
type SessionState struct {
	session *sessions.Session
}

var _ Session = (*SessionState)(nil)

// NewSessionState wraps a gorilla session.
func NewSessionState(session *sessions.Session) (*SessionState, error) {
	if session == nil {
		return nil, eris.New("session is required")
	}
	return &SessionState{session: session}, nil
}

func (s *SessionState) Authenticated() bool {
	value, _ := s.session.Values[sessionKeyAuthenticated].(bool)
	return value
}

func (s *SessionState) Role() Role {
	value, _ := s.session.Values[sessionKeyUserType].(string)
	return Role(value)
}

func (s *SessionState) SetAuthenticated(authenticated bool) {
	s.session.Values[sessionKeyAuthenticated] = authenticated
}

func (s *SessionState) SetRole(role Role) {
	s.session.Values[sessionKeyUserType] = string(role)
}

type requestCookies struct {
	request *http.Request
}

var _ Cookies = requestCookies{}

// CookiesFromRequest exposes an inbound request's cookies to the guard.
func CookiesFromRequest(request *http.Request) Cookies {
	return requestCookies{request: request}
}

func (c requestCookies) Value(name string) (string, bool) {
	cookie, err := c.request.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// FromHTTP assembles the guard's request view from an inbound request and its
// session state.
func FromHTTP(request *http.Request, session Session) *Request {
	return &Request{
		Path:    request.URL.Path,
		Accept:  request.Header.Get("Accept"),
		Session: session,
		Cookies: CookiesFromRequest(request),
	}
}
