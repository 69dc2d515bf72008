package auth

import "net/http"

// Outcome is the kind of admission decision the guard produced.
type Outcome int

const (
	OutcomeAdmit Outcome = iota
	OutcomeRedirect
	OutcomeDeny
)

// ErrorResponse is the structured rejection body for API-style requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Decision is the guard's answer for one request. It is plain data; the
// controller layer maps it onto the response.
type Decision struct {
	Outcome  Outcome
	Status   int
	Location string
	Body     *ErrorResponse
}

// Admitted reports whether the request may proceed.
func (d Decision) Admitted() bool {
	return d.Outcome == OutcomeAdmit
}

// Admit lets the request continue.
func Admit() Decision {
	return Decision{Outcome: OutcomeAdmit}
}

// Redirect sends an unauthenticated page request to the login view.
func Redirect(location string) Decision {
	return Decision{Outcome: OutcomeRedirect, Status: http.StatusFound, Location: location}
}

// Deny rejects the request with a structured error body.
func Deny(status int, message string) Decision {
	return Decision{Outcome: OutcomeDeny, Status: status, Body: &ErrorResponse{Error: message}}
}
