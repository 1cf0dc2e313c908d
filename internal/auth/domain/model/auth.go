package model

import (
	sessionmodel "workly-web/internal/session/domain/model"
)

// Messages shown to the user by the login and signup forms.
const (
	MsgInvalidCredentials      = "Invalid email or password"
	MsgTryAgain                = "Something went wrong. Please try again."
	MsgSignupFailed            = "Something went wrong"
	MsgRegisteredLoginRequired = "Registration successful. Please login."
)

// LoginRequest is the login form.
type LoginRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

// Exchange is the API's answer to a credential exchange, reduced to what the
// bridge decides on. Session is nil when the body carried no user.
type Exchange struct {
	StatusCode int
	JSON       bool
	Message    string
	Session    *sessionmodel.Session
}

// OK reports a 2xx status.
func (e *Exchange) OK() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"error,omitempty"`
	Session  *sessionmodel.Session `json:"user,omitempty"`
	Redirect string                `json:"redirect,omitempty"`
}

// SignupOutcome summarizes a signup attempt.
type SignupOutcome string

const (
	SignupFailed                  SignupOutcome = "failed"
	SignupRegisteredLoginRequired SignupOutcome = "registered_login_required"
	SignupLoggedIn                SignupOutcome = "logged_in"
)

// SignupResult reports registration and the follow-up login independently.
type SignupResult struct {
	Registered bool                  `json:"registered"`
	LoggedIn   bool                  `json:"loggedIn"`
	Message    string                `json:"message,omitempty"`
	Session    *sessionmodel.Session `json:"user,omitempty"`
	Redirect   string                `json:"redirect,omitempty"`
}

// Outcome combines the two flags.
func (r SignupResult) Outcome() SignupOutcome {
	switch {
	case r.Registered && r.LoggedIn:
		return SignupLoggedIn
	case r.Registered:
		return SignupRegisteredLoginRequired
	default:
		return SignupFailed
	}
}
