package usecase

import (
	"net/url"
	"strings"
)

// Action is what the guard tells the server to do with a request.
type Action int

const (
	ActionContinue Action = iota
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "continue"
}

// Policy configures route protection.
type Policy struct {
	ProtectedPrefixes []string
	LandingPath       string
	HomePath          string
}

// DefaultPolicy protects the dashboard, organizations and profile areas.
func DefaultPolicy() Policy {
	return Policy{
		ProtectedPrefixes: []string{"/dashboard", "/organizations", "/profile"},
		LandingPath:       "/",
		HomePath:          "/organizations",
	}
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Action   Action
	Location string
}

// IsProtected reports whether path equals a protected prefix or lies below it.
// "/dashboardx" is not below "/dashboard".
func (p Policy) IsProtected(path string) bool {
	for _, prefix := range p.ProtectedPrefixes {
		if prefix == "/" || path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Decide applies the policy to a request path and the presence of the
// credential cookie. It has no failure path.
func Decide(policy Policy, path string, cookiePresent bool) Decision {
	if !cookiePresent && policy.IsProtected(path) {
		q := url.Values{}
		q.Set("callbackUrl", path)
		return Decision{Action: ActionRedirect, Location: policy.LandingPath + "?" + q.Encode()}
	}
	if cookiePresent && path == policy.LandingPath {
		return Decision{Action: ActionRedirect, Location: policy.HomePath}
	}
	return Decision{Action: ActionContinue}
}
