package usecase_test

import (
	"testing"

	"workly-web/internal/auth/usecase"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	policy := usecase.DefaultPolicy()

	tests := []struct {
		name     string
		path     string
		cookie   bool
		action   usecase.Action
		location string
	}{
		{"protected without cookie", "/dashboard/x", false, usecase.ActionRedirect, "/?callbackUrl=%2Fdashboard%2Fx"},
		{"protected prefix itself", "/organizations", false, usecase.ActionRedirect, "/?callbackUrl=%2Forganizations"},
		{"profile without cookie", "/profile", false, usecase.ActionRedirect, "/?callbackUrl=%2Fprofile"},
		{"landing with cookie", "/", true, usecase.ActionRedirect, "/organizations"},
		{"protected with cookie", "/dashboard/x", true, usecase.ActionContinue, ""},
		{"public without cookie", "/about", false, usecase.ActionContinue, ""},
		{"landing without cookie", "/", false, usecase.ActionContinue, ""},
		{"prefix lookalike", "/dashboardx", false, usecase.ActionContinue, ""},
		{"public with cookie", "/auth/logout", true, usecase.ActionContinue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.Decide(policy, tt.path, tt.cookie)
			assert.Equal(t, tt.action, got.Action)
			assert.Equal(t, tt.location, got.Location)
		})
	}
}

func TestPolicy_CustomPrefixes(t *testing.T) {
	policy := usecase.Policy{ProtectedPrefixes: []string{"/admin"}, LandingPath: "/login", HomePath: "/home"}

	assert.True(t, policy.IsProtected("/admin/users"))
	assert.False(t, policy.IsProtected("/dashboard"))
	assert.Equal(t, usecase.Decision{Action: usecase.ActionRedirect, Location: "/home"}, usecase.Decide(policy, "/login", true))
	assert.Equal(t, "redirect", usecase.ActionRedirect.String())
	assert.Equal(t, "continue", usecase.ActionContinue.String())
}
