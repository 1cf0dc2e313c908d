package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sessionmodel "workly-web/internal/session/domain/model"
)

// UserFixture provides credentials for tests
type UserFixture struct {
	Name     string
	Email    string
	Password string
}

// ValidUser returns a user the fake backend accepts once registered
func ValidUser() UserFixture {
	return UserFixture{Name: "Ada Lovelace", Email: "ada@example.com", Password: "password123"}
}

// SessionFixture returns a session for a specific user
func SessionFixture(userID string) *sessionmodel.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &sessionmodel.Session{
		ID:        userID,
		Name:      "User " + userID,
		Email:     userID + "@example.com",
		Token:     "token-" + userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type fakeUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	password string
}

// FakeBackend imitates the Workly API auth endpoints. Users live in memory;
// a login answers with the user in the body and the token as a jwt cookie.
type FakeBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]fakeUser
	loggedOut []string
	failLogin bool
}

// NewFakeBackend starts a fake API that is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	b := &FakeBackend{users: make(map[string]fakeUser)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signup", b.signup)
	mux.HandleFunc("/api/auth/login", b.login)
	mux.HandleFunc("/api/auth/logout", b.logout)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL is the value for API_BASE_URL.
func (b *FakeBackend) BaseURL() string {
	return b.Server.URL + "/api"
}

// FailLogins makes every later login answer 500.
func (b *FakeBackend) FailLogins(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLogin = fail
}

// LoggedOutTokens returns the tokens sent to /auth/logout.
func (b *FakeBackend) LoggedOutTokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.loggedOut...)
}

func (b *FakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": "error", "message": "Email is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[req.Email]; ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"status": "error", "message": "Email already registered"})
		return
	}
	user := fakeUser{ID: "user-" + req.Email, Name: req.Name, Email: req.Email, password: req.Password}
	b.users[req.Email] = user
	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": map[string]interface{}{"user": user}})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	user, ok := b.users[req.Email]
	fail := b.failLogin
	b.mu.Unlock()

	switch {
	case fail:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"status": "error", "message": "Database unavailable"})
	case !ok || user.password != req.Password:
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status": "error", "message": "Invalid email or password"})
	default:
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-" + user.ID, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": map[string]interface{}{"user": user}})
	}
}

func (b *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("jwt"); err == nil {
		b.mu.Lock()
		b.loggedOut = append(b.loggedOut, c.Value)
		b.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "message": "Logged out"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
