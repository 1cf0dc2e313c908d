package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	authhttp "workly-web/internal/auth/adapter/http"
	authconfig "workly-web/internal/auth/config"
	sessionhttp "workly-web/internal/session/adapter/http"
	"workly-web/internal/session/adapter/persistence"
	sessionmodel "workly-web/internal/session/domain/model"
	sessionrepo "workly-web/internal/session/domain/repository"
	sessionusecase "workly-web/internal/session/usecase"
	"workly-web/internal/shared/apiclient"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/workspace/adapter/backend"
	workspacehttp "workly-web/internal/workspace/adapter/http"
	"workly-web/internal/workspace/config"
	"workly-web/internal/workspace/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

const (
	testClientID = "V1StGXR8_Z5jdHi6B-myT"
	testToken    = "tok-1"
)

func quietLogger() logger.Logger {
	return logger.NewLoggerFromConfig(&logger.Config{Level: "error"}, io.Discard)
}

// fakeAPI serves a small slice of the Workly API.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	bodies    map[string]map[string]interface{}
	rejectAll bool
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key)
	if r.Body != nil && r.Method != http.MethodGet {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			f.bodies[key] = body
		}
	}
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) body(key string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func reply(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func success(w http.ResponseWriter, status int, data interface{}) {
	reply(w, status, map[string]interface{}{"status": "success", "data": data})
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/organizations", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, map[string]interface{}{
			"organizations":  []map[string]interface{}{{"id": "o1", "name": "Acme", "slug": "acme"}},
			"pendingInvites": []interface{}{},
		})
	})
	mux.HandleFunc("POST /api/organizations/{orgId}/projects", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusCreated, map[string]interface{}{
			"project": map[string]interface{}{"id": "p9", "name": "Web", "key": "WEB", "organizationId": r.PathValue("orgId")},
		})
	})
	mux.HandleFunc("GET /api/projects/p1", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, map[string]interface{}{
			"project":  map[string]interface{}{"id": "p1", "name": "Web", "key": "WEB"},
			"userRole": "LEAD",
		})
	})
	mux.HandleFunc("GET /api/projects/p1/issues", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, map[string]interface{}{
			"issues": []map[string]interface{}{
				{"id": "i1", "number": 1, "title": "Login crash", "status": "TODO", "priority": "URGENT",
					"labels": []map[string]string{{"name": "bug"}}, "updatedAt": "2025-03-01T10:00:00Z"},
				{"id": "i2", "number": 2, "title": "Dark mode", "status": "IN_PROGRESS", "priority": "LOW",
					"updatedAt": "2025-03-02T10:00:00Z"},
				{"id": "i3", "number": 3, "title": "Login loop", "status": "DONE", "priority": "HIGH",
					"labels": []map[string]string{{"name": "bug"}}, "updatedAt": "2025-03-03T10:00:00Z"},
			},
		})
	})
	mux.HandleFunc("GET /api/projects/p1/members", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, map[string]interface{}{
			"members": []map[string]interface{}{{"id": "pm1", "role": "LEAD", "user": map[string]string{"id": "u1"}}},
		})
	})
	mux.HandleFunc("GET /api/organizations/o1/members", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, map[string]interface{}{
			"members": []map[string]interface{}{
				{"id": "om1", "role": "OWNER", "user": map[string]string{"id": "u1"}},
				{"id": "om2", "role": "MEMBER", "user": map[string]string{"id": "u2"}},
			},
		})
	})
	mux.HandleFunc("GET /api/projects/issues/missing", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]string{"status": "error", "message": "Issue not found"})
	})
	mux.HandleFunc("DELETE /api/projects/issues/i1/comments/c1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if c, err := r.Cookie("jwt"); err != nil || c.Value != testToken || f.rejectAll {
			reply(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "Unauthorized"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func clearsCookie(resp *http.Response, name string) bool {
	for _, line := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(line, name+"=;") {
			return true
		}
	}
	return false
}

type WorkspaceRouterTestSuite struct {
	suite.Suite
	api     *fakeAPI
	app     *fiber.App
	manager *sessionusecase.Manager
}

func (suite *WorkspaceRouterTestSuite) SetupTest() {
	suite.build(quietLogger(), persistence.NewMemoryStorage())
}

// build wires the handler against a fresh fake API; usecaseLog receives the
// usecase's log lines.
func (suite *WorkspaceRouterTestSuite) build(usecaseLog logger.Logger, storage sessionrepo.SessionStorage) {
	suite.api = &fakeAPI{bodies: map[string]map[string]interface{}{}}
	srv := httptest.NewServer(suite.api.handler())
	suite.T().Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second, CookieName: "jwt"}, quietLogger(), nil)
	uc, err := usecase.NewWorkspaceUsecase(
		backend.NewOrganizationClient(client),
		backend.NewProjectClient(client),
		backend.NewIssueClient(client),
		config.DefaultConfig(),
		usecaseLog,
	)
	suite.Require().NoError(err)

	suite.manager = sessionusecase.NewManager("user", sessionusecase.StoreDeps{
		Storage: storage,
		Logger:  quietLogger(),
	}, nil)

	authCfg := authconfig.DefaultConfig()
	middleware, err := authhttp.NewAuthMiddleware(authCfg, nil, quietLogger())
	suite.Require().NoError(err)

	cookie := sessionhttp.CredentialCookie{Name: "jwt", Path: "/", HTTPOnly: true, SameSite: "Lax"}
	handler := workspacehttp.NewWorkspaceHTTPHandler(uc, cookie, "/", quietLogger())

	suite.app = fiber.New(fiber.Config{ErrorHandler: apperrors.FiberErrorHandler(quietLogger())})
	suite.app.Use(middleware.ClientContext())
	suite.app.Use(sessionhttp.NewSessionMiddleware(suite.manager).Load())
	handler.RegisterRoutes(suite.app)
}

func (suite *WorkspaceRouterTestSuite) store() *sessionusecase.Store {
	store, err := suite.manager.Store(context.Background(), testClientID)
	suite.Require().NoError(err)
	return store
}

func (suite *WorkspaceRouterTestSuite) login() {
	err := suite.store().Set(context.Background(), &sessionmodel.Session{ID: "u1", Name: "Ada", Email: "ada@example.com", Token: testToken})
	suite.Require().NoError(err)
}

func (suite *WorkspaceRouterTestSuite) request(method, target, contentType, body string, jwt string) *http.Response {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: "workly_cid", Value: testClientID})
	if jwt != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: jwt})
	}
	resp, err := suite.app.Test(req)
	suite.Require().NoError(err)
	return resp
}

func (suite *WorkspaceRouterTestSuite) decode(resp *http.Response) map[string]interface{} {
	var body map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (suite *WorkspaceRouterTestSuite) TestListOrganizations_IncludesUserWithoutToken() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodGet, "/organizations", "", "", testToken)

	// Assert
	suite.Equal(http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	orgs := body["organizations"].([]interface{})
	suite.Require().Len(orgs, 1)
	suite.Equal("Acme", orgs[0].(map[string]interface{})["name"])

	user := body["user"].(map[string]interface{})
	suite.Equal("u1", user["id"])
	suite.Empty(user["token"])
}

func (suite *WorkspaceRouterTestSuite) TestCookieTokenUsedWithoutSession() {
	// Act
	resp := suite.request(http.MethodGet, "/organizations", "", "", testToken)

	// Assert
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Nil(suite.decode(resp)["user"])
}

func (suite *WorkspaceRouterTestSuite) TestUnauthorizedGetInvalidatesAndRedirects() {
	// Arrange
	suite.login()
	suite.api.rejectAll = true

	// Act
	resp := suite.request(http.MethodGet, "/organizations?tab=all", "", "", testToken)

	// Assert
	suite.Equal(http.StatusTemporaryRedirect, resp.StatusCode)
	suite.Equal("/?callbackUrl="+url.QueryEscape("/organizations?tab=all"), resp.Header.Get("Location"))
	suite.True(clearsCookie(resp, "jwt"))
	suite.Equal(sessionmodel.StateAnonymous, suite.store().Get().State)
}

func (suite *WorkspaceRouterTestSuite) TestUnauthorizedMutationAnswers401WithRedirect() {
	// Arrange
	suite.login()
	suite.api.rejectAll = true

	// Act
	resp := suite.request(http.MethodPost, "/dashboard/o1/projects", "application/json", `{"name":"Web","key":"web"}`, testToken)

	// Assert
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	body := suite.decode(resp)
	suite.Equal("/?callbackUrl="+url.QueryEscape("/dashboard/o1/projects"), body["redirect"])
	suite.False(suite.store().Get().Authenticated())
}

func (suite *WorkspaceRouterTestSuite) TestMutationWithoutTokenNeverReachesAPI() {
	// Act
	resp := suite.request(http.MethodPost, "/organizations", "application/json", `{"name":"Acme"}`, "")

	// Assert
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	suite.Empty(suite.api.called())
}

func (suite *WorkspaceRouterTestSuite) TestCreateProject_JSON() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodPost, "/dashboard/o1/projects", "application/json", `{"name":" Web ","key":"web"}`, testToken)

	// Assert
	suite.Equal(http.StatusCreated, resp.StatusCode)
	body := suite.decode(resp)
	suite.Equal("/dashboard/o1/projects/p9", body["redirect"])
	suite.Equal("p9", body["project"].(map[string]interface{})["id"])

	sent := suite.api.body("POST /api/organizations/o1/projects")
	suite.Equal("Web", sent["name"])
	suite.Equal("WEB", sent["key"])
}

func (suite *WorkspaceRouterTestSuite) TestCreateProject_FormRedirects() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodPost, "/dashboard/o1/projects", fiber.MIMEApplicationForm, "name=Web&key=web", testToken)

	// Assert
	suite.Equal(http.StatusSeeOther, resp.StatusCode)
	suite.Equal("/dashboard/o1/projects/p9", resp.Header.Get("Location"))
}

func (suite *WorkspaceRouterTestSuite) TestCreateProject_ValidationSkipsAPI() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodPost, "/dashboard/o1/projects", "application/json", `{"name":"Web"}`, testToken)

	// Assert
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal("project key is required", suite.decode(resp)["message"])
	suite.Empty(suite.api.called())
}

func (suite *WorkspaceRouterTestSuite) TestGetProject_FiltersSortsAndListsAvailableMembers() {
	// Arrange
	suite.login()
	where := url.QueryEscape(`"bug" in labels`)

	// Act
	resp := suite.request(http.MethodGet, "/dashboard/o1/projects/p1?sort=priority&order=desc&where="+where, "", "", testToken)

	// Assert
	suite.Equal(http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	suite.Equal("LEAD", body["userRole"])

	issues := body["issues"].(map[string]interface{})
	suite.Equal(float64(2), issues["total"])
	list := issues["issues"].([]interface{})
	suite.Equal("i1", list[0].(map[string]interface{})["id"])
	suite.Equal("i3", list[1].(map[string]interface{})["id"])

	available := body["availableMembers"].([]interface{})
	suite.Require().Len(available, 1)
	suite.Equal("om2", available[0].(map[string]interface{})["id"])
}

func (suite *WorkspaceRouterTestSuite) TestGetProject_RejectsBadParameters() {
	suite.login()

	for _, query := range []string{"status=OPEN", "priority=CRITICAL", "sort=assignee", "order=sideways", "where=" + url.QueryEscape("number +")} {
		resp := suite.request(http.MethodGet, "/dashboard/o1/projects/p1?"+query, "", "", testToken)
		suite.Equal(http.StatusBadRequest, resp.StatusCode, query)
	}
	suite.Empty(suite.api.called())
}

func (suite *WorkspaceRouterTestSuite) TestGetProject_ReportsEveryBadParameter() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodGet, "/dashboard/o1/projects/p1?status=TODO,OPEN&priority=CRITICAL&order=up", "", "", testToken)

	// Assert
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	body := suite.decode(resp)
	suite.Equal("VALIDATION_ERROR", body["type"])
	problems, ok := body["errors"].([]interface{})
	suite.Require().True(ok)
	var fields []string
	for _, p := range problems {
		fields = append(fields, p.(map[string]interface{})["field"].(string))
	}
	suite.Equal([]string{"status", "priority", "order"}, fields)
	suite.Empty(suite.api.called())
}

func (suite *WorkspaceRouterTestSuite) TestDashboardLogsCarryOrganizationAndRoute() {
	// Arrange
	var logs bytes.Buffer
	suite.build(logger.NewLoggerFromConfig(&logger.Config{Level: "info", Format: "json"}, &logs), persistence.NewMemoryStorage())
	suite.login()

	// Act
	resp := suite.request(http.MethodPost, "/dashboard/o1/projects", "application/json", `{"name":"Web","key":"web"}`, testToken)

	// Assert
	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Contains(logs.String(), `"organization_id":"o1"`)
	suite.Contains(logs.String(), `"operation":"POST /dashboard/:orgId/projects"`)
}

func (suite *WorkspaceRouterTestSuite) TestGetIssue_NotFound() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodGet, "/dashboard/o1/issues/missing", "", "", testToken)

	// Assert
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.Equal("Issue not found", suite.decode(resp)["message"])
	suite.True(suite.store().Get().Authenticated())
}

func (suite *WorkspaceRouterTestSuite) TestDeleteComment_EmptyAPIAnswer() {
	// Arrange
	suite.login()

	// Act
	resp := suite.request(http.MethodDelete, "/dashboard/o1/issues/i1/comments/c1", "application/json", "", testToken)

	// Assert
	suite.Equal(http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	suite.Equal(true, body["success"])
	suite.Equal("/dashboard/o1/issues/i1", body["redirect"])
}

func (suite *WorkspaceRouterTestSuite) TestProfile() {
	// Anonymous clients are sent to log in.
	resp := suite.request(http.MethodGet, "/profile", "", "", "")
	suite.Equal(http.StatusTemporaryRedirect, resp.StatusCode)

	suite.login()
	resp = suite.request(http.MethodGet, "/profile", "", "", testToken)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("ada@example.com", suite.decode(resp)["user"].(map[string]interface{})["email"])
}

// flakyStorage fails every load while down is set.
type flakyStorage struct {
	*persistence.MemoryStorage
	down bool
}

func (f *flakyStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if f.down {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStorage.Load(ctx, key)
}

func (suite *WorkspaceRouterTestSuite) TestProfile_StorageOutageKeepsSession() {
	// Arrange
	memory := persistence.NewMemoryStorage()
	record := `{"id":"u1","name":"Ada","email":"ada@example.com","token":"` + testToken + `"}`
	suite.Require().NoError(memory.Save(context.Background(), "user:"+testClientID, []byte(record)))
	storage := &flakyStorage{MemoryStorage: memory, down: true}
	suite.build(quietLogger(), storage)

	// Act
	during := suite.request(http.MethodGet, "/profile", "", "", testToken)
	storage.down = false
	after := suite.request(http.MethodGet, "/profile", "", "", testToken)

	// Assert
	suite.Equal(http.StatusInternalServerError, during.StatusCode)
	suite.False(clearsCookie(during, "jwt"))
	suite.Equal(1, memory.Len())

	suite.Equal(http.StatusOK, after.StatusCode)
	suite.Equal("ada@example.com", suite.decode(after)["user"].(map[string]interface{})["email"])
}

func TestWorkspaceRouterTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceRouterTestSuite))
}
