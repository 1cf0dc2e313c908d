package http

import (
	"errors"
	"net/url"
	"strings"

	sessionhttp "workly-web/internal/session/adapter/http"
	sessionmodel "workly-web/internal/session/domain/model"
	sessionusecase "workly-web/internal/session/usecase"
	"workly-web/internal/shared/apiclient"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/shared/utils"
	"workly-web/internal/workspace/domain/model"
	"workly-web/internal/workspace/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WorkspaceHTTPHandler serves the organization, project and issue views.
type WorkspaceHTTPHandler struct {
	uc          *usecase.WorkspaceUsecase
	cookie      sessionhttp.CredentialCookie
	landingPath string
	logger      logger.Logger
}

// NewWorkspaceHTTPHandler creates a new workspace HTTP handler
func NewWorkspaceHTTPHandler(uc *usecase.WorkspaceUsecase, cookie sessionhttp.CredentialCookie, landingPath string, log logger.Logger) *WorkspaceHTTPHandler {
	if log == nil {
		log = logger.Default()
	}
	return &WorkspaceHTTPHandler{
		uc:          uc,
		cookie:      cookie,
		landingPath: landingPath,
		logger:      log.WithComponent("workspace_http"),
	}
}

// RegisterRoutes mounts the views. The session middleware must already run.
func (h *WorkspaceHTTPHandler) RegisterRoutes(router fiber.Router) {
	orgs := router.Group("/organizations")
	orgs.Get("/", h.ListOrganizations)
	orgs.Post("/", h.CreateOrganization)
	orgs.Post("/invites/:inviteId/accept", h.AcceptInvite)
	orgs.Post("/invites/:inviteId/reject", h.RejectInvite)

	dash := router.Group("/dashboard/:orgId")
	dash.Get("/", h.GetDashboard)
	dash.Delete("/", h.DeleteOrganization)
	dash.Get("/members", h.ListOrganizationMembers)
	dash.Post("/members/invite", h.InviteMember)
	dash.Delete("/members/:memberId", h.RemoveOrganizationMember)

	dash.Get("/projects", h.ListProjects)
	dash.Post("/projects", h.CreateProject)
	dash.Get("/projects/:projectId", h.GetProject)
	dash.Patch("/projects/:projectId", h.UpdateProject)
	dash.Delete("/projects/:projectId", h.DeleteProject)
	dash.Post("/projects/:projectId/archive", h.ArchiveProject)
	dash.Post("/projects/:projectId/unarchive", h.UnarchiveProject)
	dash.Post("/projects/:projectId/members", h.AddProjectMember)
	dash.Patch("/projects/:projectId/members/:memberId", h.UpdateProjectMember)
	dash.Delete("/projects/:projectId/members/:memberId", h.RemoveProjectMember)
	dash.Post("/projects/:projectId/issues", h.CreateIssue)

	dash.Get("/issues/:issueId", h.GetIssue)
	dash.Patch("/issues/:issueId", h.UpdateIssue)
	dash.Post("/issues/:issueId/comments", h.AddComment)
	dash.Delete("/issues/:issueId/comments/:commentId", h.DeleteComment)

	router.Get("/profile", h.Profile)
}

// viewer is the caller of a view: its session store, API token and user.
type viewer struct {
	store *sessionusecase.Store
	state sessionmodel.State
	token string
	user  *sessionmodel.Session
}

// viewer resolves the caller. The token comes from the session, or from the
// credential cookie when the session is not known to this process.
func (h *WorkspaceHTTPHandler) viewer(c *fiber.Ctx) (*viewer, error) {
	store := sessionhttp.CurrentStore(c)
	if store == nil {
		return nil, apperrors.NewInternalError("session not loaded").WithComponent("workspace_http")
	}
	ctx := utils.WithOperation(c.UserContext(), c.Method()+" "+c.Route().Path)
	if orgID := c.Params("orgId"); orgID != "" {
		ctx = utils.WithOrganizationID(ctx, orgID)
	}
	c.SetUserContext(ctx)

	snap := store.Get()
	v := &viewer{store: store, state: snap.State}
	if snap.Session != nil {
		v.user = snap.Session.Public()
		v.token = snap.Session.Token
	}
	if v.token == "" {
		v.token = utils.GetTokenOrDefault(c.UserContext(), "")
	}
	return v, nil
}

// render answers with body plus the session user.
func (v *viewer) render(c *fiber.Ctx, status int, body fiber.Map) error {
	body["user"] = v.user
	return c.Status(status).JSON(body)
}

// done answers a mutation: JSON clients get body, browsers are sent to target.
func (v *viewer) done(c *fiber.Ctx, status int, target string, body fiber.Map) error {
	if body == nil {
		body = fiber.Map{}
	}
	body["success"] = true
	body["user"] = v.user
	nav := sessionhttp.NewNavigator()
	nav.Push(target)
	return nav.Respond(c, status, body)
}

// fail turns a usecase error into the answer. An API 401 means the session is
// no longer trusted: it is invalidated and the caller sent back to log in.
func (h *WorkspaceHTTPHandler) fail(c *fiber.Ctx, v *viewer, err error) error {
	if apiclient.IsUnauthorized(err) {
		return h.unauthorized(c, v)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apiclient.ToAppError(err)
}

func (h *WorkspaceHTTPHandler) unauthorized(c *fiber.Ctx, v *viewer) error {
	ctx := c.UserContext()
	// An Unknown store was never restored, so the persisted record is left alone.
	if v.state != sessionmodel.StateUnknown {
		if err := v.store.Invalidate(ctx, sessionmodel.ReasonUnauthorized); err != nil {
			h.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.Error(err))).Warn("Session invalidated but storage was not updated")
		}
	}
	h.cookie.Clear(c)

	q := url.Values{}
	q.Set("callbackUrl", c.OriginalURL())
	target := h.landingPath + "?" + q.Encode()

	if c.Method() == fiber.MethodGet {
		return c.Redirect(target, fiber.StatusTemporaryRedirect)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"type":     apperrors.ErrorTypeAuthentication,
		"message":  "Your session has expired. Please log in again.",
		"redirect": target,
	})
}

// begin resolves the viewer and rejects callers without any token before
// the API is asked. A nil viewer with a nil error means the answer is written.
func (h *WorkspaceHTTPHandler) begin(c *fiber.Ctx) (*viewer, error) {
	v, err := h.viewer(c)
	if err != nil {
		return nil, err
	}
	if v.token == "" {
		return nil, h.unauthorized(c, v)
	}
	return v, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err).WithComponent("workspace_http")
	}
	return nil
}

// Organizations

func (h *WorkspaceHTTPHandler) ListOrganizations(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	overview, err := h.uc.Organizations(c.UserContext(), v.token)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{
		"organizations":        overview.Organizations,
		"pendingInvites":       overview.PendingInvites,
		"personalOrganization": overview.PersonalOrganization,
	})
}

func (h *WorkspaceHTTPHandler) CreateOrganization(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.CreateOrganizationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	org, err := h.uc.CreateOrganization(c.UserContext(), v.token, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, "/dashboard/"+org.ID, fiber.Map{"organization": org})
}

func (h *WorkspaceHTTPHandler) AcceptInvite(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	member, err := h.uc.AcceptInvite(c.UserContext(), v.token, c.Params("inviteId"))
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, "/organizations", fiber.Map{"member": member})
}

func (h *WorkspaceHTTPHandler) RejectInvite(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	if err := h.uc.RejectInvite(c.UserContext(), v.token, c.Params("inviteId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, "/organizations", nil)
}

// GetDashboard shows an organization and its projects. ?search= narrows the
// projects; ?archived=true includes archived ones.
func (h *WorkspaceHTTPHandler) GetDashboard(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	dash, err := h.uc.Dashboard(c.UserContext(), v.token, c.Params("orgId"), projectFilter(c))
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{
		"organization": dash.Organization,
		"userRole":     dash.UserRole,
		"projects":     dash.Projects,
	})
}

func (h *WorkspaceHTTPHandler) DeleteOrganization(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	if err := h.uc.DeleteOrganization(c.UserContext(), v.token, c.Params("orgId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, "/organizations", nil)
}

func (h *WorkspaceHTTPHandler) ListOrganizationMembers(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	members, err := h.uc.OrganizationMembers(c.UserContext(), v.token, c.Params("orgId"))
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{"members": members})
}

func (h *WorkspaceHTTPHandler) InviteMember(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.InviteMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID := c.Params("orgId")
	invitation, err := h.uc.InviteMember(c.UserContext(), v.token, orgID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, "/dashboard/"+orgID+"/members", fiber.Map{"invitation": invitation})
}

func (h *WorkspaceHTTPHandler) RemoveOrganizationMember(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID := c.Params("orgId")
	if err := h.uc.RemoveOrganizationMember(c.UserContext(), v.token, orgID, c.Params("memberId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, "/dashboard/"+orgID+"/members", nil)
}

// Projects

func (h *WorkspaceHTTPHandler) ListProjects(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	projects, err := h.uc.Projects(c.UserContext(), v.token, c.Params("orgId"), projectFilter(c))
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{"projects": projects})
}

func (h *WorkspaceHTTPHandler) CreateProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID := c.Params("orgId")
	project, err := h.uc.CreateProject(c.UserContext(), v.token, orgID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, projectPath(orgID, project.ID), fiber.Map{"project": project})
}

// GetProject shows the project board. Issue list parameters: search, status,
// priority and assignee (comma separated), where, sort, order, page, pageSize.
func (h *WorkspaceHTTPHandler) GetProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	req, err := issueListRequest(c)
	if err != nil {
		return err
	}
	board, err := h.uc.Board(c.UserContext(), v.token, c.Params("orgId"), c.Params("projectId"), req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{
		"project":          board.Project,
		"userRole":         board.UserRole,
		"issues":           board.Issues,
		"members":          board.Members,
		"availableMembers": board.AvailableMembers,
	})
}

func (h *WorkspaceHTTPHandler) UpdateProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	project, err := h.uc.UpdateProject(c.UserContext(), v.token, projectID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, projectPath(orgID, projectID), fiber.Map{"project": project})
}

func (h *WorkspaceHTTPHandler) DeleteProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID := c.Params("orgId")
	if err := h.uc.DeleteProject(c.UserContext(), v.token, c.Params("projectId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, "/dashboard/"+orgID, nil)
}

func (h *WorkspaceHTTPHandler) ArchiveProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	project, err := h.uc.ArchiveProject(c.UserContext(), v.token, projectID)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, projectPath(orgID, projectID), fiber.Map{"project": project})
}

func (h *WorkspaceHTTPHandler) UnarchiveProject(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	project, err := h.uc.UnarchiveProject(c.UserContext(), v.token, projectID)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, projectPath(orgID, projectID), fiber.Map{"project": project})
}

func (h *WorkspaceHTTPHandler) AddProjectMember(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.AddProjectMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	member, err := h.uc.AddProjectMember(c.UserContext(), v.token, projectID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, projectPath(orgID, projectID), fiber.Map{"member": member})
}

func (h *WorkspaceHTTPHandler) UpdateProjectMember(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.UpdateMemberRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	member, err := h.uc.UpdateProjectMemberRole(c.UserContext(), v.token, projectID, c.Params("memberId"), req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, projectPath(orgID, projectID), fiber.Map{"member": member})
}

func (h *WorkspaceHTTPHandler) RemoveProjectMember(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID, projectID := c.Params("orgId"), c.Params("projectId")
	if err := h.uc.RemoveProjectMember(c.UserContext(), v.token, projectID, c.Params("memberId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, projectPath(orgID, projectID), nil)
}

// Issues

func (h *WorkspaceHTTPHandler) CreateIssue(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.CreateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID := c.Params("orgId")
	issue, err := h.uc.CreateIssue(c.UserContext(), v.token, c.Params("projectId"), req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, issuePath(orgID, issue.ID), fiber.Map{"issue": issue})
}

func (h *WorkspaceHTTPHandler) GetIssue(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	detail, err := h.uc.Issue(c.UserContext(), v.token, c.Params("issueId"))
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{
		"issue":    detail.Issue,
		"comments": detail.Comments,
	})
}

func (h *WorkspaceHTTPHandler) UpdateIssue(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.UpdateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID, issueID := c.Params("orgId"), c.Params("issueId")
	issue, err := h.uc.UpdateIssue(c.UserContext(), v.token, issueID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, issuePath(orgID, issueID), fiber.Map{"issue": issue})
}

func (h *WorkspaceHTTPHandler) AddComment(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	var req model.AddCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgID, issueID := c.Params("orgId"), c.Params("issueId")
	comment, err := h.uc.AddComment(c.UserContext(), v.token, issueID, req)
	if err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusCreated, issuePath(orgID, issueID), fiber.Map{"comment": comment})
}

func (h *WorkspaceHTTPHandler) DeleteComment(c *fiber.Ctx) error {
	v, err := h.begin(c)
	if v == nil {
		return err
	}
	orgID, issueID := c.Params("orgId"), c.Params("issueId")
	if err := h.uc.DeleteComment(c.UserContext(), v.token, issueID, c.Params("commentId")); err != nil {
		return h.fail(c, v, err)
	}
	return v.done(c, fiber.StatusOK, issuePath(orgID, issueID), nil)
}

// Profile shows the session user. A client without a session is treated like
// an expired one.
func (h *WorkspaceHTTPHandler) Profile(c *fiber.Ctx) error {
	v, err := h.viewer(c)
	if err != nil {
		return err
	}
	if v.user == nil {
		if v.state == sessionmodel.StateUnknown {
			return apperrors.NewInfrastructureError("Session storage is unavailable").WithComponent("workspace_http")
		}
		return h.unauthorized(c, v)
	}
	return v.render(c, fiber.StatusOK, fiber.Map{})
}

// Helper methods

func projectPath(orgID, projectID string) string {
	return "/dashboard/" + orgID + "/projects/" + projectID
}

func issuePath(orgID, issueID string) string {
	return "/dashboard/" + orgID + "/issues/" + issueID
}

func projectFilter(c *fiber.Ctx) model.ProjectFilter {
	return model.ProjectFilter{
		Search:          c.Query("search"),
		IncludeArchived: c.QueryBool("archived", false),
	}
}

func issueListRequest(c *fiber.Ctx) (usecase.IssueListRequest, error) {
	req := usecase.IssueListRequest{
		Filter: model.IssueFilter{
			Search:    c.Query("search"),
			Assignees: splitList(c.Query("assignee")),
			Where:     strings.TrimSpace(c.Query("where")),
		},
		Sort:     model.DefaultIssueSort(),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 0),
	}
	problems := apperrors.NewValidationErrors()

	for _, s := range splitList(c.Query("status")) {
		status := model.IssueStatus(strings.ToUpper(s))
		if !status.Valid() {
			problems.Add("status", "unknown status", s)
			continue
		}
		req.Filter.Statuses = append(req.Filter.Statuses, status)
	}
	for _, p := range splitList(c.Query("priority")) {
		priority := model.IssuePriority(strings.ToUpper(p))
		if !priority.Valid() {
			problems.Add("priority", "unknown priority", p)
			continue
		}
		req.Filter.Priorities = append(req.Filter.Priorities, priority)
	}

	if field := c.Query("sort"); field != "" {
		req.Sort.Field = model.IssueSortField(field)
		if !req.Sort.Field.Valid() {
			problems.Add("sort", "unknown sort field", field)
		}
	}
	switch order := c.Query("order"); strings.ToLower(order) {
	case "":
	case "asc":
		req.Sort.Desc = false
	case "desc":
		req.Sort.Desc = true
	default:
		problems.Add("order", "order must be asc or desc", order)
	}

	if problems.HasErrors() {
		return req, problems.ToAppError().WithComponent("workspace_http")
	}
	return req, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
