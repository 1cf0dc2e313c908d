package usecase

import (
	"context"

	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"
	"workly-web/internal/workspace/config"
	"workly-web/internal/workspace/domain/model"
	"workly-web/internal/workspace/domain/repository"

	"go.uber.org/zap"
)

// IssueListRequest selects, orders and pages a project's issues.
type IssueListRequest struct {
	Filter   model.IssueFilter
	Sort     model.IssueSort
	Page     int
	PageSize int
}

// IssueList is one page of a project's issues.
type IssueList struct {
	Issues   []model.Issue `json:"issues"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// OrganizationDashboard is the data behind /dashboard/:orgId.
type OrganizationDashboard struct {
	Organization model.Organization `json:"organization"`
	UserRole     model.OrgRole      `json:"userRole"`
	Projects     []model.Project    `json:"projects"`
}

// ProjectBoard is the data behind /dashboard/:orgId/projects/:projectId.
type ProjectBoard struct {
	Project          model.Project              `json:"project"`
	UserRole         model.ProjectRole          `json:"userRole"`
	Issues           IssueList                  `json:"issues"`
	Members          []model.ProjectMember      `json:"members"`
	AvailableMembers []model.OrganizationMember `json:"availableMembers"`
}

// IssueDetail is an issue with its comments.
type IssueDetail struct {
	Issue    model.Issue          `json:"issue"`
	Comments []model.IssueComment `json:"comments"`
}

// WorkspaceUsecase drives the organization, project and issue views. Every
// call carries the caller's API token; API errors are returned unchanged.
type WorkspaceUsecase struct {
	orgs     repository.OrganizationAPI
	projects repository.ProjectAPI
	issues   repository.IssueAPI
	compiler *ExpressionCompiler
	config   *config.Config
	logger   logger.Logger
}

// NewWorkspaceUsecase creates the usecase.
func NewWorkspaceUsecase(
	orgs repository.OrganizationAPI,
	projects repository.ProjectAPI,
	issues repository.IssueAPI,
	cfg *config.Config,
	log logger.Logger,
) (*WorkspaceUsecase, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	compiler, err := NewExpressionCompiler(cfg.ExpressionMaxLength, cfg.ExpressionCostLimit)
	if err != nil {
		return nil, err
	}
	return &WorkspaceUsecase{
		orgs:     orgs,
		projects: projects,
		issues:   issues,
		compiler: compiler,
		config:   cfg,
		logger:   log.WithComponent("workspace"),
	}, nil
}

func invalid(err error) error {
	return apperrors.NewValidationError(err.Error()).WithCause(err).WithComponent("workspace")
}

// Organizations

func (uc *WorkspaceUsecase) Organizations(ctx context.Context, token string) (*model.OrganizationsOverview, error) {
	return uc.orgs.GetAll(ctx, token)
}

func (uc *WorkspaceUsecase) CreateOrganization(ctx context.Context, token string, req model.CreateOrganizationRequest) (*model.Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	org, err := uc.orgs.Create(ctx, token, req)
	if err != nil {
		return nil, err
	}
	uc.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.String("organization_id", org.ID))).Info("Organization created")
	return org, nil
}

func (uc *WorkspaceUsecase) AcceptInvite(ctx context.Context, token, inviteID string) (*model.OrganizationMember, error) {
	return uc.orgs.AcceptInvite(ctx, token, inviteID)
}

func (uc *WorkspaceUsecase) RejectInvite(ctx context.Context, token, inviteID string) error {
	return uc.orgs.RejectInvite(ctx, token, inviteID)
}

// Dashboard returns the organization with its projects narrowed by filter.
func (uc *WorkspaceUsecase) Dashboard(ctx context.Context, token, orgID string, filter model.ProjectFilter) (*OrganizationDashboard, error) {
	detail, err := uc.orgs.GetByID(ctx, token, orgID)
	if err != nil {
		return nil, err
	}
	projects, err := uc.projects.ListByOrganization(ctx, token, orgID)
	if err != nil {
		return nil, err
	}
	return &OrganizationDashboard{
		Organization: detail.Organization,
		UserRole:     detail.UserRole,
		Projects:     FilterProjects(projects, filter),
	}, nil
}

func (uc *WorkspaceUsecase) DeleteOrganization(ctx context.Context, token, orgID string) error {
	if err := uc.orgs.Delete(ctx, token, orgID); err != nil {
		return err
	}
	uc.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.String("organization_id", orgID))).Info("Organization deleted")
	return nil
}

func (uc *WorkspaceUsecase) OrganizationMembers(ctx context.Context, token, orgID string) ([]model.OrganizationMember, error) {
	return uc.orgs.GetMembers(ctx, token, orgID)
}

func (uc *WorkspaceUsecase) InviteMember(ctx context.Context, token, orgID string, req model.InviteMemberRequest) (*model.Invitation, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.orgs.InviteMember(ctx, token, orgID, req)
}

func (uc *WorkspaceUsecase) RemoveOrganizationMember(ctx context.Context, token, orgID, memberID string) error {
	return uc.orgs.RemoveMember(ctx, token, orgID, memberID)
}

// Projects

func (uc *WorkspaceUsecase) Projects(ctx context.Context, token, orgID string, filter model.ProjectFilter) ([]model.Project, error) {
	projects, err := uc.projects.ListByOrganization(ctx, token, orgID)
	if err != nil {
		return nil, err
	}
	return FilterProjects(projects, filter), nil
}

func (uc *WorkspaceUsecase) CreateProject(ctx context.Context, token, orgID string, req model.CreateProjectRequest) (*model.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	project, err := uc.projects.Create(ctx, token, orgID, req)
	if err != nil {
		return nil, err
	}
	uc.logger.WithContext(ctx).WithFields(logger.ZapFields(
		zap.String("organization_id", orgID),
		zap.String("project_id", project.ID),
	)).Info("Project created")
	return project, nil
}

// Board loads a project with one page of its issues and the member lists.
// The where expression is compiled before any API call.
func (uc *WorkspaceUsecase) Board(ctx context.Context, token, orgID, projectID string, req IssueListRequest) (*ProjectBoard, error) {
	where, err := uc.compileWhere(req.Filter.Where)
	if err != nil {
		return nil, err
	}

	detail, err := uc.projects.GetByID(ctx, token, projectID)
	if err != nil {
		return nil, err
	}
	issues, err := uc.projects.GetIssues(ctx, token, projectID, req.Filter.Query())
	if err != nil {
		return nil, err
	}
	list, err := uc.listIssues(issues, req, where)
	if err != nil {
		return nil, err
	}

	members, err := uc.projects.GetMembers(ctx, token, projectID)
	if err != nil {
		return nil, err
	}
	orgMembers, err := uc.orgs.GetMembers(ctx, token, orgID)
	if err != nil {
		return nil, err
	}

	return &ProjectBoard{
		Project:          detail.Project,
		UserRole:         detail.UserRole,
		Issues:           *list,
		Members:          members,
		AvailableMembers: AvailableMembers(orgMembers, members),
	}, nil
}

// Issues returns one page of a project's issues.
func (uc *WorkspaceUsecase) Issues(ctx context.Context, token, projectID string, req IssueListRequest) (*IssueList, error) {
	where, err := uc.compileWhere(req.Filter.Where)
	if err != nil {
		return nil, err
	}
	issues, err := uc.projects.GetIssues(ctx, token, projectID, req.Filter.Query())
	if err != nil {
		return nil, err
	}
	return uc.listIssues(issues, req, where)
}

func (uc *WorkspaceUsecase) compileWhere(expr string) (*IssuePredicate, error) {
	if expr == "" {
		return nil, nil
	}
	return uc.compiler.Compile(expr)
}

func (uc *WorkspaceUsecase) listIssues(issues []model.Issue, req IssueListRequest, where *IssuePredicate) (*IssueList, error) {
	filtered, err := FilterIssues(issues, req.Filter, where)
	if err != nil {
		return nil, invalid(err)
	}

	sortBy := req.Sort
	if !sortBy.Field.Valid() {
		sortBy = model.DefaultIssueSort()
	}
	SortIssues(filtered, sortBy)

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = uc.config.DefaultPageSize
	}
	if size > uc.config.MaxPageSize {
		size = uc.config.MaxPageSize
	}

	// Compare before multiplying so a huge page cannot overflow.
	start := len(filtered)
	if page-1 <= len(filtered)/size {
		start = min((page-1)*size, len(filtered))
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	return &IssueList{
		Issues:   filtered[start:end],
		Total:    len(filtered),
		Page:     page,
		PageSize: size,
	}, nil
}

func (uc *WorkspaceUsecase) UpdateProject(ctx context.Context, token, projectID string, req model.UpdateProjectRequest) (*model.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.projects.Update(ctx, token, projectID, req)
}

func (uc *WorkspaceUsecase) ArchiveProject(ctx context.Context, token, projectID string) (*model.Project, error) {
	return uc.projects.Archive(ctx, token, projectID)
}

func (uc *WorkspaceUsecase) UnarchiveProject(ctx context.Context, token, projectID string) (*model.Project, error) {
	return uc.projects.Unarchive(ctx, token, projectID)
}

func (uc *WorkspaceUsecase) DeleteProject(ctx context.Context, token, projectID string) error {
	if err := uc.projects.Delete(ctx, token, projectID); err != nil {
		return err
	}
	uc.logger.WithContext(ctx).WithFields(logger.ZapFields(zap.String("project_id", projectID))).Info("Project deleted")
	return nil
}

func (uc *WorkspaceUsecase) AddProjectMember(ctx context.Context, token, projectID string, req model.AddProjectMemberRequest) (*model.ProjectMember, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.projects.AddMember(ctx, token, projectID, req)
}

func (uc *WorkspaceUsecase) UpdateProjectMemberRole(ctx context.Context, token, projectID, memberID string, req model.UpdateMemberRoleRequest) (*model.ProjectMember, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.projects.UpdateMemberRole(ctx, token, projectID, memberID, req.Role)
}

func (uc *WorkspaceUsecase) RemoveProjectMember(ctx context.Context, token, projectID, memberID string) error {
	return uc.projects.RemoveMember(ctx, token, projectID, memberID)
}

// Issues

func (uc *WorkspaceUsecase) CreateIssue(ctx context.Context, token, projectID string, req model.CreateIssueRequest) (*model.Issue, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.issues.Create(ctx, token, projectID, req)
}

// Issue returns an issue with its comments. Comments embedded in the issue
// are used when present.
func (uc *WorkspaceUsecase) Issue(ctx context.Context, token, issueID string) (*IssueDetail, error) {
	issue, err := uc.issues.GetByID(ctx, token, issueID)
	if err != nil {
		return nil, err
	}
	comments := issue.Comments
	if comments == nil {
		comments, err = uc.issues.GetComments(ctx, token, issueID)
		if err != nil {
			return nil, err
		}
	}
	return &IssueDetail{Issue: *issue, Comments: comments}, nil
}

func (uc *WorkspaceUsecase) UpdateIssue(ctx context.Context, token, issueID string, req model.UpdateIssueRequest) (*model.Issue, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.issues.Update(ctx, token, issueID, req)
}

func (uc *WorkspaceUsecase) AddComment(ctx context.Context, token, issueID string, req model.AddCommentRequest) (*model.IssueComment, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return uc.issues.AddComment(ctx, token, issueID, req)
}

func (uc *WorkspaceUsecase) DeleteComment(ctx context.Context, token, issueID, commentID string) error {
	return uc.issues.DeleteComment(ctx, token, issueID, commentID)
}
