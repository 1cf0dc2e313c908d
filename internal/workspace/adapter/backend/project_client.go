package backend

import (
	"context"
	"net/url"
	"strings"

	"workly-web/internal/shared/apiclient"
	"workly-web/internal/workspace/domain/model"
	"workly-web/internal/workspace/domain/repository"
)

var _ repository.ProjectAPI = (*ProjectClient)(nil)

// ProjectClient calls the /projects endpoints.
type ProjectClient struct {
	api *apiclient.Client
}

// NewProjectClient creates a new project client
func NewProjectClient(api *apiclient.Client) *ProjectClient {
	return &ProjectClient{api: api}
}

type projectEnvelope struct {
	Project model.Project `json:"project"`
}

type projectMemberEnvelope struct {
	Member model.ProjectMember `json:"member"`
}

func projectPath(projectID string, rest ...string) string {
	parts := append([]string{"/projects", url.PathEscape(projectID)}, rest...)
	return strings.Join(parts, "/")
}

func (c *ProjectClient) ListByOrganization(ctx context.Context, token, orgID string) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.api.Get(ctx, token, "/organizations/"+url.PathEscape(orgID)+"/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *ProjectClient) Create(ctx context.Context, token, orgID string, req model.CreateProjectRequest) (*model.Project, error) {
	var out projectEnvelope
	if err := c.api.Post(ctx, token, "/organizations/"+url.PathEscape(orgID)+"/projects", req, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *ProjectClient) GetByID(ctx context.Context, token, projectID string) (*model.ProjectDetail, error) {
	var out model.ProjectDetail
	if err := c.api.Get(ctx, token, projectPath(projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ProjectClient) Update(ctx context.Context, token, projectID string, req model.UpdateProjectRequest) (*model.Project, error) {
	var out projectEnvelope
	if err := c.api.Patch(ctx, token, projectPath(projectID), req, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *ProjectClient) Archive(ctx context.Context, token, projectID string) (*model.Project, error) {
	var out projectEnvelope
	if err := c.api.Post(ctx, token, projectPath(projectID, "archive"), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *ProjectClient) Unarchive(ctx context.Context, token, projectID string) (*model.Project, error) {
	var out projectEnvelope
	if err := c.api.Post(ctx, token, projectPath(projectID, "unarchive"), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *ProjectClient) Delete(ctx context.Context, token, projectID string) error {
	return c.api.Delete(ctx, token, projectPath(projectID), nil)
}

func (c *ProjectClient) GetMembers(ctx context.Context, token, projectID string) ([]model.ProjectMember, error) {
	var out struct {
		Members []model.ProjectMember `json:"members"`
	}
	if err := c.api.Get(ctx, token, projectPath(projectID, "members"), nil, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

func (c *ProjectClient) AddMember(ctx context.Context, token, projectID string, req model.AddProjectMemberRequest) (*model.ProjectMember, error) {
	var out projectMemberEnvelope
	if err := c.api.Post(ctx, token, projectPath(projectID, "members"), req, &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

func (c *ProjectClient) RemoveMember(ctx context.Context, token, projectID, memberID string) error {
	return c.api.Delete(ctx, token, projectPath(projectID, "members", url.PathEscape(memberID)), nil)
}

func (c *ProjectClient) UpdateMemberRole(ctx context.Context, token, projectID, memberID string, role model.ProjectRole) (*model.ProjectMember, error) {
	var out projectMemberEnvelope
	body := model.UpdateMemberRoleRequest{Role: role}
	if err := c.api.Patch(ctx, token, projectPath(projectID, "members", url.PathEscape(memberID)), body, &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

// GetIssues lists a project's issues. Status and priority sets are sent as
// comma separated lists.
func (c *ProjectClient) GetIssues(ctx context.Context, token, projectID string, query model.IssueQuery) ([]model.Issue, error) {
	params := url.Values{}
	if len(query.Statuses) > 0 {
		statuses := make([]string, len(query.Statuses))
		for i, s := range query.Statuses {
			statuses[i] = string(s)
		}
		params.Set("status", strings.Join(statuses, ","))
	}
	if len(query.Priorities) > 0 {
		priorities := make([]string, len(query.Priorities))
		for i, p := range query.Priorities {
			priorities[i] = string(p)
		}
		params.Set("priority", strings.Join(priorities, ","))
	}
	if query.AssigneeID != "" {
		params.Set("assigneeId", query.AssigneeID)
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	var out struct {
		Issues []model.Issue `json:"issues"`
	}
	if err := c.api.Get(ctx, token, projectPath(projectID, "issues"), params, &out); err != nil {
		return nil, err
	}
	return out.Issues, nil
}
