package repository

import (
	"context"

	"workly-web/internal/workspace/domain/model"
)

// Every call carries the caller's API token. Errors are apiclient errors, so a
// 401 can be told apart with apiclient.IsUnauthorized.

// OrganizationAPI defines the organization endpoints of the Workly API.
type OrganizationAPI interface {
	GetAll(ctx context.Context, token string) (*model.OrganizationsOverview, error)
	GetByID(ctx context.Context, token, orgID string) (*model.OrganizationDetail, error)
	GetMembers(ctx context.Context, token, orgID string) ([]model.OrganizationMember, error)
	Create(ctx context.Context, token string, req model.CreateOrganizationRequest) (*model.Organization, error)
	Delete(ctx context.Context, token, orgID string) error
	InviteMember(ctx context.Context, token, orgID string, req model.InviteMemberRequest) (*model.Invitation, error)
	AcceptInvite(ctx context.Context, token, inviteID string) (*model.OrganizationMember, error)
	RejectInvite(ctx context.Context, token, inviteID string) error
	RemoveMember(ctx context.Context, token, orgID, memberID string) error
}

// ProjectAPI defines the project endpoints of the Workly API.
type ProjectAPI interface {
	ListByOrganization(ctx context.Context, token, orgID string) ([]model.Project, error)
	Create(ctx context.Context, token, orgID string, req model.CreateProjectRequest) (*model.Project, error)
	GetByID(ctx context.Context, token, projectID string) (*model.ProjectDetail, error)
	Update(ctx context.Context, token, projectID string, req model.UpdateProjectRequest) (*model.Project, error)
	Archive(ctx context.Context, token, projectID string) (*model.Project, error)
	Unarchive(ctx context.Context, token, projectID string) (*model.Project, error)
	Delete(ctx context.Context, token, projectID string) error
	GetMembers(ctx context.Context, token, projectID string) ([]model.ProjectMember, error)
	AddMember(ctx context.Context, token, projectID string, req model.AddProjectMemberRequest) (*model.ProjectMember, error)
	RemoveMember(ctx context.Context, token, projectID, memberID string) error
	UpdateMemberRole(ctx context.Context, token, projectID, memberID string, role model.ProjectRole) (*model.ProjectMember, error)
	GetIssues(ctx context.Context, token, projectID string, query model.IssueQuery) ([]model.Issue, error)
}

// IssueAPI defines the issue endpoints of the Workly API.
type IssueAPI interface {
	GetByID(ctx context.Context, token, issueID string) (*model.Issue, error)
	Create(ctx context.Context, token, projectID string, req model.CreateIssueRequest) (*model.Issue, error)
	Update(ctx context.Context, token, issueID string, req model.UpdateIssueRequest) (*model.Issue, error)
	AddComment(ctx context.Context, token, issueID string, req model.AddCommentRequest) (*model.IssueComment, error)
	GetComments(ctx context.Context, token, issueID string) ([]model.IssueComment, error)
	DeleteComment(ctx context.Context, token, issueID, commentID string) error
}
