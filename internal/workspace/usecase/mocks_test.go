package usecase

import (
	"context"

	"workly-web/internal/workspace/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockOrganizationAPI struct {
	mock.Mock
}

func (m *MockOrganizationAPI) GetAll(ctx context.Context, token string) (*model.OrganizationsOverview, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationsOverview), args.Error(1)
}

func (m *MockOrganizationAPI) GetByID(ctx context.Context, token, orgID string) (*model.OrganizationDetail, error) {
	args := m.Called(ctx, token, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationDetail), args.Error(1)
}

func (m *MockOrganizationAPI) GetMembers(ctx context.Context, token, orgID string) ([]model.OrganizationMember, error) {
	args := m.Called(ctx, token, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrganizationMember), args.Error(1)
}

func (m *MockOrganizationAPI) Create(ctx context.Context, token string, req model.CreateOrganizationRequest) (*model.Organization, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *MockOrganizationAPI) Delete(ctx context.Context, token, orgID string) error {
	return m.Called(ctx, token, orgID).Error(0)
}

func (m *MockOrganizationAPI) InviteMember(ctx context.Context, token, orgID string, req model.InviteMemberRequest) (*model.Invitation, error) {
	args := m.Called(ctx, token, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockOrganizationAPI) AcceptInvite(ctx context.Context, token, inviteID string) (*model.OrganizationMember, error) {
	args := m.Called(ctx, token, inviteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationMember), args.Error(1)
}

func (m *MockOrganizationAPI) RejectInvite(ctx context.Context, token, inviteID string) error {
	return m.Called(ctx, token, inviteID).Error(0)
}

func (m *MockOrganizationAPI) RemoveMember(ctx context.Context, token, orgID, memberID string) error {
	return m.Called(ctx, token, orgID, memberID).Error(0)
}

type MockProjectAPI struct {
	mock.Mock
}

func (m *MockProjectAPI) ListByOrganization(ctx context.Context, token, orgID string) ([]model.Project, error) {
	args := m.Called(ctx, token, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectAPI) Create(ctx context.Context, token, orgID string, req model.CreateProjectRequest) (*model.Project, error) {
	args := m.Called(ctx, token, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectAPI) GetByID(ctx context.Context, token, projectID string) (*model.ProjectDetail, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectDetail), args.Error(1)
}

func (m *MockProjectAPI) Update(ctx context.Context, token, projectID string, req model.UpdateProjectRequest) (*model.Project, error) {
	args := m.Called(ctx, token, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectAPI) Archive(ctx context.Context, token, projectID string) (*model.Project, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectAPI) Unarchive(ctx context.Context, token, projectID string) (*model.Project, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectAPI) Delete(ctx context.Context, token, projectID string) error {
	return m.Called(ctx, token, projectID).Error(0)
}

func (m *MockProjectAPI) GetMembers(ctx context.Context, token, projectID string) ([]model.ProjectMember, error) {
	args := m.Called(ctx, token, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProjectMember), args.Error(1)
}

func (m *MockProjectAPI) AddMember(ctx context.Context, token, projectID string, req model.AddProjectMemberRequest) (*model.ProjectMember, error) {
	args := m.Called(ctx, token, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectMember), args.Error(1)
}

func (m *MockProjectAPI) RemoveMember(ctx context.Context, token, projectID, memberID string) error {
	return m.Called(ctx, token, projectID, memberID).Error(0)
}

func (m *MockProjectAPI) UpdateMemberRole(ctx context.Context, token, projectID, memberID string, role model.ProjectRole) (*model.ProjectMember, error) {
	args := m.Called(ctx, token, projectID, memberID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectMember), args.Error(1)
}

func (m *MockProjectAPI) GetIssues(ctx context.Context, token, projectID string, query model.IssueQuery) ([]model.Issue, error) {
	args := m.Called(ctx, token, projectID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Issue), args.Error(1)
}

type MockIssueAPI struct {
	mock.Mock
}

func (m *MockIssueAPI) GetByID(ctx context.Context, token, issueID string) (*model.Issue, error) {
	args := m.Called(ctx, token, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueAPI) Create(ctx context.Context, token, projectID string, req model.CreateIssueRequest) (*model.Issue, error) {
	args := m.Called(ctx, token, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueAPI) Update(ctx context.Context, token, issueID string, req model.UpdateIssueRequest) (*model.Issue, error) {
	args := m.Called(ctx, token, issueID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueAPI) AddComment(ctx context.Context, token, issueID string, req model.AddCommentRequest) (*model.IssueComment, error) {
	args := m.Called(ctx, token, issueID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssueComment), args.Error(1)
}

func (m *MockIssueAPI) GetComments(ctx context.Context, token, issueID string) ([]model.IssueComment, error) {
	args := m.Called(ctx, token, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IssueComment), args.Error(1)
}

func (m *MockIssueAPI) DeleteComment(ctx context.Context, token, issueID, commentID string) error {
	return m.Called(ctx, token, issueID, commentID).Error(0)
}
