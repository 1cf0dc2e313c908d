package model

import "strings"

// OrganizationsOverview is the organizations page data.
type OrganizationsOverview struct {
	Organizations        []Organization       `json:"organizations"`
	PendingInvites       []OrganizationInvite `json:"pendingInvites"`
	PersonalOrganization *Organization        `json:"personalOrganization,omitempty"`
}

// OrganizationDetail is one organization plus the caller's role in it.
type OrganizationDetail struct {
	Organization Organization `json:"organization"`
	UserRole     OrgRole      `json:"userRole"`
}

// ProjectDetail is one project plus the caller's role in it.
type ProjectDetail struct {
	Project  Project     `json:"project"`
	UserRole ProjectRole `json:"userRole"`
}

// CreateOrganizationRequest creates an organization.
type CreateOrganizationRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description,omitempty" form:"description"`
}

// Validate trims and checks the request.
func (r *CreateOrganizationRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return ErrMissingName
	}
	return nil
}

// InviteMemberRequest invites someone to an organization by email.
type InviteMemberRequest struct {
	Email string  `json:"email" form:"email"`
	Role  OrgRole `json:"role" form:"role"`
}

// Validate trims and checks the request. The role defaults to MEMBER.
func (r *InviteMemberRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return ErrMissingEmail
	}
	if r.Role == "" {
		r.Role = OrgRoleMember
	}
	if !r.Role.Valid() || r.Role == OrgRoleOwner {
		return ErrInvalidOrgRole
	}
	return nil
}

// CreateProjectRequest creates a project.
type CreateProjectRequest struct {
	Name        string `json:"name" form:"name"`
	Key         string `json:"key" form:"key"`
	Description string `json:"description,omitempty" form:"description"`
}

// Validate trims and checks the request. Keys are upper-cased.
func (r *CreateProjectRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Key = strings.ToUpper(strings.TrimSpace(r.Key))
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return ErrMissingName
	}
	if r.Key == "" {
		return ErrMissingProjectKey
	}
	return nil
}

// UpdateProjectRequest changes project fields; nil fields are left alone.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Key         *string `json:"key,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate rejects empty updates and blank names or keys.
func (r *UpdateProjectRequest) Validate() error {
	if r.Name == nil && r.Key == nil && r.Description == nil {
		return ErrEmptyUpdate
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrMissingName
	}
	if r.Key != nil {
		key := strings.ToUpper(strings.TrimSpace(*r.Key))
		if key == "" {
			return ErrMissingProjectKey
		}
		r.Key = &key
	}
	return nil
}

// AddProjectMemberRequest adds an organization member to a project.
type AddProjectMemberRequest struct {
	UserID string      `json:"userId" form:"userId"`
	Role   ProjectRole `json:"role" form:"role"`
}

// Validate checks the request. The role defaults to MEMBER.
func (r *AddProjectMemberRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	if r.Role == "" {
		r.Role = ProjectRoleMember
	}
	if !r.Role.Valid() {
		return ErrInvalidProjectRole
	}
	return nil
}

// UpdateMemberRoleRequest changes a project member's role.
type UpdateMemberRoleRequest struct {
	Role ProjectRole `json:"role" form:"role"`
}

// Validate checks the role.
func (r *UpdateMemberRoleRequest) Validate() error {
	if !r.Role.Valid() {
		return ErrInvalidProjectRole
	}
	return nil
}

// CreateIssueRequest creates an issue. The priority defaults to MEDIUM.
type CreateIssueRequest struct {
	Title       string        `json:"title" form:"title"`
	Description string        `json:"description,omitempty" form:"description"`
	Priority    IssuePriority `json:"priority" form:"priority"`
	AssigneeID  string        `json:"assigneeId,omitempty" form:"assigneeId"`
}

// Validate trims and checks the request.
func (r *CreateIssueRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ErrMissingTitle
	}
	if r.Priority == "" {
		r.Priority = IssuePriorityMedium
	}
	if !r.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// UpdateIssueRequest changes issue fields; nil fields are left alone.
type UpdateIssueRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *IssueStatus   `json:"status,omitempty"`
	Priority    *IssuePriority `json:"priority,omitempty"`
	AssigneeID  *string        `json:"assigneeId,omitempty"`
}

// Validate rejects empty updates and unknown enum values.
func (r *UpdateIssueRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil && r.AssigneeID == nil {
		return ErrEmptyUpdate
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return ErrMissingTitle
	}
	if r.Status != nil && !r.Status.Valid() {
		return ErrInvalidStatus
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// AddCommentRequest adds a comment to an issue.
type AddCommentRequest struct {
	Content string `json:"content" form:"content"`
}

// Validate trims and checks the comment.
func (r *AddCommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return ErrMissingContent
	}
	return nil
}
