package model

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrInvalidOrgRole     = errors.New("invalid organization role")
	ErrInvalidProjectRole = errors.New("invalid project role")
	ErrInvalidStatus      = errors.New("invalid issue status")
	ErrInvalidPriority    = errors.New("invalid issue priority")
	ErrMissingName        = errors.New("name is required")
	ErrMissingProjectKey  = errors.New("project key is required")
	ErrMissingTitle       = errors.New("issue title is required")
	ErrMissingEmail       = errors.New("email is required")
	ErrMissingUserID      = errors.New("user id is required")
	ErrMissingContent     = errors.New("comment content is required")
	ErrEmptyUpdate        = errors.New("update has no fields")
)

// User is a Workly account as embedded in other resources.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// OrgRole is a member's role in an organization.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "OWNER"
	OrgRoleAdmin  OrgRole = "ADMIN"
	OrgRoleMember OrgRole = "MEMBER"
)

// Valid reports whether r is a known role.
func (r OrgRole) Valid() bool {
	switch r {
	case OrgRoleOwner, OrgRoleAdmin, OrgRoleMember:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may invite and remove members.
func (r OrgRole) CanManageMembers() bool {
	return r == OrgRoleOwner || r == OrgRoleAdmin
}

// ProjectRole is a member's role in a project.
type ProjectRole string

const (
	ProjectRoleLead   ProjectRole = "LEAD"
	ProjectRoleMember ProjectRole = "MEMBER"
	ProjectRoleViewer ProjectRole = "VIEWER"
)

// Valid reports whether r is a known role.
func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleLead, ProjectRoleMember, ProjectRoleViewer:
		return true
	}
	return false
}

// IssueStatus is the workflow column of an issue.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "TODO"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusInReview   IssueStatus = "IN_REVIEW"
	IssueStatusDone       IssueStatus = "DONE"
)

var statusOrder = map[IssueStatus]int{
	IssueStatusTodo:       0,
	IssueStatusInProgress: 1,
	IssueStatusInReview:   2,
	IssueStatusDone:       3,
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Rank orders statuses along the workflow; unknown statuses sort last.
func (s IssueStatus) Rank() int {
	if r, ok := statusOrder[s]; ok {
		return r
	}
	return len(statusOrder)
}

// Label is the display name of the status.
func (s IssueStatus) Label() string {
	switch s {
	case IssueStatusTodo:
		return "To Do"
	case IssueStatusInProgress:
		return "In Progress"
	case IssueStatusInReview:
		return "In Review"
	case IssueStatusDone:
		return "Done"
	}
	return string(s)
}

// IssuePriority is the severity of an issue.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "LOW"
	IssuePriorityMedium IssuePriority = "MEDIUM"
	IssuePriorityHigh   IssuePriority = "HIGH"
	IssuePriorityUrgent IssuePriority = "URGENT"
)

var priorityRank = map[IssuePriority]int{
	IssuePriorityLow:    0,
	IssuePriorityMedium: 1,
	IssuePriorityHigh:   2,
	IssuePriorityUrgent: 3,
}

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank orders priorities by severity, LOW lowest. Unknown priorities rank below LOW.
func (p IssuePriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Label is the display name of the priority.
func (p IssuePriority) Label() string {
	if p == "" {
		return ""
	}
	s := strings.ToLower(string(p))
	return strings.ToUpper(s[:1]) + s[1:]
}

// Organization is a tenant grouping projects and members.
type Organization struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Slug         string               `json:"slug"`
	LogoURL      *string              `json:"logoUrl"`
	Role         OrgRole              `json:"role,omitempty"`
	MemberCount  int                  `json:"memberCount,omitempty"`
	ProjectCount int                  `json:"projectCount,omitempty"`
	Projects     []Project            `json:"projects,omitempty"`
	Members      []OrganizationMember `json:"members,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// OrganizationMember links a user to an organization.
type OrganizationMember struct {
	ID   string  `json:"id"`
	Role OrgRole `json:"role"`
	User User    `json:"user"`
}

// OrganizationInvite is a pending invitation as seen by the invitee.
type OrganizationInvite struct {
	ID           string `json:"id"`
	Organization struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description,omitempty"`
		LogoURL     *string `json:"logoUrl"`
	} `json:"organization"`
}

// Invitation is a pending invitation as seen by the inviter.
type Invitation struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	InvitedEmail   string    `json:"invitedEmail"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Project belongs to one organization and holds issues.
type Project struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Key            string          `json:"key"`
	Description    string          `json:"description,omitempty"`
	OrganizationID string          `json:"organizationId"`
	IsArchived     bool            `json:"isArchived"`
	Members        []ProjectMember `json:"members,omitempty"`
	Issues         []Issue         `json:"issues,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ProjectMember links a user to a project.
type ProjectMember struct {
	ID        string      `json:"id"`
	Role      ProjectRole `json:"role"`
	User      User        `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ProjectRef is the short project reference embedded in issues.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is a unit of work in a project.
type Issue struct {
	ID          string         `json:"id"`
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      IssueStatus    `json:"status"`
	Priority    IssuePriority  `json:"priority"`
	ProjectID   string         `json:"projectId"`
	AssigneeID  string         `json:"assigneeId,omitempty"`
	CreatorID   string         `json:"creatorId"`
	Assignee    *User          `json:"assignee,omitempty"`
	Creator     User           `json:"creator"`
	Project     *ProjectRef    `json:"project,omitempty"`
	Comments    []IssueComment `json:"comments,omitempty"`
	Labels      []IssueLabel   `json:"labels,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// EffectiveAssigneeID returns the assignee id from either field, or "".
func (i *Issue) EffectiveAssigneeID() string {
	if i.Assignee != nil && i.Assignee.ID != "" {
		return i.Assignee.ID
	}
	return i.AssigneeID
}

// LabelNames returns the names of the issue's labels.
func (i *Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// IssueComment is a comment on an issue.
type IssueComment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// IssueLabel tags an issue.
type IssueLabel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
