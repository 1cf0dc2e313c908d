package model

import "strings"

// IssueQuery is what the API can filter on server side.
type IssueQuery struct {
	Statuses   []IssueStatus
	Priorities []IssuePriority
	AssigneeID string
	Search     string
}

// IssueFilter narrows an issue list. Empty sets match everything; a non-empty
// Assignees set never matches unassigned issues.
type IssueFilter struct {
	Search     string
	Statuses   []IssueStatus
	Priorities []IssuePriority
	Assignees  []string
	Where      string
}

// Query returns the part of the filter the API understands. Only a single
// assignee can be passed through.
func (f IssueFilter) Query() IssueQuery {
	q := IssueQuery{
		Statuses:   f.Statuses,
		Priorities: f.Priorities,
		Search:     strings.TrimSpace(f.Search),
	}
	if len(f.Assignees) == 1 {
		q.AssigneeID = f.Assignees[0]
	}
	return q
}

// IssueSortField is a column issues can be sorted by.
type IssueSortField string

const (
	SortByNumber    IssueSortField = "number"
	SortByTitle     IssueSortField = "title"
	SortByStatus    IssueSortField = "status"
	SortByPriority  IssueSortField = "priority"
	SortByCreatedAt IssueSortField = "createdAt"
	SortByUpdatedAt IssueSortField = "updatedAt"
)

// Valid reports whether f is a known sort field.
func (f IssueSortField) Valid() bool {
	switch f {
	case SortByNumber, SortByTitle, SortByStatus, SortByPriority, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// IssueSort orders an issue list.
type IssueSort struct {
	Field IssueSortField
	Desc  bool
}

// DefaultIssueSort shows recently updated issues first.
func DefaultIssueSort() IssueSort {
	return IssueSort{Field: SortByUpdatedAt, Desc: true}
}

// ProjectFilter narrows a project list.
type ProjectFilter struct {
	Search          string
	IncludeArchived bool
}
