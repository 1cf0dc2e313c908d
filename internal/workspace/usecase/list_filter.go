package usecase

import (
	"sort"
	"strings"

	"workly-web/internal/workspace/domain/model"
)

// FilterIssues returns the issues matching f, in their original order. where
// may be nil. An evaluation error aborts the filter.
func FilterIssues(issues []model.Issue, f model.IssueFilter, where *IssuePredicate) ([]model.Issue, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	statuses := toSet(f.Statuses)
	priorities := toSet(f.Priorities)
	assignees := toSet(f.Assignees)

	out := make([]model.Issue, 0, len(issues))
	for i := range issues {
		issue := &issues[i]
		if search != "" && !strings.Contains(strings.ToLower(issue.Title), search) {
			continue
		}
		if len(statuses) > 0 && !statuses[issue.Status] {
			continue
		}
		if len(priorities) > 0 && !priorities[issue.Priority] {
			continue
		}
		if len(assignees) > 0 {
			assignee := issue.EffectiveAssigneeID()
			if assignee == "" || !assignees[assignee] {
				continue
			}
		}
		if where != nil {
			ok, err := where.Match(issue)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, *issue)
	}
	return out, nil
}

// SortIssues sorts issues in place. Equal keys keep their relative order in
// both directions.
func SortIssues(issues []model.Issue, s model.IssueSort) {
	cmp := issueComparator(s.Field)
	sort.SliceStable(issues, func(i, j int) bool {
		c := cmp(&issues[i], &issues[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

func issueComparator(field model.IssueSortField) func(a, b *model.Issue) int {
	switch field {
	case model.SortByNumber:
		return func(a, b *model.Issue) int { return compareInt(a.Number, b.Number) }
	case model.SortByTitle:
		return func(a, b *model.Issue) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case model.SortByStatus:
		return func(a, b *model.Issue) int { return compareInt(a.Status.Rank(), b.Status.Rank()) }
	case model.SortByPriority:
		return func(a, b *model.Issue) int { return compareInt(a.Priority.Rank(), b.Priority.Rank()) }
	case model.SortByCreatedAt:
		return func(a, b *model.Issue) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b *model.Issue) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
}

// FilterProjects matches search against name and key, and hides archived
// projects unless asked for.
func FilterProjects(projects []model.Project, f model.ProjectFilter) []model.Project {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsArchived && !f.IncludeArchived {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Key), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AvailableMembers returns the organization members who are not yet in the project.
func AvailableMembers(orgMembers []model.OrganizationMember, projectMembers []model.ProjectMember) []model.OrganizationMember {
	inProject := make(map[string]bool, len(projectMembers))
	for _, pm := range projectMembers {
		inProject[pm.User.ID] = true
	}

	out := make([]model.OrganizationMember, 0, len(orgMembers))
	for _, om := range orgMembers {
		if !inProject[om.User.ID] {
			out = append(out, om)
		}
	}
	return out
}

func toSet[T comparable](values []T) map[T]bool {
	set := make(map[T]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
