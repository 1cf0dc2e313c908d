package usecase

import (
	"testing"
	"time"

	"workly-web/internal/workspace/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleIssues() []model.Issue {
	return []model.Issue{
		{ID: "i1", Number: 1, Title: "Login page crashes", Status: model.IssueStatusTodo, Priority: model.IssuePriorityUrgent,
			AssigneeID: "u1", CreatorID: "u2", Labels: []model.IssueLabel{{Name: "bug"}},
			CreatedAt: baseTime, UpdatedAt: baseTime.Add(3 * time.Hour)},
		{ID: "i2", Number: 2, Title: "Add dark mode", Status: model.IssueStatusInProgress, Priority: model.IssuePriorityLow,
			Assignee: &model.User{ID: "u2"}, CreatorID: "u1",
			CreatedAt: baseTime.Add(time.Hour), UpdatedAt: baseTime.Add(time.Hour)},
		{ID: "i3", Number: 3, Title: "login redirect loop", Status: model.IssueStatusDone, Priority: model.IssuePriorityHigh,
			CreatorID: "u1", Labels: []model.IssueLabel{{Name: "bug"}, {Name: "auth"}},
			CreatedAt: baseTime.Add(2 * time.Hour), UpdatedAt: baseTime.Add(2 * time.Hour)},
		{ID: "i4", Number: 4, Title: "Write docs", Status: model.IssueStatusInReview, Priority: model.IssuePriorityLow,
			AssigneeID: "u1", CreatorID: "u2",
			CreatedAt: baseTime.Add(3 * time.Hour), UpdatedAt: baseTime},
	}
}

func ids(issues []model.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}

func TestFilterIssues(t *testing.T) {
	tests := []struct {
		name   string
		filter model.IssueFilter
		want   []string
	}{
		{"empty filter keeps everything", model.IssueFilter{}, []string{"i1", "i2", "i3", "i4"}},
		{"search is case insensitive", model.IssueFilter{Search: "LOGIN"}, []string{"i1", "i3"}},
		{"status set", model.IssueFilter{Statuses: []model.IssueStatus{model.IssueStatusTodo, model.IssueStatusDone}}, []string{"i1", "i3"}},
		{"priority set", model.IssueFilter{Priorities: []model.IssuePriority{model.IssuePriorityLow}}, []string{"i2", "i4"}},
		{"assignee from either field", model.IssueFilter{Assignees: []string{"u2"}}, []string{"i2"}},
		{"assignee filter drops unassigned", model.IssueFilter{Assignees: []string{"u1", "u2"}}, []string{"i1", "i2", "i4"}},
		{"criteria combine", model.IssueFilter{Search: "login", Priorities: []model.IssuePriority{model.IssuePriorityUrgent}}, []string{"i1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterIssues(sampleIssues(), tt.filter, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterIssues_WithExpression(t *testing.T) {
	compiler, err := NewExpressionCompiler(512, 10000)
	require.NoError(t, err)
	where, err := compiler.Compile(`"bug" in labels && priorityRank >= 2`)
	require.NoError(t, err)

	got, err := FilterIssues(sampleIssues(), model.IssueFilter{}, where)

	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "i3"}, ids(got))
}

func TestSortIssues(t *testing.T) {
	tests := []struct {
		name string
		sort model.IssueSort
		want []string
	}{
		{"number asc", model.IssueSort{Field: model.SortByNumber}, []string{"i1", "i2", "i3", "i4"}},
		{"number desc", model.IssueSort{Field: model.SortByNumber, Desc: true}, []string{"i4", "i3", "i2", "i1"}},
		{"title ignores case", model.IssueSort{Field: model.SortByTitle}, []string{"i2", "i1", "i3", "i4"}},
		{"priority by rank", model.IssueSort{Field: model.SortByPriority, Desc: true}, []string{"i1", "i3", "i2", "i4"}},
		{"status by rank", model.IssueSort{Field: model.SortByStatus}, []string{"i1", "i2", "i4", "i3"}},
		{"created at", model.IssueSort{Field: model.SortByCreatedAt, Desc: true}, []string{"i4", "i3", "i2", "i1"}},
		{"default is updated desc", model.DefaultIssueSort(), []string{"i1", "i3", "i2", "i4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := sampleIssues()

			SortIssues(issues, tt.sort)

			assert.Equal(t, tt.want, ids(issues))
		})
	}
}

func TestSortIssues_StableForEqualKeys(t *testing.T) {
	issues := sampleIssues()

	SortIssues(issues, model.IssueSort{Field: model.SortByPriority})
	assert.Equal(t, []string{"i2", "i4", "i3", "i1"}, ids(issues))

	issues = sampleIssues()
	SortIssues(issues, model.IssueSort{Field: model.SortByPriority, Desc: true})
	// i2 and i4 tie on LOW and keep their input order.
	assert.Equal(t, []string{"i2", "i4"}, ids(issues[2:]))
}

func TestFilterProjects(t *testing.T) {
	projects := []model.Project{
		{ID: "p1", Name: "Website", Key: "WEB"},
		{ID: "p2", Name: "Mobile App", Key: "MOB"},
		{ID: "p3", Name: "Legacy site", Key: "OLD", IsArchived: true},
	}

	t.Run("hides archived by default", func(t *testing.T) {
		assert.Len(t, FilterProjects(projects, model.ProjectFilter{}), 2)
	})

	t.Run("includes archived when asked", func(t *testing.T) {
		assert.Len(t, FilterProjects(projects, model.ProjectFilter{IncludeArchived: true}), 3)
	})

	t.Run("search matches name or key", func(t *testing.T) {
		got := FilterProjects(projects, model.ProjectFilter{Search: "mob", IncludeArchived: true})
		require.Len(t, got, 1)
		assert.Equal(t, "p2", got[0].ID)

		got = FilterProjects(projects, model.ProjectFilter{Search: "site", IncludeArchived: true})
		require.Len(t, got, 2)
		assert.Equal(t, "p1", got[0].ID)
		assert.Equal(t, "p3", got[1].ID)
	})
}

func TestAvailableMembers(t *testing.T) {
	orgMembers := []model.OrganizationMember{
		{ID: "om1", User: model.User{ID: "u1"}},
		{ID: "om2", User: model.User{ID: "u2"}},
		{ID: "om3", User: model.User{ID: "u3"}},
	}
	projectMembers := []model.ProjectMember{
		{ID: "pm1", User: model.User{ID: "u2"}},
	}

	got := AvailableMembers(orgMembers, projectMembers)

	require.Len(t, got, 2)
	assert.Equal(t, "om1", got[0].ID)
	assert.Equal(t, "om3", got[1].ID)
}
