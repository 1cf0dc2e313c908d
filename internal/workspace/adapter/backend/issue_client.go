package backend

import (
	"context"
	"net/url"

	"workly-web/internal/shared/apiclient"
	"workly-web/internal/workspace/domain/model"
	"workly-web/internal/workspace/domain/repository"
)

var _ repository.IssueAPI = (*IssueClient)(nil)

// IssueClient calls the /projects/issues endpoints.
type IssueClient struct {
	api *apiclient.Client
}

// NewIssueClient creates a new issue client
func NewIssueClient(api *apiclient.Client) *IssueClient {
	return &IssueClient{api: api}
}

type issueEnvelope struct {
	Issue model.Issue `json:"issue"`
}

func issuePath(issueID string) string {
	return "/projects/issues/" + url.PathEscape(issueID)
}

func (c *IssueClient) GetByID(ctx context.Context, token, issueID string) (*model.Issue, error) {
	var out issueEnvelope
	if err := c.api.Get(ctx, token, issuePath(issueID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

func (c *IssueClient) Create(ctx context.Context, token, projectID string, req model.CreateIssueRequest) (*model.Issue, error) {
	var out issueEnvelope
	if err := c.api.Post(ctx, token, "/projects/"+url.PathEscape(projectID)+"/issues", req, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

func (c *IssueClient) Update(ctx context.Context, token, issueID string, req model.UpdateIssueRequest) (*model.Issue, error) {
	var out issueEnvelope
	if err := c.api.Patch(ctx, token, issuePath(issueID), req, &out); err != nil {
		return nil, err
	}
	return &out.Issue, nil
}

func (c *IssueClient) AddComment(ctx context.Context, token, issueID string, req model.AddCommentRequest) (*model.IssueComment, error) {
	var out struct {
		Comment model.IssueComment `json:"comment"`
	}
	if err := c.api.Post(ctx, token, issuePath(issueID)+"/comments", req, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

func (c *IssueClient) GetComments(ctx context.Context, token, issueID string) ([]model.IssueComment, error) {
	var out struct {
		Comments []model.IssueComment `json:"comments"`
	}
	if err := c.api.Get(ctx, token, issuePath(issueID)+"/comments", nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *IssueClient) DeleteComment(ctx context.Context, token, issueID, commentID string) error {
	return c.api.Delete(ctx, token, issuePath(issueID)+"/comments/"+url.PathEscape(commentID), nil)
}
