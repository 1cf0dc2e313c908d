package backend

import (
	"context"
	"net/url"

	"workly-web/internal/shared/apiclient"
	"workly-web/internal/workspace/domain/model"
	"workly-web/internal/workspace/domain/repository"
)

var _ repository.OrganizationAPI = (*OrganizationClient)(nil)

// OrganizationClient calls the /organizations endpoints.
type OrganizationClient struct {
	api *apiclient.Client
}

// NewOrganizationClient creates a new organization client
func NewOrganizationClient(api *apiclient.Client) *OrganizationClient {
	return &OrganizationClient{api: api}
}

// GetAll returns the caller's organizations, pending invites and personal organization.
func (c *OrganizationClient) GetAll(ctx context.Context, token string) (*model.OrganizationsOverview, error) {
	var out model.OrganizationsOverview
	if err := c.api.Get(ctx, token, "/organizations", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *OrganizationClient) GetByID(ctx context.Context, token, orgID string) (*model.OrganizationDetail, error) {
	var out model.OrganizationDetail
	if err := c.api.Get(ctx, token, "/organizations/"+url.PathEscape(orgID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *OrganizationClient) GetMembers(ctx context.Context, token, orgID string) ([]model.OrganizationMember, error) {
	var out struct {
		Members []model.OrganizationMember `json:"members"`
	}
	if err := c.api.Get(ctx, token, "/organizations/"+url.PathEscape(orgID)+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

func (c *OrganizationClient) Create(ctx context.Context, token string, req model.CreateOrganizationRequest) (*model.Organization, error) {
	var out struct {
		Organization model.Organization `json:"organization"`
	}
	if err := c.api.Post(ctx, token, "/organizations", req, &out); err != nil {
		return nil, err
	}
	return &out.Organization, nil
}

func (c *OrganizationClient) Delete(ctx context.Context, token, orgID string) error {
	return c.api.Delete(ctx, token, "/organizations/"+url.PathEscape(orgID), nil)
}

func (c *OrganizationClient) InviteMember(ctx context.Context, token, orgID string, req model.InviteMemberRequest) (*model.Invitation, error) {
	var out struct {
		Invitation model.Invitation `json:"invitation"`
	}
	if err := c.api.Post(ctx, token, "/organizations/"+url.PathEscape(orgID)+"/members/invite", req, &out); err != nil {
		return nil, err
	}
	return &out.Invitation, nil
}

func (c *OrganizationClient) AcceptInvite(ctx context.Context, token, inviteID string) (*model.OrganizationMember, error) {
	var out struct {
		Member model.OrganizationMember `json:"member"`
	}
	if err := c.api.Post(ctx, token, "/organizations/invites/"+url.PathEscape(inviteID)+"/accept", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

func (c *OrganizationClient) RejectInvite(ctx context.Context, token, inviteID string) error {
	return c.api.Post(ctx, token, "/organizations/invites/"+url.PathEscape(inviteID)+"/reject", struct{}{}, nil)
}

func (c *OrganizationClient) RemoveMember(ctx context.Context, token, orgID, memberID string) error {
	return c.api.Delete(ctx, token, "/organizations/"+url.PathEscape(orgID)+"/members/"+url.PathEscape(memberID), nil)
}
