package client

import (
	"context"
	"strconv"

	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

type projectPage struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	IsLast     bool            `json:"isLast"`
	Values     []types.Project `json:"values"`
}

// ListProjects returns one page of projects visible to the user
func (c *Client) ListProjects(ctx context.Context, startAt, maxResults int) ([]types.Project, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	var page projectPage
	resp, err := c.newRequest(ctx).
		SetQueryParam("startAt", strconv.Itoa(startAt)).
		SetQueryParam("maxResults", strconv.Itoa(maxResults)).
		SetResult(&page).
		Get("/project/search")
	if err := c.check(resp, err, "list projects"); err != nil {
		return nil, err
	}
	return page.Values, nil
}

// GetProject fetches a project with its issue types expanded
func (c *Client) GetProject(ctx context.Context, key string) (*types.Project, error) {
	key, err := validation.ProjectKey(key)
	if err != nil {
		return nil, err
	}
	var project types.Project
	resp, err := c.newRequest(ctx).
		SetQueryParam("expand", "issueTypes,lead").
		SetResult(&project).
		Get("/project/" + key)
	if err := c.check(resp, err, "get project"); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListIssueTypes returns the issue types usable in a project
func (c *Client) ListIssueTypes(ctx context.Context, projectKey string) ([]types.IssueType, error) {
	project, err := c.GetProject(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	return project.IssueTypes, nil
}
