package client

import (
	"context"

	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

type commentPage struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	Comments   []types.Comment `json:"comments"`
}

// GetComments lists the comments on an issue
func (c *Client) GetComments(ctx context.Context, key string) ([]types.Comment, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var page commentPage
	resp, err := c.newRequest(ctx).SetResult(&page).Get("/issue/" + key + "/comment")
	if err := c.check(resp, err, "get comments"); err != nil {
		return nil, err
	}
	return page.Comments, nil
}

// AddComment compiles body markdown to ADF and posts it as a comment
func (c *Client) AddComment(ctx context.Context, key, body string) (*types.Comment, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	if err := validation.Required(body, "comment body"); err != nil {
		return nil, err
	}

	var comment types.Comment
	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{
			"body": c.converter.Convert(ctx, body, c.ConvertOptions()),
		}).
		SetResult(&comment).
		Post("/issue/" + key + "/comment")
	if err := c.check(resp, err, "add comment"); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's body
func (c *Client) UpdateComment(ctx context.Context, key, commentID, body string) (*types.Comment, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	if err := validation.All(
		func() error { return validation.Required(commentID, "comment id") },
		func() error { return validation.Required(body, "comment body") },
	); err != nil {
		return nil, err
	}

	var comment types.Comment
	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{
			"body": c.converter.Convert(ctx, body, c.ConvertOptions()),
		}).
		SetResult(&comment).
		Put("/issue/" + key + "/comment/" + commentID)
	if err := c.check(resp, err, "update comment"); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment from an issue
func (c *Client) DeleteComment(ctx context.Context, key, commentID string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	if err := validation.Required(commentID, "comment id"); err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).Delete("/issue/" + key + "/comment/" + commentID)
	return c.check(resp, err, "delete comment")
}
