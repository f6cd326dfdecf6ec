package client

import (
	"context"

	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

// ListWorklogs lists the worklog entries on an issue
func (c *Client) ListWorklogs(ctx context.Context, key string) (*types.WorklogPage, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var page types.WorklogPage
	resp, err := c.newRequest(ctx).SetResult(&page).Get("/issue/" + key + "/worklog")
	if err := c.check(resp, err, "list worklogs"); err != nil {
		return nil, err
	}
	return &page, nil
}

// AddWorklog logs time against an issue. started is optional and
// defaults server-side to now; comment markdown compiles to ADF.
func (c *Client) AddWorklog(ctx context.Context, key, timeSpent, started, comment string) (*types.Worklog, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	if err := validation.TimeSpent(timeSpent); err != nil {
		return nil, err
	}

	body := map[string]interface{}{"timeSpent": timeSpent}
	if started != "" {
		body["started"] = started
	}
	if comment != "" {
		body["comment"] = c.converter.Convert(ctx, comment, c.ConvertOptions())
	}

	var worklog types.Worklog
	resp, err := c.newRequest(ctx).
		SetBody(body).
		SetResult(&worklog).
		Post("/issue/" + key + "/worklog")
	if err := c.check(resp, err, "add worklog"); err != nil {
		return nil, err
	}
	return &worklog, nil
}

// UpdateWorklog changes the time spent or comment on a worklog entry
func (c *Client) UpdateWorklog(ctx context.Context, key, worklogID, timeSpent, comment string) (*types.Worklog, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	if err := validation.Required(worklogID, "worklog id"); err != nil {
		return nil, err
	}

	body := map[string]interface{}{}
	if timeSpent != "" {
		if err := validation.TimeSpent(timeSpent); err != nil {
			return nil, err
		}
		body["timeSpent"] = timeSpent
	}
	if comment != "" {
		body["comment"] = c.converter.Convert(ctx, comment, c.ConvertOptions())
	}

	var worklog types.Worklog
	resp, err := c.newRequest(ctx).
		SetBody(body).
		SetResult(&worklog).
		Put("/issue/" + key + "/worklog/" + worklogID)
	if err := c.check(resp, err, "update worklog"); err != nil {
		return nil, err
	}
	return &worklog, nil
}

// DeleteWorklog removes a worklog entry
func (c *Client) DeleteWorklog(ctx context.Context, key, worklogID string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	if err := validation.Required(worklogID, "worklog id"); err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).Delete("/issue/" + key + "/worklog/" + worklogID)
	return c.check(resp, err, "delete worklog")
}
