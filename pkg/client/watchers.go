package client

import (
	"context"
	"strconv"

	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

// GetWatchers lists the watchers of an issue
func (c *Client) GetWatchers(ctx context.Context, key string) (*types.Watchers, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var watchers types.Watchers
	resp, err := c.newRequest(ctx).SetResult(&watchers).Get("/issue/" + key + "/watchers")
	if err := c.check(resp, err, "get watchers"); err != nil {
		return nil, err
	}
	return &watchers, nil
}

// AddWatcher adds an account to an issue's watcher list. The API
// takes the bare account id as a JSON string body.
func (c *Client) AddWatcher(ctx context.Context, key, accountID string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	if err := validation.Required(accountID, "account id"); err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(strconv.Quote(accountID)).
		Post("/issue/" + key + "/watchers")
	return c.check(resp, err, "add watcher")
}

// RemoveWatcher removes an account from an issue's watcher list
func (c *Client) RemoveWatcher(ctx context.Context, key, accountID string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	if err := validation.Required(accountID, "account id"); err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).
		SetQueryParam("accountId", accountID).
		Delete("/issue/" + key + "/watchers")
	return c.check(resp, err, "remove watcher")
}
