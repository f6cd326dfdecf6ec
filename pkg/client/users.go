package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/types"
)

// Myself returns the authenticated user
func (c *Client) Myself(ctx context.Context) (*types.User, error) {
	var user types.User
	resp, err := c.newRequest(ctx).SetResult(&user).Get("/myself")
	if err := c.check(resp, err, "get myself"); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user by account id
func (c *Client) GetUser(ctx context.Context, accountID string) (*types.User, error) {
	var user types.User
	resp, err := c.newRequest(ctx).
		SetQueryParam("accountId", accountID).
		SetResult(&user).
		Get("/user")
	if err := c.check(resp, err, "get user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers searches the directory by display name or email
func (c *Client) SearchUsers(ctx context.Context, query string, maxResults int) ([]types.User, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	var users []types.User
	resp, err := c.newRequest(ctx).
		SetQueryParam("query", query).
		SetQueryParam("maxResults", strconv.Itoa(maxResults)).
		SetResult(&users).
		Get("/user/search")
	if err := c.check(resp, err, "search users"); err != nil {
		return nil, err
	}
	return users, nil
}

// ResolveAccountID implements interfaces.UserDirectory
func (c *Client) ResolveAccountID(ctx context.Context, accountID string) (*types.User, error) {
	return c.GetUser(ctx, accountID)
}

// ResolveQuery implements interfaces.UserDirectory. An exact email
// match wins; otherwise the first active search hit is taken.
func (c *Client) ResolveQuery(ctx context.Context, query string) (*types.User, error) {
	users, err := c.SearchUsers(ctx, query, 10)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].EmailAddress, query) {
			return &users[i], nil
		}
	}
	for i := range users {
		if users[i].Active {
			return &users[i], nil
		}
	}
	if len(users) > 0 {
		return &users[0], nil
	}
	return nil, errors.NewNotFoundError("user " + query)
}
