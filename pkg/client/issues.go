package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

// CreateIssueInput carries the writable fields for issue creation.
// Description is markdown and is compiled to ADF before sending.
type CreateIssueInput struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	Priority    string
	AssigneeID  string
	ParentKey   string
	Labels      []string
	DueDate     string
}

// UpdateIssueInput carries optional field updates; nil means leave
// the field untouched.
type UpdateIssueInput struct {
	Summary     *string
	Description *string
	Priority    *string
	AssigneeID  *string
	Labels      []string
	DueDate     *string
}

// GetIssue fetches an issue by key
func (c *Client) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var issue types.Issue
	resp, err := c.newRequest(ctx).SetResult(&issue).Get("/issue/" + key)
	if err := c.check(resp, err, "get issue"); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates an issue and returns the created key
func (c *Client) CreateIssue(ctx context.Context, input CreateIssueInput) (*types.Issue, error) {
	projectKey, err := validation.ProjectKey(input.ProjectKey)
	if err != nil {
		return nil, err
	}
	if err := validation.Required(input.Summary, "summary"); err != nil {
		return nil, err
	}
	if input.DueDate != "" {
		if err := validation.Date(input.DueDate); err != nil {
			return nil, err
		}
	}

	issueType := input.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": projectKey},
		"summary":   input.Summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if input.Description != "" {
		fields["description"] = c.converter.Convert(ctx, input.Description, c.ConvertOptions())
	}
	if input.Priority != "" {
		fields["priority"] = map[string]string{"name": input.Priority}
	}
	if input.AssigneeID != "" {
		fields["assignee"] = map[string]string{"accountId": input.AssigneeID}
	}
	if input.ParentKey != "" {
		parentKey, err := validation.IssueKey(input.ParentKey)
		if err != nil {
			return nil, err
		}
		fields["parent"] = map[string]string{"key": parentKey}
	}
	if len(input.Labels) > 0 {
		fields["labels"] = input.Labels
	}
	if input.DueDate != "" {
		fields["duedate"] = input.DueDate
	}

	var created types.Issue
	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{"fields": fields}).
		SetResult(&created).
		Post("/issue")
	if err := c.check(resp, err, "create issue"); err != nil {
		return nil, err
	}
	c.logger.Info("issue created", map[string]interface{}{"key": created.Key})
	return &created, nil
}

// CreateSubtask creates a subtask under a parent issue, resolving the
// project's subtask issue type.
func (c *Client) CreateSubtask(ctx context.Context, parentKey, summary, description string) (*types.Issue, error) {
	parentKey, err := validation.IssueKey(parentKey)
	if err != nil {
		return nil, err
	}
	projectKey := strings.SplitN(parentKey, "-", 2)[0]

	subtaskType, err := c.ResolveSubtaskType(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": projectKey},
		"parent":    map[string]string{"key": parentKey},
		"summary":   summary,
		"issuetype": map[string]string{"id": subtaskType.ID},
	}
	if description != "" {
		fields["description"] = c.converter.Convert(ctx, description, c.ConvertOptions())
	}

	var created types.Issue
	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{"fields": fields}).
		SetResult(&created).
		Post("/issue")
	if err := c.check(resp, err, "create subtask"); err != nil {
		return nil, err
	}
	return &created, nil
}

// ResolveSubtaskType finds the subtask issue type for a project. The
// project's own type list is authoritative; the global type catalog
// is the fallback for older deployments that omit it.
func (c *Client) ResolveSubtaskType(ctx context.Context, projectKey string) (*types.IssueType, error) {
	project, err := c.GetProject(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	for i := range project.IssueTypes {
		if project.IssueTypes[i].Subtask {
			return &project.IssueTypes[i], nil
		}
	}

	var all []types.IssueType
	resp, err := c.newRequest(ctx).SetResult(&all).Get("/issuetype")
	if err := c.check(resp, err, "list issue types"); err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Subtask {
			return &all[i], nil
		}
	}
	return nil, errors.NewNotFoundError("subtask issue type for project " + projectKey)
}

// UpdateIssue applies partial field updates to an issue
func (c *Client) UpdateIssue(ctx context.Context, key string, input UpdateIssueInput) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if input.Summary != nil {
		fields["summary"] = *input.Summary
	}
	if input.Description != nil {
		fields["description"] = c.converter.Convert(ctx, *input.Description, c.ConvertOptions())
	}
	if input.Priority != nil {
		fields["priority"] = map[string]string{"name": *input.Priority}
	}
	if input.AssigneeID != nil {
		fields["assignee"] = map[string]string{"accountId": *input.AssigneeID}
	}
	if input.Labels != nil {
		fields["labels"] = input.Labels
	}
	if input.DueDate != nil {
		if err := validation.Date(*input.DueDate); err != nil {
			return err
		}
		fields["duedate"] = *input.DueDate
	}
	if len(fields) == 0 {
		return errors.NewInvalidInputError("no fields to update")
	}

	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{"fields": fields}).
		Put("/issue/" + key)
	return c.check(resp, err, "update issue")
}

// DeleteIssue deletes an issue, optionally cascading to subtasks
func (c *Client) DeleteIssue(ctx context.Context, key string, deleteSubtasks bool) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).
		SetQueryParam("deleteSubtasks", strconv.FormatBool(deleteSubtasks)).
		Delete("/issue/" + key)
	return c.check(resp, err, "delete issue")
}

// AssignIssue assigns an issue to an account, or unassigns with an
// empty account id.
func (c *Client) AssignIssue(ctx context.Context, key, accountID string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"accountId": nil}
	if accountID != "" {
		body["accountId"] = accountID
	}
	resp, err := c.newRequest(ctx).SetBody(body).Put("/issue/" + key + "/assignee")
	return c.check(resp, err, "assign issue")
}

// GetTransitions lists the workflow transitions available on an issue
func (c *Client) GetTransitions(ctx context.Context, key string) ([]types.Transition, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var result types.TransitionsResult
	resp, err := c.newRequest(ctx).SetResult(&result).Get("/issue/" + key + "/transitions")
	if err := c.check(resp, err, "get transitions"); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// TransitionIssue moves an issue through a transition named by id or
// case-insensitive name.
func (c *Client) TransitionIssue(ctx context.Context, key, idOrName string) error {
	key, err := validation.IssueKey(key)
	if err != nil {
		return err
	}
	if err := validation.Required(idOrName, "transition"); err != nil {
		return err
	}

	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return err
	}
	var target *types.Transition
	for i := range transitions {
		if transitions[i].ID == idOrName || strings.EqualFold(transitions[i].Name, idOrName) {
			target = &transitions[i]
			break
		}
	}
	if target == nil {
		names := make([]string, 0, len(transitions))
		for _, t := range transitions {
			names = append(names, t.Name)
		}
		return errors.NewNotFoundError(fmt.Sprintf("transition %q", idOrName)).
			WithDetail("available", strings.Join(names, ", "))
	}

	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{"transition": map[string]string{"id": target.ID}}).
		Post("/issue/" + key + "/transitions")
	return c.check(resp, err, "transition issue")
}

// Search runs a JQL query and returns one page of results
func (c *Client) Search(ctx context.Context, jql string, startAt, maxResults int, fields []string) (*types.SearchResult, error) {
	if err := validation.JQL(jql); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = 50
	}
	if len(fields) == 0 {
		fields = []string{"summary", "status", "issuetype", "priority", "assignee", "updated"}
	}

	var result types.SearchResult
	resp, err := c.newRequest(ctx).
		SetBody(map[string]interface{}{
			"jql":        jql,
			"startAt":    startAt,
			"maxResults": maxResults,
			"fields":     fields,
		}).
		SetResult(&result).
		Post("/search")
	if err := c.check(resp, err, "search"); err != nil {
		return nil, err
	}
	return &result, nil
}
