package client

import (
	"context"

	"github.com/jirakit/jirakit/pkg/errors"
)

// BulkResult reports the outcome of a bulk operation per issue key
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

// Ok reports whether every issue succeeded
func (r *BulkResult) Ok() bool {
	return len(r.Failed) == 0
}

// Err returns an aggregate error covering the failed issues, or nil
func (r *BulkResult) Err() error {
	if r.Ok() {
		return nil
	}
	list := errors.NewErrorList()
	for key, err := range r.Failed {
		if jiraErr := errors.GetJiraError(err); jiraErr != nil {
			list.Add(jiraErr.WithDetail("issue", key))
			continue
		}
		list.Add(errors.NewInternalErrorWithCause("bulk operation failed for "+key, err))
	}
	return list.ToError()
}

// BulkTransition applies one transition to many issues. Issues are
// processed in order; a failure records and moves on rather than
// aborting the batch.
func (c *Client) BulkTransition(ctx context.Context, keys []string, transition string) *BulkResult {
	return c.bulk(ctx, keys, func(ctx context.Context, key string) error {
		return c.TransitionIssue(ctx, key, transition)
	})
}

// BulkAssign assigns many issues to one account
func (c *Client) BulkAssign(ctx context.Context, keys []string, accountID string) *BulkResult {
	return c.bulk(ctx, keys, func(ctx context.Context, key string) error {
		return c.AssignIssue(ctx, key, accountID)
	})
}

// BulkComment posts the same comment to many issues
func (c *Client) BulkComment(ctx context.Context, keys []string, body string) *BulkResult {
	return c.bulk(ctx, keys, func(ctx context.Context, key string) error {
		_, err := c.AddComment(ctx, key, body)
		return err
	})
}

// BulkWatch adds an account as a watcher on many issues
func (c *Client) BulkWatch(ctx context.Context, keys []string, accountID string) *BulkResult {
	return c.bulk(ctx, keys, func(ctx context.Context, key string) error {
		return c.AddWatcher(ctx, key, accountID)
	})
}

// BulkUnwatch removes an account from the watchers of many issues
func (c *Client) BulkUnwatch(ctx context.Context, keys []string, accountID string) *BulkResult {
	return c.bulk(ctx, keys, func(ctx context.Context, key string) error {
		return c.RemoveWatcher(ctx, key, accountID)
	})
}

func (c *Client) bulk(ctx context.Context, keys []string, op func(context.Context, string) error) *BulkResult {
	result := &BulkResult{Failed: map[string]error{}}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			result.Failed[key] = errors.NewTimeoutError("bulk operation")
			continue
		}
		if err := op(ctx, key); err != nil {
			c.logger.Warn("bulk operation failed for issue", map[string]interface{}{
				"issue": key,
				"error": err.Error(),
			})
			result.Failed[key] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, key)
	}
	return result
}
