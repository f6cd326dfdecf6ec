package client

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"

	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/types"
	"github.com/jirakit/jirakit/pkg/validation"
)

type attachmentFields struct {
	Fields struct {
		Attachment []types.Attachment `json:"attachment"`
	} `json:"fields"`
}

// ListAttachments lists attachment metadata for an issue
func (c *Client) ListAttachments(ctx context.Context, key string) ([]types.Attachment, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	var result attachmentFields
	resp, err := c.newRequest(ctx).
		SetQueryParam("fields", "attachment").
		SetResult(&result).
		Get("/issue/" + key)
	if err := c.check(resp, err, "list attachments"); err != nil {
		return nil, err
	}
	return result.Fields.Attachment, nil
}

// UploadAttachment attaches a local file to an issue. The XSRF check
// must be disabled with the no-check token header or the API rejects
// multipart uploads.
func (c *Client) UploadAttachment(ctx context.Context, key, path string) ([]types.Attachment, error) {
	key, err := validation.IssueKey(key)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewFileNotFoundError(path)
	}

	var attachments []types.Attachment
	resp, err := c.newRequest(ctx).
		SetHeader("X-Atlassian-Token", "no-check").
		SetFile("file", path).
		SetResult(&attachments).
		Post("/issue/" + key + "/attachments")
	if err := c.check(resp, err, "upload attachment"); err != nil {
		return nil, err
	}
	c.logger.Info("attachment uploaded", map[string]interface{}{
		"issue": key,
		"file":  filepath.Base(path),
	})
	return attachments, nil
}

// DownloadAttachment fetches attachment content by id, retrying
// transient failures.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID string) ([]byte, error) {
	if err := validation.Required(attachmentID, "attachment id"); err != nil {
		return nil, err
	}

	var data []byte
	err := retry.Do(
		func() error {
			resp, err := c.newRequest(ctx).Get("/attachment/content/" + attachmentID)
			if err := c.check(resp, err, "download attachment"); err != nil {
				return err
			}
			data = resp.Body()
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool { return !isPermanent(err) }),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteAttachment removes an attachment
func (c *Client) DeleteAttachment(ctx context.Context, attachmentID string) error {
	if err := validation.Required(attachmentID, "attachment id"); err != nil {
		return err
	}
	resp, err := c.newRequest(ctx).Delete("/attachment/" + attachmentID)
	return c.check(resp, err, "delete attachment")
}
