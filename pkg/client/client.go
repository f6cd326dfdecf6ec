// Package client implements the Jira Cloud REST v3 client. All
// write surfaces that accept prose route it through pkg/adf, so the
// API only ever sees well-formed ADF documents.
package client

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/jirakit/jirakit/pkg/adf"
	"github.com/jirakit/jirakit/pkg/config"
	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/interfaces"
	"github.com/jirakit/jirakit/pkg/types"
)

const apiPrefix = "/rest/api/3"

// Client is a Jira REST API client. It is safe for concurrent use.
type Client struct {
	rest      *resty.Client
	cfg       *config.Config
	logger    interfaces.Logger
	metrics   interfaces.Metrics
	converter *adf.Converter
}

// New creates a client from a validated configuration
func New(cfg *config.Config, log interfaces.Logger, m interfaces.Metrics) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigInvalidError(err.Error())
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/") + apiPrefix).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && (r.StatusCode() == 429 || r.StatusCode() >= 500)
		})

	c := &Client{
		rest:    rest,
		cfg:     cfg,
		logger:  log,
		metrics: m,
	}

	switch types.AuthMode(cfg.AuthMode) {
	case types.AuthModeBasic:
		rest.SetBasicAuth(cfg.Email, cfg.APIToken)
	case types.AuthModeBearer:
		rest.SetAuthToken(cfg.APIToken)
	case types.AuthModeConnect:
		rest.OnBeforeRequest(c.signConnectRequest)
	}

	// the client doubles as the mention directory, so comment and
	// description bodies can resolve @mentions against the live API
	c.converter = adf.NewConverter(c, log)
	return c, nil
}

// Converter returns the document converter bound to this client
func (c *Client) Converter() *adf.Converter {
	return c.converter
}

// ConvertOptions returns the conversion toggles from configuration
func (c *Client) ConvertOptions() adf.Options {
	return adf.Options{
		ParseMarkdown: c.cfg.ParseMarkdown,
		ParseMentions: c.cfg.ParseMentions,
	}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx)
}

// check maps a finished request to a structured error, or nil on
// success, recording request accounting either way.
func (c *Client) check(resp *resty.Response, err error, operation string) error {
	labels := map[string]string{"operation": operation}
	if err != nil {
		c.metrics.Counter("jira_request_errors_total", 1, labels)
		if ctxErr := contextError(err); ctxErr != nil {
			return ctxErr
		}
		return errors.NewUnreachableError(c.cfg.BaseURL, err).WithDetail("operation", operation)
	}

	c.recordStats(types.RequestStats{
		Method:     resp.Request.Method,
		Endpoint:   operation,
		StatusCode: resp.StatusCode(),
		Duration:   resp.Time(),
	})

	if resp.IsError() {
		var body types.APIErrorBody
		_ = json.Unmarshal(resp.Body(), &body)
		c.logger.Debug("api request failed", map[string]interface{}{
			"operation": operation,
			"status":    resp.StatusCode(),
		})
		return errors.FromAPIBody(&body, resp.StatusCode()).WithDetail("operation", operation)
	}
	return nil
}

// recordStats feeds one request's accounting into the metrics sink
func (c *Client) recordStats(stats types.RequestStats) {
	labels := map[string]string{
		"operation": stats.Endpoint,
		"method":    stats.Method,
		"status":    strconv.Itoa(stats.StatusCode),
	}
	c.metrics.Counter("jira_requests_total", 1, labels)
	c.metrics.Timer("jira_request_seconds", stats.Duration.Seconds(), labels)
}

func contextError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, context.DeadlineExceeded.Error()) {
		return errors.NewTimeoutError("api request")
	}
	if strings.Contains(msg, context.Canceled.Error()) {
		return errors.NewTimeoutError("api request").WithDetail("cause", "canceled")
	}
	return nil
}

// Ping verifies connectivity and credentials by fetching the current
// user, retrying transient failures with exponential backoff.
func (c *Client) Ping(ctx context.Context) (*types.User, error) {
	var user types.User
	attempt := func() error {
		resp, err := c.newRequest(ctx).SetResult(&user).Get("/myself")
		if err := c.check(resp, err, "ping"); err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return &user, nil
}

// isPermanent reports whether retrying the request cannot help
func isPermanent(err error) bool {
	jiraErr := errors.GetJiraError(err)
	if jiraErr == nil {
		return false
	}
	switch jiraErr.Type {
	case types.ErrorTypeUnauthorized, types.ErrorTypeNotFound, types.ErrorTypeValidation:
		return true
	}
	return false
}
