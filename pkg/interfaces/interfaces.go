// Package interfaces defines the cross-package interfaces for jirakit components
package interfaces

import (
	"context"

	"github.com/jirakit/jirakit/pkg/types"
)

// UserDirectory is the directory-lookup collaborator consumed by the
// mention detector. Implementations resolve raw mention identifiers to
// directory users; a failed lookup returns an error and the caller
// falls back to literal text.
type UserDirectory interface {
	// ResolveAccountID resolves an opaque account id to a user
	ResolveAccountID(ctx context.Context, accountID string) (*types.User, error)

	// ResolveQuery resolves an email or username query to the best
	// matching user
	ResolveQuery(ctx context.Context, query string) (*types.User, error)
}

// Logger defines the interface for logging implementations
type Logger interface {
	// Debug logs debug level messages
	Debug(msg string, fields ...map[string]interface{})

	// Info logs info level messages
	Info(msg string, fields ...map[string]interface{})

	// Warn logs warning level messages
	Warn(msg string, fields ...map[string]interface{})

	// Error logs error level messages
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs fatal level messages and exits
	Fatal(msg string, err error, fields ...map[string]interface{})

	// WithFields returns a logger with additional fields
	WithFields(fields map[string]interface{}) Logger
}

// Metrics defines the interface for metrics collection
type Metrics interface {
	// Counter increments a counter metric
	Counter(name string, value float64, labels map[string]string)

	// Gauge sets a gauge metric
	Gauge(name string, value float64, labels map[string]string)

	// Timer records timing metrics in seconds
	Timer(name string, duration float64, labels map[string]string)
}
