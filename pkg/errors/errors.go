// Package errors provides structured error handling for jirakit
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jirakit/jirakit/pkg/types"
)

// ErrorCode represents specific error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Authentication/Authorization errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// API errors
	ErrCodeAPIError    ErrorCode = "API_ERROR"
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	ErrCodeTimeout     ErrorCode = "TIMEOUT"
	ErrCodeUnreachable ErrorCode = "UNREACHABLE"

	// Configuration errors
	ErrCodeConfigError    ErrorCode = "CONFIG_ERROR"
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// File system errors
	ErrCodeFileError    ErrorCode = "FILE_ERROR"
	ErrCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"

	// System errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// JiraError represents a structured error in jirakit
type JiraError struct {
	Type       types.ErrorType        `json:"type"`
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *JiraError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *JiraError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *JiraError) WithDetail(key string, value interface{}) *JiraError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithStatusCode records the HTTP status the error came from
func (e *JiraError) WithStatusCode(code int) *JiraError {
	e.StatusCode = code
	return e
}

// New creates a new jirakit error
func New(errType types.ErrorType, code ErrorCode, message string) *JiraError {
	return &JiraError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// NewWithCause creates a new jirakit error wrapping a cause
func NewWithCause(errType types.ErrorType, code ErrorCode, message string, cause error) *JiraError {
	return &JiraError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validation error constructors
func NewValidationError(message string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeValidation, message)
}

func NewInvalidInputError(message string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeInvalidInput, message)
}

func NewMissingFieldError(field string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeMissingField,
		fmt.Sprintf("missing required field: %s", field)).WithDetail("field", field)
}

func NewInvalidFormatError(field, expectedFormat string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeInvalidFormat,
		fmt.Sprintf("invalid format for field %s, expected: %s", field, expectedFormat)).
		WithDetail("field", field).WithDetail("expected_format", expectedFormat)
}

// Authentication/Authorization error constructors
func NewUnauthorizedError(message string) *JiraError {
	return New(types.ErrorTypeUnauthorized, ErrCodeUnauthorized, message)
}

func NewForbiddenError(message string) *JiraError {
	return New(types.ErrorTypeUnauthorized, ErrCodeForbidden, message)
}

// Resource error constructors
func NewNotFoundError(resource string) *JiraError {
	return New(types.ErrorTypeNotFound, ErrCodeNotFound,
		fmt.Sprintf("%s not found", resource)).WithDetail("resource", resource)
}

// API error constructors
func NewAPIError(message string, statusCode int) *JiraError {
	return New(types.ErrorTypeExternal, ErrCodeAPIError, message).WithStatusCode(statusCode)
}

func NewAPIErrorWithCause(message string, cause error) *JiraError {
	return NewWithCause(types.ErrorTypeExternal, ErrCodeAPIError, message, cause)
}

func NewRateLimitedError(message string) *JiraError {
	return New(types.ErrorTypeExternal, ErrCodeRateLimited, message).WithStatusCode(429)
}

func NewTimeoutError(operation string) *JiraError {
	return New(types.ErrorTypeExternal, ErrCodeTimeout,
		fmt.Sprintf("%s operation timed out", operation)).WithDetail("operation", operation)
}

func NewUnreachableError(target string, cause error) *JiraError {
	return NewWithCause(types.ErrorTypeExternal, ErrCodeUnreachable,
		fmt.Sprintf("failed to reach %s", target), cause).WithDetail("target", target)
}

// Configuration error constructors
func NewConfigError(message string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeConfigError, message)
}

func NewConfigNotFoundError(configPath string) *JiraError {
	return New(types.ErrorTypeNotFound, ErrCodeConfigNotFound,
		fmt.Sprintf("configuration file not found: %s", configPath)).WithDetail("config_path", configPath)
}

func NewConfigInvalidError(message string) *JiraError {
	return New(types.ErrorTypeValidation, ErrCodeConfigInvalid, message)
}

// File system error constructors
func NewFileError(message string) *JiraError {
	return New(types.ErrorTypeInternal, ErrCodeFileError, message)
}

func NewFileNotFoundError(filePath string) *JiraError {
	return New(types.ErrorTypeNotFound, ErrCodeFileNotFound,
		fmt.Sprintf("file not found: %s", filePath)).WithDetail("file_path", filePath)
}

// System error constructors
func NewInternalError(message string) *JiraError {
	return New(types.ErrorTypeInternal, ErrCodeInternal, message)
}

func NewInternalErrorWithCause(message string, cause error) *JiraError {
	return NewWithCause(types.ErrorTypeInternal, ErrCodeInternal, message, cause)
}

// IsJiraError checks if an error is a JiraError
func IsJiraError(err error) bool {
	_, ok := err.(*JiraError)
	return ok
}

// GetJiraError extracts a JiraError from an error
func GetJiraError(err error) *JiraError {
	if jiraErr, ok := err.(*JiraError); ok {
		return jiraErr
	}
	return nil
}

// WrapError wraps an error as a JiraError
func WrapError(err error, errType types.ErrorType, code ErrorCode, message string) *JiraError {
	return NewWithCause(errType, code, message, err)
}

// FromAPIBody builds a JiraError from a Jira REST error payload. The
// payload may carry errorMessages, field-level errors, a bare message,
// or any combination; the parts are joined in that order.
func FromAPIBody(body *types.APIErrorBody, statusCode int) *JiraError {
	var parts []string
	if body != nil {
		parts = append(parts, body.ErrorMessages...)
		// Field errors joined in sorted field order so messages are
		// stable across runs.
		for _, field := range sortedKeys(body.Errors) {
			parts = append(parts, fmt.Sprintf("%s: %s", field, body.Errors[field]))
		}
		if body.Message != "" {
			parts = append(parts, body.Message)
		}
	}
	message := strings.Join(parts, "; ")
	if message == "" {
		message = fmt.Sprintf("API request failed with status %d", statusCode)
	}

	switch statusCode {
	case 401:
		return NewUnauthorizedError("invalid Jira credentials").WithStatusCode(statusCode)
	case 403:
		return NewForbiddenError("insufficient permissions").WithStatusCode(statusCode)
	case 404:
		return New(types.ErrorTypeNotFound, ErrCodeNotFound, message).WithStatusCode(statusCode)
	case 429:
		return NewRateLimitedError(message)
	default:
		return NewAPIError(message, statusCode)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrorList represents a list of errors
type ErrorList struct {
	Errors []*JiraError `json:"errors"`
}

// Error implements the error interface
func (el *ErrorList) Error() string {
	var messages []string
	for _, err := range el.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Add adds an error to the list
func (el *ErrorList) Add(err *JiraError) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if there are errors
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// ToError returns the ErrorList as an error if it has errors, otherwise nil
func (el *ErrorList) ToError() error {
	if el.HasErrors() {
		return el
	}
	return nil
}

// NewErrorList creates a new error list
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*JiraError, 0),
	}
}
