package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jirakit/jirakit/pkg/types"
)

func TestJiraError(t *testing.T) {
	err := New(types.ErrorTypeValidation, ErrCodeValidation, "bad input")
	assert.Equal(t, types.ErrorTypeValidation, err.Type)
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "bad input")
	assert.Nil(t, err.Unwrap())
}

func TestJiraErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewWithCause(types.ErrorTypeExternal, ErrCodeUnreachable, "request failed", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetail(t *testing.T) {
	err := NewValidationError("bad").WithDetail("field", "summary").WithDetail("got", 42)
	assert.Equal(t, "summary", err.Details["field"])
	assert.Equal(t, 42, err.Details["got"])
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *JiraError
		errType  types.ErrorType
		code     ErrorCode
	}{
		{"validation", NewValidationError("x"), types.ErrorTypeValidation, ErrCodeValidation},
		{"missing field", NewMissingFieldError("summary"), types.ErrorTypeValidation, ErrCodeMissingField},
		{"unauthorized", NewUnauthorizedError("x"), types.ErrorTypeUnauthorized, ErrCodeUnauthorized},
		{"not found", NewNotFoundError("issue"), types.ErrorTypeNotFound, ErrCodeNotFound},
		{"rate limited", NewRateLimitedError("x"), types.ErrorTypeExternal, ErrCodeRateLimited},
		{"timeout", NewTimeoutError("search"), types.ErrorTypeExternal, ErrCodeTimeout},
		{"internal", NewInternalError("x"), types.ErrorTypeInternal, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestIsAndGetJiraError(t *testing.T) {
	jiraErr := NewNotFoundError("issue")
	assert.True(t, IsJiraError(jiraErr))
	assert.Equal(t, jiraErr, GetJiraError(jiraErr))

	plain := fmt.Errorf("plain")
	assert.False(t, IsJiraError(plain))
	assert.Nil(t, GetJiraError(plain))
}

func TestFromAPIBody(t *testing.T) {
	t.Run("joins message parts in stable order", func(t *testing.T) {
		body := &types.APIErrorBody{
			ErrorMessages: []string{"first", "second"},
			Errors: map[string]string{
				"summary": "is required",
				"project": "is invalid",
			},
			Message: "trailing",
		}
		err := FromAPIBody(body, 400)
		assert.Equal(t, "first; second; project: is invalid; summary: is required; trailing", err.Message)
		assert.Equal(t, 400, err.StatusCode)
		assert.Equal(t, types.ErrorTypeExternal, err.Type)
	})

	t.Run("status mapping", func(t *testing.T) {
		assert.Equal(t, types.ErrorTypeUnauthorized, FromAPIBody(nil, 401).Type)
		assert.Equal(t, ErrCodeForbidden, FromAPIBody(nil, 403).Code)
		assert.Equal(t, types.ErrorTypeNotFound, FromAPIBody(nil, 404).Type)
		assert.Equal(t, ErrCodeRateLimited, FromAPIBody(nil, 429).Code)
		assert.Equal(t, ErrCodeAPIError, FromAPIBody(nil, 500).Code)
	})

	t.Run("empty body gets default message", func(t *testing.T) {
		err := FromAPIBody(&types.APIErrorBody{}, 502)
		assert.Contains(t, err.Message, "502")
	})
}

func TestErrorList(t *testing.T) {
	list := NewErrorList()
	assert.False(t, list.HasErrors())
	require.NoError(t, list.ToError())

	list.Add(NewNotFoundError("PROJ-1"))
	list.Add(NewValidationError("bad key"))
	assert.True(t, list.HasErrors())

	err := list.ToError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJ-1")
	assert.Contains(t, err.Error(), "bad key")
}
