package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jirakit/jirakit/pkg/config"
	"github.com/jirakit/jirakit/pkg/errors"
	"github.com/jirakit/jirakit/pkg/logger"
	"github.com/jirakit/jirakit/pkg/metrics"
	"github.com/jirakit/jirakit/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *metrics.InMemoryMetrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.New()
	cfg.BaseURL = server.URL
	cfg.Email = "me@example.com"
	cfg.APIToken = "secret-token"
	cfg.RetryCount = 0

	sink := metrics.NewInMemoryMetrics()
	c, err := New(cfg, logger.NewTestLogger(), sink)
	require.NoError(t, err)
	return c, sink
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.BaseURL = "https://example.atlassian.net"
	// basic auth without credentials
	_, err := New(cfg, logger.NewTestLogger(), metrics.NewNoOpMetrics())
	require.Error(t, err)
}

func TestGetIssue(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-1", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Basic "))
		writeJSON(w, http.StatusOK, types.Issue{
			Key:    "PROJ-1",
			Fields: &types.IssueFields{Summary: "a bug"},
		})
	})
	c, sink := newTestClient(t, handler)

	issue, err := c.GetIssue(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "a bug", issue.Fields.Summary)
	assert.Equal(t, 1.0, sink.CounterValue("jira_requests_total", map[string]string{
		"operation": "get issue",
		"method":    "GET",
		"status":    "200",
	}))
}

func TestGetIssueInvalidKeySkipsRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid key")
	})
	c, _ := newTestClient(t, handler)

	_, err := c.GetIssue(context.Background(), "not a key")
	require.Error(t, err)
	jiraErr := errors.GetJiraError(err)
	require.NotNil(t, jiraErr)
	assert.Equal(t, types.ErrorTypeValidation, jiraErr.Type)
}

func TestGetIssueNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, types.APIErrorBody{
			ErrorMessages: []string{"Issue does not exist or you do not have permission to see it."},
		})
	})
	c, _ := newTestClient(t, handler)

	_, err := c.GetIssue(context.Background(), "PROJ-404")
	require.Error(t, err)
	jiraErr := errors.GetJiraError(err)
	require.NotNil(t, jiraErr)
	assert.Equal(t, types.ErrorTypeNotFound, jiraErr.Type)
	assert.Equal(t, 404, jiraErr.StatusCode)
	assert.Contains(t, jiraErr.Message, "Issue does not exist")
}

func TestPingUnauthorized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, types.APIErrorBody{})
	})
	c, _ := newTestClient(t, handler)

	_, err := c.Ping(context.Background())
	require.Error(t, err)
	jiraErr := errors.GetJiraError(err)
	require.NotNil(t, jiraErr)
	assert.Equal(t, types.ErrorTypeUnauthorized, jiraErr.Type)
}

func TestAddCommentSendsADF(t *testing.T) {
	var captured map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/api/3/issue/PROJ-1/comment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeJSON(w, http.StatusCreated, types.Comment{ID: "10001"})
	})
	c, _ := newTestClient(t, handler)

	comment, err := c.AddComment(context.Background(), "PROJ-1", "hello **world**")
	require.NoError(t, err)
	assert.Equal(t, "10001", comment.ID)

	body, ok := captured["body"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "doc", body["type"])
	assert.Equal(t, float64(1), body["version"])

	content := body["content"].([]interface{})
	para := content[0].(map[string]interface{})
	assert.Equal(t, "paragraph", para["type"])
	inner := para["content"].([]interface{})
	bold := inner[1].(map[string]interface{})
	assert.Equal(t, "world", bold["text"])
	marks := bold["marks"].([]interface{})
	assert.Equal(t, "strong", marks[0].(map[string]interface{})["type"])
}

func TestAddCommentResolvesMentions(t *testing.T) {
	var captured map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/3/user/search":
			assert.Equal(t, "jane", r.URL.Query().Get("query"))
			writeJSON(w, http.StatusOK, []types.User{
				{AccountID: "acc-1", DisplayName: "Jane Doe", Active: true},
			})
		case "/rest/api/3/issue/PROJ-1/comment":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			writeJSON(w, http.StatusCreated, types.Comment{ID: "10002"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	c, _ := newTestClient(t, handler)

	_, err := c.AddComment(context.Background(), "PROJ-1", "ping @jane")
	require.NoError(t, err)

	body := captured["body"].(map[string]interface{})
	para := body["content"].([]interface{})[0].(map[string]interface{})
	spans := para["content"].([]interface{})
	mention := spans[1].(map[string]interface{})
	assert.Equal(t, "mention", mention["type"])
	attrs := mention["attrs"].(map[string]interface{})
	assert.Equal(t, "acc-1", attrs["id"])
	assert.Equal(t, "@Jane Doe", attrs["text"])
}

func TestSearch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/3/search", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "project = PROJ", body["jql"])
		assert.Equal(t, float64(50), body["maxResults"])
		writeJSON(w, http.StatusOK, types.SearchResult{
			Total:  1,
			Issues: []types.Issue{{Key: "PROJ-1"}},
		})
	})
	c, _ := newTestClient(t, handler)

	result, err := c.Search(context.Background(), "project = PROJ", 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Issues, 1)
}

func TestSearchRejectsBadJQL(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.Search(context.Background(), `summary ~ "open`, 0, 0, nil)
	require.Error(t, err)
}

func TestTransitionIssueByName(t *testing.T) {
	var transitioned string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, types.TransitionsResult{Transitions: []types.Transition{
				{ID: "21", Name: "In Progress"},
				{ID: "31", Name: "Done"},
			}})
		case http.MethodPost:
			var body map[string]map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			transitioned = body["transition"]["id"]
			w.WriteHeader(http.StatusNoContent)
		}
	})
	c, _ := newTestClient(t, handler)

	require.NoError(t, c.TransitionIssue(context.Background(), "PROJ-1", "done"))
	assert.Equal(t, "31", transitioned)

	err := c.TransitionIssue(context.Background(), "PROJ-1", "Reopen")
	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeNotFound, errors.GetJiraError(err).Type)
}

func TestUploadAttachment(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-check", r.Header.Get("X-Atlassian-Token"))
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", header.Filename)
		writeJSON(w, http.StatusOK, []types.Attachment{{ID: "att-1", Filename: "notes.txt"}})
	})
	c, _ := newTestClient(t, handler)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("attachment body"), 0o600))

	attachments, err := c.UploadAttachment(context.Background(), "PROJ-1", path)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "att-1", attachments[0].ID)
}

func TestUploadAttachmentMissingFile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.UploadAttachment(context.Background(), "PROJ-1", "/does/not/exist.txt")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetJiraError(err).Code)
}

func TestResolveQueryPrefersExactEmail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []types.User{
			{AccountID: "acc-1", DisplayName: "Jan Partial", EmailAddress: "jan@example.com", Active: true},
			{AccountID: "acc-2", DisplayName: "Jane Exact", EmailAddress: "jane@example.com", Active: true},
		})
	})
	c, _ := newTestClient(t, handler)

	user, err := c.ResolveQuery(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-2", user.AccountID)
}

func TestBulkTransitionPartialFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "PROJ-2") {
			writeJSON(w, http.StatusNotFound, types.APIErrorBody{
				ErrorMessages: []string{"Issue does not exist"},
			})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, types.TransitionsResult{Transitions: []types.Transition{
				{ID: "31", Name: "Done"},
			}})
		case http.MethodPost:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	c, _ := newTestClient(t, handler)

	result := c.BulkTransition(context.Background(), []string{"PROJ-1", "PROJ-2"}, "Done")
	assert.Equal(t, []string{"PROJ-1"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.False(t, result.Ok())
	assert.Error(t, result.Err())
}
