package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jirakit/jirakit/pkg/config"
	"github.com/jirakit/jirakit/pkg/logger"
	"github.com/jirakit/jirakit/pkg/metrics"
	"github.com/jirakit/jirakit/pkg/types"
)

func TestConnectAuthSignsRequests(t *testing.T) {
	const secret = "shared-secret"

	var authHeader string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, types.User{AccountID: "acc-1", DisplayName: "Me"})
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.New()
	cfg.BaseURL = server.URL
	cfg.AuthMode = "connect"
	cfg.ConnectIssuer = "my-addon-key"
	cfg.ConnectSecret = secret
	cfg.RetryCount = 0

	c, err := New(cfg, logger.NewTestLogger(), metrics.NewNoOpMetrics())
	require.NoError(t, err)

	_, err = c.Myself(context.Background())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(authHeader, "JWT "))
	token, err := jwt.Parse(strings.TrimPrefix(authHeader, "JWT "), func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "my-addon-key", claims["iss"])
	assert.Equal(t, queryStringHash("GET", "/rest/api/3/myself", url.Values{}), claims["qsh"])
}

func TestQueryStringHash(t *testing.T) {
	// canonical form sorts parameter keys, so ordering never changes
	// the hash
	a := queryStringHash("get", "/rest/api/3/search", url.Values{"b": {"2"}, "a": {"1"}})
	b := queryStringHash("GET", "/rest/api/3/search", url.Values{"a": {"1"}, "b": {"2"}})
	assert.Equal(t, a, b)

	c := queryStringHash("GET", "/rest/api/3/search", url.Values{"a": {"1"}})
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
