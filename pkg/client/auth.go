package client

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jirakit/jirakit/pkg/errors"
)

const connectTokenLifetime = 3 * time.Minute

// signConnectRequest attaches an Atlassian Connect JWT to the
// outgoing request. The token carries a query string hash binding it
// to this exact method, path and query.
func (c *Client) signConnectRequest(_ *resty.Client, req *resty.Request) error {
	path, query, err := requestTarget(req.URL)
	if err != nil {
		return errors.NewInternalErrorWithCause("failed to canonicalize request for signing", err)
	}
	for k, values := range req.QueryParam {
		for _, v := range values {
			query.Add(k, v)
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.cfg.ConnectIssuer,
		"iat": now.Unix(),
		"exp": now.Add(connectTokenLifetime).Unix(),
		"qsh": queryStringHash(req.Method, path, query),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.ConnectSecret))
	if err != nil {
		return errors.NewInternalErrorWithCause("failed to sign connect token", err)
	}

	req.SetHeader("Authorization", "JWT "+token)
	return nil
}

// requestTarget extracts the canonical path and query from a request
// URL that may be relative to the client's base URL.
func requestTarget(raw string) (string, url.Values, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, err
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasPrefix(path, apiPrefix) {
		path = apiPrefix + path
	}
	return path, u.Query(), nil
}

// queryStringHash computes the Connect canonical request hash:
// METHOD&path&sorted-query, SHA-256, hex encoded.
func queryStringHash(method, path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]string, 0, len(keys))
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for i, v := range values {
			values[i] = url.QueryEscape(v)
		}
		params = append(params, fmt.Sprintf("%s=%s", url.QueryEscape(k), strings.Join(values, ",")))
	}

	canonical := strings.ToUpper(method) + "&" + path + "&" + strings.Join(params, "&")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
