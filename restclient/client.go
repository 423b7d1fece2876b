// Package restclient provides the single configured HTTP client all app
// components use to reach the Darasa REST backend. It owns the base URL,
// the default header set, bearer-token injection and an in-flight request
// counter exposed as a busy signal.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const apiKeyHeader = "X-API-Key"

type Client struct {
	baseURL  *url.URL
	httpc    *http.Client
	logger   core.Logger
	pageSize int

	mu       sync.RWMutex
	defaults http.Header

	inFlight int64 // atomic
}

func New(conf *core.Config, logger core.Logger) (*Client, error) {
	base := conf.API.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing API base URL %q", conf.API.BaseURL)
	}

	defaults := make(http.Header)
	defaults.Set("Accept", "application/json")
	// the backend expects a multipart content type even on JSON payloads;
	// uploads override it with the real boundary type
	defaults.Set("Content-Type", "multipart/form-data")

	pageSize := conf.API.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	return &Client{
		baseURL:  u,
		httpc:    &http.Client{Timeout: conf.API.RequestTimeout},
		logger:   logger,
		pageSize: pageSize,
		defaults: defaults,
	}, nil
}

// ConfigureAuth sets the default Authorization and API-key headers from token.
// Repeated calls overwrite prior headers.
func (c *Client) ConfigureAuth(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults.Set("Authorization", "Bearer "+token)
	c.defaults.Set(apiKeyHeader, token)
}

// ClearAuth removes both auth headers. Safe to call when none are set.
func (c *Client) ClearAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults.Del("Authorization")
	c.defaults.Del(apiKeyHeader)
}

// DefaultHeader returns the current default value for the given header.
func (c *Client) DefaultHeader(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaults.Get(key)
}

// InFlight reports the number of requests currently awaiting a response.
func (c *Client) InFlight() int {
	return int(atomic.LoadInt64(&c.inFlight))
}

// Busy reports whether one or more requests issued through this client are
// still in flight.
func (c *Client) Busy() bool {
	return c.InFlight() > 0
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, query, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, nil, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, nil, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, query, out)
}

// GetPage wraps Get with `current_page` and `per_page` query parameters
// injected alongside the caller's. page defaults to 1, perPage to the
// configured page size.
func (c *Client) GetPage(ctx context.Context, path string, page, perPage int, query url.Values, out interface{}) error {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = c.pageSize
	}
	q := make(url.Values, len(query)+2)
	for k, vals := range query {
		q[k] = vals
	}
	q.Set("current_page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return c.Do(ctx, http.MethodGet, path, nil, q, out)
}

// Do issues one request with the given method, merges query into the URL,
// JSON-serializes body and decodes the response payload into out (ignored
// when nil). path is relative to the configured base URL.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, query url.Values, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s %s: encoding request body", method, path)
		}
		rd = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, "", rd, query, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), body)
	if err != nil {
		return errors.Wrapf(err, "%s %s: building request", method, path)
	}

	c.mu.RLock()
	for key, vals := range c.defaults {
		for _, val := range vals {
			req.Header.Set(key, val)
		}
	}
	c.mu.RUnlock()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	atomic.AddInt64(&c.inFlight, 1)
	resp, err := c.httpc.Do(req)
	if err != nil {
		atomic.AddInt64(&c.inFlight, -1)
		err = errors.Wrapf(err, "%s %s", method, path)
		c.logger.Error(fmt.Sprintf("request failed: %v", err), err)
		return err
	}
	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	atomic.AddInt64(&c.inFlight, -1)

	if readErr != nil {
		readErr = errors.Wrapf(readErr, "%s %s: reading response", method, path)
		c.logger.Error(fmt.Sprintf("request failed: %v", readErr), readErr)
		return readErr
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp.StatusCode, data)
		c.logger.Error(fmt.Sprintf("%s %s failed: %d %s", method, path, apiErr.StatusCode, apiErr.Message), apiErr)
		return apiErr
	}
	if out != nil && len(data) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "%s %s: decoding response", method, path)
		}
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path += strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		q := u.Query()
		for key, vals := range query {
			for _, val := range vals {
				q.Add(key, val)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
