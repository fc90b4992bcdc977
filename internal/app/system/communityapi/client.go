// Package communityapi is the HTTP client for the external community API.
//
// The API is an opaque JSON-over-HTTP service. Every list endpoint returns
// the full collection in one response; there is no paging, filtering or
// authentication. Records come back as loosely shaped JSON objects and are
// handed to the ingest package untouched.
package communityapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Record is one raw entity as returned by the API.
// Numbers are decoded as json.Number so identifiers keep their exact form.
type Record map[string]any

// Client talks to the community API.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// NewHTTPClient returns an http.Client whose transport is instrumented
// with OpenTelemetry. Timeouts are carried by request contexts.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// New builds a Client for baseURL (e.g. http://localhost:8081/api).
// A nil httpClient uses NewHTTPClient.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: u, http: httpClient, log: logger}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// ListUsers fetches GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "list users", "users")
}

// ListPosts fetches GET /posts.
func (c *Client) ListPosts(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "list posts", "posts")
}

// ListComments fetches GET /comments.
func (c *Client) ListComments(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "list comments", "comments")
}

// UpdateComment sends PUT /comments/{id} with body {"content": ...} and
// returns the record the API echoes back. An empty response body yields a
// record holding just the id and the submitted content.
func (c *Client) UpdateComment(ctx context.Context, id, content string) (Record, error) {
	const op = "update comment"
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	body, err := c.do(ctx, op, http.MethodPut, "comments/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Record{"id": id, "content": content}, nil
	}
	var rec Record
	if err := decode(body, &rec); err != nil {
		return nil, &NetworkError{Op: op, URL: c.endpoint("comments/" + id), Err: fmt.Errorf("decode response: %w", err)}
	}
	return rec, nil
}

// DeleteComment sends DELETE /comments/{id}.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete comment", http.MethodDelete, "comments/"+url.PathEscape(id), nil)
	return err
}

// Ping checks that the API answers at all. Any response below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	endpoint := c.endpoint("users")
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) list(ctx context.Context, op, resource string) ([]Record, error) {
	body, err := c.do(ctx, op, http.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeList(body, resource)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: c.endpoint(resource), Err: fmt.Errorf("decode response: %w", err)}
	}
	c.log.Debug("community api list fetched",
		zap.String("resource", resource),
		zap.Int("records", len(recs)))
	return recs, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	endpoint := c.endpoint(path)

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("community api request failed",
			zap.String("op", op),
			zap.String("url", endpoint),
			zap.Error(err))
		return nil, &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	// List responses carry a whole collection in one page, so the body is
	// read without a cap.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("community api returned non-success status",
			zap.String("op", op),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeList accepts either a bare JSON array or an envelope object that
// holds the array under the resource name ({"users": [...]}).
func decodeList(body []byte, resource string) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if trimmed[0] == '[' {
		var recs []Record
		if err := decode(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}

	var envelope map[string]json.RawMessage
	if err := decode(trimmed, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[resource]
	if !ok {
		return nil, fmt.Errorf("response has no %q list", resource)
	}
	var recs []Record
	if err := decode(raw, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
