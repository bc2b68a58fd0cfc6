package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/umputun/feedadmin/pkg/domain"
)

// maxErrorBody limits how much of a failed response is read to extract the error message
const maxErrorBody = 64 * 1024

// Client talks to the job-feed backend REST API
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// NewClient creates a new backend client. All endpoints are resolved relative to baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	return &Client{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// ListFeeds returns all feeds known to the backend
func (c *Client) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	var feeds []domain.Feed
	if err := c.do(ctx, http.MethodGet, []string{"feeds"}, nil, &feeds); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// CreateFeed registers a new feed
func (c *Client) CreateFeed(ctx context.Context, name, feedURL string) (*domain.Feed, error) {
	req := struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}{URL: feedURL, Name: name}

	var feed domain.Feed
	if err := c.do(ctx, http.MethodPost, []string{"feeds"}, req, &feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}
	return &feed, nil
}

// DeleteFeed removes a feed by its ID
func (c *Client) DeleteFeed(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete feed: empty id")
	}
	if err := c.do(ctx, http.MethodDelete, []string{"feeds", url.PathEscape(id)}, nil, nil); err != nil {
		return fmt.Errorf("delete feed %s: %w", id, err)
	}
	return nil
}

// ListImportLogs returns import history as reported by the backend
func (c *Client) ListImportLogs(ctx context.Context) ([]domain.ImportLog, error) {
	var logs []domain.ImportLog
	if err := c.do(ctx, http.MethodGet, []string{"import", "logs"}, nil, &logs); err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	return logs, nil
}

// StartImport asks the backend to import jobs from the given feed URL
func (c *Client) StartImport(ctx context.Context, feedURL string) error {
	req := struct {
		FeedURL string `json:"feedUrl"`
	}{FeedURL: feedURL}

	if err := c.do(ctx, http.MethodPost, []string{"import"}, req, nil); err != nil {
		return fmt.Errorf("start import: %w", err)
	}
	return nil
}

// do sends a request to the endpoint made of path elements and decodes the JSON response into out.
// out can be nil if the response body is not needed.
func (c *Client) do(ctx context.Context, method string, path []string, in, out any) error {
	endpoint := c.baseURL.JoinPath(path...)

	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// newError makes Error from a non-2xx response, picking the error string from JSON body if present
func newError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Error)
	}
	return apiErr
}
