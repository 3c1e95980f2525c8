// Package googlebooks queries the Google Books volumes API by ISBN.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// ErrNotFound indicates the API returned an empty result set for the ISBN.
// Callers treat it as a normal fallback trigger, not a fatal error.
var ErrNotFound = errors.New("googlebooks: no volume found")

// Volume holds the fields the pipeline reads from the first search result.
type Volume struct {
	Title         string
	Author        string
	PublishedYear string
}

// Client is a thin wrapper over the volumes search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New builds a Client with the given request timeout.
func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup fetches the first volume matching the ISBN.
func (c *Client) Lookup(ctx context.Context, isbn string) (Volume, error) {
	endpoint := fmt.Sprintf("%s/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Volume{}, fmt.Errorf("build volumes request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Volume{}, fmt.Errorf("volumes request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Volume{}, fmt.Errorf("volumes request: unexpected status %d", resp.StatusCode)
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Volume{}, fmt.Errorf("decode volumes response: %w", err)
	}
	if len(payload.Items) == 0 {
		return Volume{}, ErrNotFound
	}

	info := payload.Items[0].VolumeInfo
	vol := Volume{Title: info.Title}
	if len(info.Authors) > 0 {
		vol.Author = info.Authors[0]
	}
	if len(info.PublishedDate) >= 4 {
		vol.PublishedYear = info.PublishedDate[:4]
	}
	return vol, nil
}
