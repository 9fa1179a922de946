// Package neverbounce provides a client for the NeverBounce single-check API.
package neverbounce

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.neverbounce.com/v4"

// Client performs single email verification checks.
type Client interface {
	// Check verifies one email address. Exactly one outbound call per
	// invocation; the caller decides whether to retry failures.
	Check(ctx context.Context, email string) (*CheckResponse, error)
}

// CheckResponse is the parsed single-check response envelope.
type CheckResponse struct {
	Status        string   `json:"status"`
	Result        string   `json:"result"`
	Flags         []string `json:"flags"`
	ExecutionTime int64    `json:"execution_time"`
}

// checkRequest is the request body for POST /single/check.
type checkRequest struct {
	Key   string `json:"key"`
	Email string `json:"email"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a NeverBounce API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Check(ctx context.Context, email string) (*CheckResponse, error) {
	body, err := json.Marshal(checkRequest{Key: c.apiKey, Email: email})
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/single/check", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "neverbounce: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("neverbounce: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result CheckResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "neverbounce: unmarshal response")
	}

	// The API reports failures inside a 200 envelope as well.
	if result.Status != "success" {
		return nil, eris.Errorf("neverbounce: api status %q: %s", result.Status, string(respBody))
	}

	return &result, nil
}
