// Package ragserve is a small HTTP client for the ragserve JSON API.
package ragserve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Row is one retrieved source row, column name to value.
type Row map[string]string

// Answer is the assistant's reply with its grounding rows.
type Answer struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	FAQs      []Row  `json:"faqs"`
	MenuItems []Row  `json:"menu_items"`
}

// HealthReport mirrors the /health response.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragserve: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client talks to a ragserve server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with API requests.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ragserve: base URL required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Ask sends a question and returns the generated answer. topK limits
// how many rows are retrieved per source; 0 uses the server default.
func (c *Client) Ask(ctx context.Context, query string, topK int) (Answer, error) {
	body, err := json.Marshal(askRequest{Query: query, TopK: topK})
	if err != nil {
		return Answer{}, fmt.Errorf("ragserve: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("ragserve: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var answer Answer
	if err := c.do(req, &answer); err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return HealthReport{}, fmt.Errorf("ragserve: build request: %w", err)
	}

	var report HealthReport
	if err := c.do(req, &report); err != nil {
		// /health responds 503 with a body when degraded
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			return HealthReport{Status: "degraded"}, nil
		}
		return HealthReport{}, err
	}
	return report, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ragserve: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ragserve: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Code = "unknown"
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ragserve: decode response: %w", err)
	}
	return nil
}
