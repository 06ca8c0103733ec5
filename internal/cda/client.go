package cda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the production content delivery endpoint.
const DefaultBaseURL = "https://cdn.contentful.com"

const defaultUserAgent = "vault-go/0.1"

// maxErrorBody caps how much of an error response body is read for the
// APIError message.
const maxErrorBody = 4096

// TokenProvider supplies the access token sent as a bearer header.
// A fixed token satisfies it via StaticToken.
type TokenProvider interface {
	Token() (string, error)
}

// StaticToken is a TokenProvider for a fixed access token.
type StaticToken string

// Token implements TokenProvider.
func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client is an HTTP client for the content delivery API. It handles
// request construction, authentication, and error classification.
// Retry and backoff are the caller's concern.
type Client struct {
	baseURL     string
	space       string
	environment string
	httpClient  *http.Client
	token       TokenProvider
	userAgent   string
	logger      *slog.Logger
}

// NewClient creates a content delivery API client for one space
// environment. baseURL is typically DefaultBaseURL.
func NewClient(baseURL, space, environment string, httpClient *http.Client, token TokenProvider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if environment == "" {
		environment = "master"
	}

	return &Client{
		baseURL:     baseURL,
		space:       space,
		environment: environment,
		httpClient:  httpClient,
		token:       token,
		userAgent:   defaultUserAgent,
		logger:      logger,
	}
}

// spacePath returns the API path for an endpoint under this client's
// space environment.
func (c *Client) spacePath(endpoint string) string {
	return fmt.Sprintf("/spaces/%s/environments/%s/%s", c.space, c.environment, endpoint)
}

// getJSON executes a GET against the API and decodes the JSON response
// body into out. Non-2xx responses are classified into an *APIError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("cda: building request for %s: %w", path, err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return fmt.Errorf("cda: obtaining access token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cda: %s %s: %w", http.MethodGet, path, err)
	}
	defer resp.Body.Close()

	if sentinel := classifyStatus(resp.StatusCode); sentinel != nil {
		return c.apiError(resp, sentinel)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cda: decoding response for %s: %w", path, err)
	}

	return nil
}

// apiError builds an *APIError from a non-2xx response, capturing the
// request id header and a bounded slice of the body.
func (c *Client) apiError(resp *http.Response, sentinel error) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Contentful-Request-Id"),
		Message:    string(body),
		Err:        sentinel,
	}

	c.logger.Warn("api request failed",
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", apiErr.RequestID),
	)

	return apiErr
}
