package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// JSONClient posts JSON payloads to API endpoints. It keeps a shared cookie
// jar across calls and presents a stable browser identity, which the search
// collaborator needs to stay on the provider's good side.
type JSONClient struct {
	client    *http.Client
	userAgent string
}

// NewJSONClient builds a JSONClient with a fresh cookie jar.
func NewJSONClient(userAgent string, timeout time.Duration) (*JSONClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &JSONClient{
		client: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: newHTTPTransport(),
		},
		userAgent: userAgent,
	}, nil
}

// PostJSON sends payload as a JSON body and returns the raw response body
// and status code. Extra headers are applied after the defaults, so callers
// can override them.
func (c *JSONClient) PostJSON(
	ctx context.Context,
	url string,
	payload any,
	headers map[string]string,
) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}
