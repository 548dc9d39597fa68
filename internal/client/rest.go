package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// restClient wraps http.Client with base URL handling so the pipeline does
// not repeat URL joining and timeout defaults per call.
type restClient struct {
	baseURL string
	client  *http.Client
}

func newRESTClient(baseURL string, timeout time.Duration, client *http.Client) *restClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if client == nil {
		client = &http.Client{Timeout: timeoutOrDefault(timeout)}
	} else if timeout > 0 {
		client.Timeout = timeout
	}
	return &restClient{baseURL: trimmed, client: client}
}

func (c *restClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	return http.NewRequestWithContext(ctx, method, url, body)
}

func (c *restClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return defaultTimeout
	}
	return value
}
