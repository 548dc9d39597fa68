package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/consolekit/internal/dispatch"
	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/querykey"
	"github.com/simp-lee/consolekit/internal/remotecache"
)

// TokenProvider supplies the current bearer token, or "" when signed out.
// It is read per request so a re-login is picked up without rebuilding the
// client.
type TokenProvider func() string

// Client is the request pipeline between screens and the admin API. Every
// failed call is classified into a tagged error, handed to the dispatcher
// exactly once, and then returned to the caller for local handling.
type Client struct {
	rest       *restClient
	token      TokenProvider
	dispatcher *dispatch.Dispatcher
	cache      *remotecache.Cache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, typically for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.rest.client = h }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the API at baseURL. token may return "" while
// signed out; dispatcher and cache are required.
func New(baseURL string, timeout time.Duration, token TokenProvider, dispatcher *dispatch.Dispatcher, cache *remotecache.Cache, opts ...Option) *Client {
	c := &Client{
		rest:       newRESTClient(baseURL, timeout, nil),
		token:      token,
		dispatcher: dispatcher,
		cache:      cache,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption adjusts a single request.
type CallOption func(*callConfig)

type callConfig struct {
	overrides domain.Overrides
}

// WithOverrides customizes the notifications shown for this call's failures,
// keyed by error tag.
func WithOverrides(o domain.Overrides) CallOption {
	return func(cfg *callConfig) { cfg.overrides = o }
}

// envelope is the API's JSON wrapper. Error responses carry the tag in
// "error" and optional per-field details.
type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Tag     string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// List fetches one page of the resource identified by key, deduplicated and
// cached under the key's canonical form. Rows stay raw JSON; use DecodeItems
// for a typed view.
func (c *Client) List(ctx context.Context, key querykey.Key, opts ...CallOption) (*domain.PageResult[json.RawMessage], error) {
	cfg := buildCallConfig(opts)
	return remotecache.GetOrFetchAs(ctx, c.cache, key.Canonical, func(ctx context.Context) (*domain.PageResult[json.RawMessage], error) {
		data, err := c.do(ctx, http.MethodGet, key.Resource, key.Params, nil, cfg)
		if err != nil {
			return nil, err
		}
		var page domain.PageResult[json.RawMessage]
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, c.report(domain.NewAppError(domain.TagUnknownServer, "malformed list response", err), cfg)
		}
		return &page, nil
	})
}

// Get fetches a single row by id.
func (c *Client) Get(ctx context.Context, resource, id string, opts ...CallOption) (json.RawMessage, error) {
	cfg := buildCallConfig(opts)
	return c.do(ctx, http.MethodGet, resource+"/"+url.PathEscape(id), nil, nil, cfg)
}

// Create posts a new row and invalidates the resource's cached pages.
func (c *Client) Create(ctx context.Context, resource string, payload any, opts ...CallOption) (json.RawMessage, error) {
	cfg := buildCallConfig(opts)
	data, err := c.do(ctx, http.MethodPost, resource, nil, payload, cfg)
	if err != nil {
		return nil, err
	}
	c.cache.InvalidatePrefix(querykey.Prefix(resource))
	return data, nil
}

// Update replaces a row and invalidates the resource's cached pages.
func (c *Client) Update(ctx context.Context, resource, id string, payload any, opts ...CallOption) (json.RawMessage, error) {
	cfg := buildCallConfig(opts)
	data, err := c.do(ctx, http.MethodPut, resource+"/"+url.PathEscape(id), nil, payload, cfg)
	if err != nil {
		return nil, err
	}
	c.cache.InvalidatePrefix(querykey.Prefix(resource))
	return data, nil
}

// Delete removes a row and invalidates the resource's cached pages.
func (c *Client) Delete(ctx context.Context, resource, id string, opts ...CallOption) error {
	cfg := buildCallConfig(opts)
	_, err := c.do(ctx, http.MethodDelete, resource+"/"+url.PathEscape(id), nil, nil, cfg)
	if err != nil {
		return err
	}
	c.cache.InvalidatePrefix(querykey.Prefix(resource))
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string, opts ...CallOption) (string, error) {
	cfg := buildCallConfig(opts)
	payload := map[string]string{"username": username, "password": password}
	data, err := c.do(ctx, http.MethodPost, "auth/login", nil, payload, cfg)
	if err != nil {
		return "", err
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Token == "" {
		return "", c.report(domain.NewAppError(domain.TagUnknownServer, "malformed login response", err), cfg)
	}
	return body.Token, nil
}

// FetchProfile loads the authenticated operator. The session guard wraps it
// in the cache, so it performs a plain request here.
func (c *Client) FetchProfile(ctx context.Context, opts ...CallOption) (*domain.Profile, error) {
	cfg := buildCallConfig(opts)
	data, err := c.do(ctx, http.MethodGet, "auth/profile", nil, nil, cfg)
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, c.report(domain.NewAppError(domain.TagUnknownServer, "malformed profile response", err), cfg)
	}
	return &p, nil
}

// do runs one request through the pipeline and returns the envelope's data
// payload. Failures are dispatched before being returned.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload any, cfg callConfig) (json.RawMessage, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, c.report(domain.NewAppError(domain.TagBadRequest, "unencodable request payload", err), cfg)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := c.rest.NewRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, c.report(domain.NewAppError(domain.TagTransport, "building request failed", err), cfg)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.rest.Do(req)
	if err != nil {
		return nil, c.report(domain.NewAppError(domain.TagTransport, "request failed", err), cfg)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, c.report(c.errorFromResponse(resp.StatusCode, env, decodeErr), cfg)
	}
	if decodeErr != nil {
		return nil, c.report(domain.NewAppError(domain.TagTransport, "malformed response body", decodeErr), cfg)
	}
	return env.Data, nil
}

// errorFromResponse maps a non-2xx response to a tagged error. A body that
// cannot be decoded means no structured server error was read, which is a
// transport failure; unknown or missing tags in a decoded body classify as
// an unknown server failure.
func (c *Client) errorFromResponse(status int, env envelope, decodeErr error) *domain.AppError {
	if decodeErr != nil {
		return domain.NewAppError(domain.TagTransport,
			fmt.Sprintf("server returned %s", http.StatusText(status)), decodeErr)
	}
	tag, _ := domain.ParseTag(env.Tag)
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return &domain.AppError{Tag: tag, Message: message, Details: env.Details}
}

// report hands a failure to the dispatcher once and passes it through.
func (c *Client) report(appErr *domain.AppError, cfg callConfig) *domain.AppError {
	c.logger.Warn("request failed", "tag", string(appErr.Tag), "message", appErr.Message)
	c.dispatcher.Dispatch(appErr, cfg.overrides)
	return appErr
}

func buildCallConfig(opts []CallOption) callConfig {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DecodeItems converts a raw page into a typed one, decoding each row.
func DecodeItems[T any](page *domain.PageResult[json.RawMessage]) (*domain.PageResult[T], error) {
	items := make([]T, 0, len(page.Items))
	for _, raw := range page.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, domain.NewAppError(domain.TagUnknownServer, "malformed row in list response", err)
		}
		items = append(items, item)
	}
	return &domain.PageResult[T]{Items: items, Pagination: page.Pagination}, nil
}
