package xrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"skyline-hq/cirrus/pkg/ratelimit"
)

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer access token for outbound calls.
// Refreshing and persisting credentials is the implementer's concern.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type staticTokenSource string

func (s staticTokenSource) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

// StaticTokenSource returns a TokenSource that always yields token.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

// ClientConfig contains configuration for the XRPC client.
type ClientConfig struct {
	// BaseURL is the service endpoint, e.g. "https://bsky.social".
	BaseURL string

	// Gate performs admission control before every call. Required.
	Gate ratelimit.Gate

	// LimitKey is the bucket key calls are charged against.
	// Defaults to ratelimit.DefaultKey.
	LimitKey string

	// Tokens supplies the bearer token. May be nil for unauthenticated
	// endpoints.
	Tokens TokenSource

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client. When set, Timeout is
	// ignored in favor of the client's own.
	HTTPClient *http.Client

	// Logger receives request-level debug logging. Defaults to slog.Default.
	Logger *slog.Logger
}

// Client is a rate-limited XRPC client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	gate       ratelimit.Gate
	limitKey   string
	tokens     TokenSource
	logger     *slog.Logger

	// instanceID identifies this client instance in the User-Agent and logs.
	instanceID string
	userAgent  string
}

// NewClient constructs a Client from cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Gate == nil {
		return nil, fmt.Errorf("xrpc: Gate is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("xrpc: invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limitKey := cfg.LimitKey
	if limitKey == "" {
		limitKey = ratelimit.DefaultKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	instanceID := uuid.NewString()
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		gate:       cfg.Gate,
		limitKey:   limitKey,
		tokens:     cfg.Tokens,
		logger:     logger.With("component", "xrpc", "instance_id", instanceID),
		instanceID: instanceID,
		userAgent:  "cirrus (" + instanceID + ")",
	}, nil
}

// InstanceID returns the per-process identifier reported in the User-Agent.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// CategoryFor maps an NSID onto the rate limit category it is charged
// against.
func CategoryFor(nsid string) ratelimit.Category {
	switch {
	case strings.Contains(nsid, ".search") || strings.HasSuffix(nsid, "searchPosts"):
		return ratelimit.CategorySearch
	case strings.HasPrefix(nsid, "app.bsky.feed."):
		return ratelimit.CategoryFeed
	case nsid == nsidCreateRecord || nsid == nsidDeleteRecord:
		return ratelimit.CategoryInteractions
	default:
		return ratelimit.CategoryGeneral
	}
}

// Query performs GET /xrpc/{nsid} and decodes the JSON response into out.
// A nil out discards the response body.
func (c *Client) Query(ctx context.Context, nsid string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, nsid, params, nil, out)
}

// Procedure performs POST /xrpc/{nsid} with input as the JSON body and
// decodes the JSON response into out. Nil input sends no body; nil out
// discards the response body.
func (c *Client) Procedure(ctx context.Context, nsid string, input, out any) error {
	return c.do(ctx, http.MethodPost, nsid, nil, input, out)
}

// do performs the admission check and then the HTTP exchange. The check runs
// synchronously before the request is built; the decision is never deferred
// past a suspension point.
func (c *Client) do(ctx context.Context, method, nsid string, params url.Values, input, out any) error {
	category := CategoryFor(nsid)

	dec, err := c.gate.Allow(ctx, category, c.limitKey)
	if err != nil {
		return fmt.Errorf("admission check for %s failed: %w", nsid, err)
	}
	if !dec.Allowed {
		c.logger.Debug("call denied by rate limiter",
			"nsid", nsid,
			"category", category,
			"retry_after", dec.RetryAfter,
		)
		return &ratelimit.RateLimitError{
			Category:   category,
			Key:        c.limitKey,
			RetryAfter: dec.RetryAfter,
		}
	}

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + "/xrpc/" + nsid
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	var body io.Reader
	if input != nil {
		data, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("failed to encode %s input: %w", nsid, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", nsid, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to obtain access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", nsid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, category)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", nsid, err)
	}
	return nil
}

// decodeError turns a non-2xx response into a typed error. A 429 from the
// service maps onto the same rate-limit error shape the local gate produces,
// so callers handle both denials identically.
func (c *Client) decodeError(resp *http.Response, category ratelimit.Category) error {
	xerr := &Error{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		json.Unmarshal(data, xerr)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Minute
		if secs, err := strconv.ParseInt(resp.Header.Get("Retry-After"), 10, 64); err == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		return &ratelimit.RateLimitError{
			Category:   category,
			Key:        c.limitKey,
			RetryAfter: retryAfter,
		}
	}

	return xerr
}
