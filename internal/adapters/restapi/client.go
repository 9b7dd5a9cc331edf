package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rinkdesk/internal/adapters/http/perf"
	"rinkdesk/internal/domain/ident"
)

// DefaultSlowUpstreamMs is the default threshold for slow upstream warnings.
const DefaultSlowUpstreamMs = 300

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 8 << 20

type tokenKey struct{}

// WithToken returns a context carrying the caller's API token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the API token stored by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// bearerTransport attaches the request's token, else the service token.
type bearerTransport struct {
	base         http.RoundTripper
	serviceToken string
}

func (bt *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := TokenFromContext(req.Context())
	if token == "" {
		token = bt.serviceToken
	}
	if token != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return bt.base.RoundTrip(req)
}

// Client calls the school's REST API.
type Client struct {
	baseURL      string
	http         *http.Client
	serviceToken string
	collector    *perf.Collector
	threshold    float64
}

// Option mutates the Client during New.
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithServiceToken sets the token sent when a request context carries none.
func WithServiceToken(token string) Option {
	return func(c *Client) error {
		c.serviceToken = strings.TrimSpace(token)
		return nil
	}
}

// WithCollector records every call's timing into collector.
func WithCollector(collector *perf.Collector) Option {
	return func(c *Client) error {
		c.collector = collector
		return nil
	}
}

// WithSlowThreshold sets the duration above which a call is logged at Warn.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.threshold = float64(d.Microseconds()) / 1000.0
		}
		return nil
	}
}

// New builds a Client for baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a Client whose transport adds bearer tokens
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		threshold: DefaultSlowUpstreamMs,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = &bearerTransport{base: base, serviceToken: c.serviceToken}
	c.http = &hc
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and returns the response body of a 2xx reply.
// A non-2xx reply is returned as *Error.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(op, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    messageFrom(raw, resp.StatusCode),
			Body:       raw,
		}
	}
	return raw, nil
}

// getList fetches path and coerces the reply to a list.
func getList[T any](ctx context.Context, c *Client, op, path string, query url.Values, keys ...string) ([]T, error) {
	raw, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	items, err := DecodeList[T](raw, keys...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// getOne fetches path and decodes a single object.
func getOne[T any](ctx context.Context, c *Client, op, path string) (*T, error) {
	raw, err := c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return &out, nil
}

// send issues a mutation and discards the reply body.
func (c *Client) send(ctx context.Context, op, method, path string, in any) error {
	_, err := c.do(ctx, op, method, path, nil, in)
	return err
}

// observe logs, counts and records one upstream call.
func (c *Client) observe(op string, status int, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(op, code).Inc()
	upstreamDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if durationMs >= c.threshold {
		slog.Warn("slow_upstream",
			"op", op,
			"status", status,
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("upstream",
			"op", op,
			"status", status,
			"duration_ms", durationMs,
		)
	}

	c.collector.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       op,
		StatusCode: status,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}

// ErrMissingID is returned when a path id is empty.
var ErrMissingID = errors.New("id is required")

// pathID escapes an id for use as one path segment.
func pathID(id ident.ID) (string, error) {
	s := strings.TrimSpace(id.String())
	if s == "" {
		return "", ErrMissingID
	}
	return url.PathEscape(s), nil
}
