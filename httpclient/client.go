package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/voicemap/resilience"
)

// Client sends requests to one remote API.
type Client struct {
	httpClient *http.Client
	config     Config
	rl         *resilience.RateLimiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if err := cfg.TLS.Apply(transport); err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	c := &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
		rl:         resilience.NewRateLimiter(cfg.RateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// Do executes an HTTP request and returns the complete response. A non-2xx
// status yields both the response and a classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, transportError(KindTimeout, err)
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transportError(KindTimeout, err)
		}
		return nil, transportError(KindConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(KindConnection, fmt.Errorf("read response body: %w", err))
	}

	out := &Response{StatusCode: resp.StatusCode, Headers: flattenHeaders(resp.Header), Body: body}
	if serr := statusError(resp.StatusCode, body); serr != nil {
		return out, serr
	}
	return out, nil
}

// Close releases idle connections.
func (c *Client) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, requestError("encode body: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, requestError("create request: %v", err)
	}
	if req.ContentLength > 0 {
		httpReq.ContentLength = req.ContentLength
	}
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	setHeaders(httpReq.Header, c.config.Headers)
	setHeaders(httpReq.Header, req.Headers)
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if req.Auth != nil {
		req.Auth.apply(httpReq)
	} else {
		c.config.Auth.apply(httpReq)
	}
	return httpReq, nil
}

// resolve joins path onto BaseURL; absolute URLs such as presigned PUT
// targets pass through untouched.
func (c *Client) resolve(path string) string {
	if c.config.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func setHeaders(dst http.Header, src map[string]string) {
	for k, v := range src {
		dst.Set(k, v)
	}
}

// encodeBody returns the reader for body and the content type it implies.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
