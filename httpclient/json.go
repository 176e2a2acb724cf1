package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Typed is a 2xx response whose JSON body was decoded into Data.
type Typed[T any] struct {
	StatusCode int
	Data       T
}

// RequestOption adjusts a single request built by Get or Post.
type RequestOption func(*Request)

// WithRequestAuth replaces the client-level credentials for one request.
func WithRequestAuth(auth *AuthConfig) RequestOption {
	return func(r *Request) { r.Auth = auth }
}

// Get issues a GET and decodes the JSON answer.
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*Typed[T], error) {
	return exchange[T](c, ctx, Request{Method: http.MethodGet, Path: path}, opts)
}

// Post sends body as JSON and decodes the JSON answer.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*Typed[T], error) {
	return exchange[T](c, ctx, Request{Method: http.MethodPost, Path: path, Body: body}, opts)
}

// exchange never decodes non-2xx bodies; they stay on the returned *Error.
func exchange[T any](c *Client, ctx context.Context, req Request, opts []RequestOption) (*Typed[T], error) {
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &Typed[T]{StatusCode: resp.StatusCode}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
		return nil, fmt.Errorf("httpclient: decode %s %s: %w", req.Method, req.Path, err)
	}
	return out, nil
}
