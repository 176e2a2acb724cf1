// Package httpclient is a small JSON-oriented HTTP client used for calls to
// remote inference providers. It resolves paths against a base URL, applies
// request authentication, spaces requests with a resilience.RateLimiter and
// classifies non-2xx responses into typed *Error values.
//
//	c, _ := httpclient.New(httpclient.Config{BaseURL: "https://api.pyannote.ai/v1"})
//	resp, err := httpclient.Post[jobResponse](c, ctx, "/diarize", body,
//	    httpclient.WithRequestAuth(httpclient.BearerAuth(token)))
//
// Requests are never retried.
package httpclient
