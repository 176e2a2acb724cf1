// Package server provides the voicemap HTTP server: Gin behind an h2c
// handler, wrapped by a net/http middleware stack and managed as a
// bootstrap component.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied to every route:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation into the log context
//   - CORS: cross-origin resource sharing
//   - RateLimit: optional per-client sliding window
//   - BodySizeLimit: request body limit, 200MB by default for audio uploads
//   - RequestLogger: request logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /info, /version and /metrics.
package server
