package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups client failures by how a caller should react to them.
type Kind int

const (
	KindTimeout Kind = iota
	KindConnection
	KindAuth
	KindNotFound
	KindRateLimit
	KindRejected
	KindServer
	// KindRequest marks a request that could not be built locally.
	KindRequest
)

var kindNames = map[Kind]string{
	KindTimeout:    "timeout",
	KindConnection: "connection",
	KindAuth:       "auth",
	KindNotFound:   "not_found",
	KindRateLimit:  "rate_limit",
	KindRejected:   "rejected",
	KindServer:     "server",
	KindRequest:    "request",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is returned by Client.Do. StatusCode is zero when no response arrived.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Retryable  bool
	// Body holds the raw response body of a non-2xx answer.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func transportError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Retryable: true, Err: err}
}

func requestError(format string, args ...any) *Error {
	return &Error{Kind: KindRequest, Message: fmt.Sprintf(format, args...)}
}

// statusError classifies a completed exchange. It returns nil for 2xx.
func statusError(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	e := &Error{StatusCode: status, Message: http.StatusText(status), Body: body}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind, e.Retryable = KindRateLimit, true
	case status >= 400 && status < 500:
		e.Kind = KindRejected
	default:
		e.Kind, e.Retryable = KindServer, status >= 500
	}
	return e
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTimeout reports whether err is a request or dial timeout.
func IsTimeout(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTimeout
}

// IsConnection reports whether err is a dial, TLS or read failure.
func IsConnection(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConnection
}

// IsTransport reports whether err never produced an HTTP response.
func IsTransport(err error) bool {
	return IsTimeout(err) || IsConnection(err)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
