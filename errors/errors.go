package errors

import (
	"fmt"
	"net/http"
)

// AppError carries everything a handler needs to answer a failed request:
// the wire code and message, the HTTP status and the internal cause.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	// Cause is logged, never sent.
	Cause error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds one detail entry and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New builds an AppError whose Retryable flag follows code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

// SessionExpired answers requests without a session or with one the
// registry no longer holds.
func SessionExpired(sessionID string) *AppError {
	e := New(ErrCodeSessionExpired, "Session expired. Please upload the audio file again.", http.StatusBadRequest)
	if sessionID != "" {
		e.WithDetail("session_id", sessionID)
	}
	return e
}

// UploadFailed reports a provider that refused the presign or the PUT.
func UploadFailed(status int, body string) *AppError {
	return New(ErrCodeUploadFailed, "Failed to upload media to provider: "+body, http.StatusBadGateway).
		WithDetail("provider_status", status)
}

// RemoteJobFailed reports a job the provider marked as failed.
func RemoteJobFailed(jobID, reason string) *AppError {
	if reason == "" {
		reason = "job failed"
	}
	e := New(ErrCodeRemoteJobFailed, reason, http.StatusInternalServerError)
	e.Details = map[string]any{}
	if jobID != "" {
		e.Details["job_id"] = jobID
	}
	return e
}

// SubmitRejected reports a job submission answered with a non-200 status.
// The provider's body becomes the message.
func SubmitRejected(status int, body string) *AppError {
	return New(ErrCodeRemoteJobFailed, body, http.StatusBadRequest).WithDetail("provider_status", status)
}

// NoSpeech is the voiceprint failure for a clip without usable speech.
func NoSpeech(segmentID string) *AppError {
	return New(ErrCodeNoSpeech, "No speech detected", http.StatusBadRequest).WithDetail("segment_id", segmentID)
}

// RemoteJobTimedOut reports a job still running after the whole poll budget.
func RemoteJobTimedOut(jobID string, attempts int) *AppError {
	return New(ErrCodeRemoteJobTimedOut, "Timed out waiting for the remote job to finish.", http.StatusGatewayTimeout).
		WithDetail("job_id", jobID).
		WithDetail("attempts", attempts)
}

// Transport wraps a failure that produced no response from service.
func Transport(service string, cause error) *AppError {
	return New(ErrCodeTransport, fmt.Sprintf("Unable to reach %s.", service), http.StatusBadGateway).
		WithDetail("service", service).
		WithCause(cause)
}

func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
}

// InsufficientData reports an analysis that needs more points than it has.
func InsufficientData(message string, have, need int) *AppError {
	return New(ErrCodeInsufficientData, message, http.StatusBadRequest).
		WithDetail("have", have).
		WithDetail("need", need)
}

func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	e.Details = map[string]any{}
	if field != "" {
		e.Details["field"] = field
	}
	return e
}

// Validation is InvalidInput with a caller-composed message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field, http.StatusBadRequest).WithDetail("field", field)
}

func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Internal exposes the cause's text as the message. Operators of this
// single-user tool read it straight from the browser.
func Internal(cause error) *AppError {
	msg := "An unexpected error occurred."
	if cause != nil {
		msg = cause.Error()
	}
	return New(ErrCodeInternal, msg, http.StatusInternalServerError).WithCause(cause)
}
