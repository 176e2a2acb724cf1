package errors

// ErrorCode is the machine-readable "code" of an error response.
type ErrorCode string

const (
	// ErrCodeSessionExpired: no session id, or one the registry does not hold.
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"

	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
	ErrCodeRemoteJobFailed   ErrorCode = "REMOTE_JOB_FAILED"
	ErrCodeNoSpeech          ErrorCode = "NO_SPEECH"
	ErrCodeRemoteJobTimedOut ErrorCode = "REMOTE_JOB_TIMED_OUT"
	// ErrCodeTransport: the provider produced no HTTP response at all.
	ErrCodeTransport   ErrorCode = "TRANSPORT_ERROR"
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	// ErrCodeInsufficientData: too few embeddings for a projection or clustering.
	ErrCodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// IsRetryableCode reports whether repeating the same request may succeed.
// Nothing retries automatically; clients read the flag.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTransport, ErrCodeRateLimited, ErrCodeRemoteJobTimedOut:
		return true
	}
	return false
}
