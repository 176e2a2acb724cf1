package logger

import "time"

// Keys shared across packages so log queries can rely on them.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldSegmentID = "segment_id"
	FieldJobID     = "job_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldAttempt   = "attempt"
)

// Fields pairs up kvs as key, value, key, value. Non-string keys and a
// trailing odd value are dropped.
//
//	log.Info("segment extracted", logger.Fields(logger.FieldSegmentID, id, "start", start))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		if k, ok := kvs[i-1].(string); ok {
			m[k] = kvs[i]
		}
	}
	return m
}

// ErrorFields tags a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

// DurationFields tags a timed operation in milliseconds.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}
