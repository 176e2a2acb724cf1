package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/voicemap/logger"
)

// slowRequest is well past a normal request but below a full diarization poll.
const slowRequest = 30 * time.Second

// quietPaths are probed by orchestrators and never logged.
var quietPaths = map[string]bool{"/health": true, "/info": true, "/version": true, "/metrics": true}

// RequestLogger logs one line per request. 5xx answers log at error level,
// 4xx at warn and everything else at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[strings.TrimPrefix(r.URL.Path, "/api")] {
				next.ServeHTTP(w, r)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.status,
				"bytes", rec.bytes,
				logger.FieldDuration, elapsed.Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if elapsed > slowRequest {
				fields["slow"] = true
			}

			switch {
			case rec.status >= 500:
				log.Error("Request completed", fields)
			case rec.status >= 400:
				log.Warn("Request completed", fields)
			default:
				log.Debug("Request completed", fields)
			}
		})
	}
}

// recorder remembers the first status written and counts body bytes.
type recorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (r *recorder) WriteHeader(code int) {
	if !r.written {
		r.status, r.written = code, true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.written = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
