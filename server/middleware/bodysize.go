package middleware

import (
	"net/http"

	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/util"
)

const defaultMaxBodySize = 200 << 20

// BodySizeLimit caps request bodies at maxSize ("200MB", "512KB"). A declared
// Content-Length over the cap is refused with 413 before the handler runs;
// chunked bodies fail on read once they pass it.
func BodySizeLimit(maxSize string) Middleware {
	limit := util.ParseSizeOr(maxSize, defaultMaxBodySize)
	tooLarge := func() *apperrors.AppError {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large.", http.StatusRequestEntityTooLarge).
			WithDetail("limit_bytes", limit)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, tooLarge())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
