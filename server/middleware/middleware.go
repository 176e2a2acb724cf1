package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/voicemap/errors"
)

// Middleware decorates an http.Handler. The server applies the stack to its
// root mux, so Gin routes and mounted handlers share it.
type Middleware func(http.Handler) http.Handler

// Chain folds mws into one Middleware; mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}

func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
