package log

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
)

func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// Handler makes logger available to every request handled by next.
func Handler(logger logr.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.V(2).Info("request", "method", r.Method, "path", r.URL.Path)
		r = r.WithContext(WithLogger(r.Context(), logger))
		next.ServeHTTP(w, r)
	})
}
