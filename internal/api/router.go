package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/hearthhq/hearth/internal/auth"
	"log/slog"
)

type requestIDKey struct{}

// RequestIDMiddleware tags every request with an id so boundary logs for a
// single feed fetch can be correlated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, activityHandler *ActivityHandler, authConfig auth.Config, logger *slog.Logger) {
	authHandler := NewAuthHandler(authConfig, logger)
	authMiddleware := auth.Middleware(authConfig)

	protected := func(handlerFunc http.HandlerFunc) http.HandlerFunc {
		wrapped := RequestIDMiddleware(authMiddleware(handlerFunc))
		return wrapped.ServeHTTP
	}

	// Authentication routes (login is public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", protected(authHandler.ValidateToken))

	// Activity feed routes
	mux.HandleFunc("/api/activities", protected(activityHandler.GetActivities))
	mux.HandleFunc("/api/activities/counts", protected(activityHandler.GetActivityCounts))
	mux.HandleFunc("/api/activities/digest", protected(activityHandler.GetDigest))
}
