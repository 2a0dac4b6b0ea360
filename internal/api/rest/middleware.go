package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softdesk-api/go-core/pkg/types"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFrom returns the authenticated principal stored in the
// context, or nil when the request carried no valid credentials. The
// engine treats a nil principal as unauthenticated.
func PrincipalFrom(ctx context.Context) *types.Principal {
	if p, ok := ctx.Value(principalContextKey).(*types.Principal); ok {
		return p
	}
	return nil
}

// authMiddleware resolves the bearer token to a principal and stores
// it in the request context. A request without an Authorization header
// passes through unauthenticated: the engine's own short-circuit
// produces the 401, keeping the decision in one place. A malformed or
// invalid token is rejected here.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Invalid authorization header.")
			return
		}

		claims, err := s.validator.Validate(tokenString)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		// The user record is the source of truth for is_admin; a token
		// minted before a privilege change must not outlive it.
		user, err := s.store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, user.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// recoveryMiddleware recovers from handler panics
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for request logging
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
