package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labelflow/internal/dto"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// SecretHeader carries the shared secret of the mail-send endpoint.
const SecretHeader = "X-Email-Secret"

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by RequireIdentity.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RequireIdentity rejects requests without a valid bearer token. An empty
// secret rejects every request.
func RequireIdentity(secret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				writeUnauthorized(w, "identity verification is not configured", logger)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeUnauthorized(w, "missing bearer token", logger)
				return
			}

			userID, err := UserIDFromToken(strings.TrimSpace(token), secret)
			if err != nil {
				writeUnauthorized(w, err.Error(), logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequireSharedSecret accepts the secret from the X-Email-Secret header or the
// secret query parameter and compares it in constant time. An empty expected
// secret rejects every request.
func RequireSharedSecret(expected string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(SecretHeader)
			if given == "" {
				given = r.URL.Query().Get("secret")
			}

			if expected == "" || given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
				writeUnauthorized(w, "invalid or missing secret", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string, logger *zap.Logger) {
	traceID := uuid.New().String()
	logger.Warn("request rejected", zap.String("traceId", traceID), zap.String("reason", message))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusUnauthorized,
		Code:      "UNAUTHORIZED",
		Message:   message,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
