package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const userIDKey ctxKey = iota

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// header value, or "" when the header has another shape.
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Token reads the session token from the Authorization header, falling back
// to the token query parameter for browser WebSocket clients.
func Token(r *http.Request) string {
	if t := ExtractBearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// WithUserID stores the authenticated user on ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the user stored by RequireAuth.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// RequireAuth rejects requests without a valid session with 401.
func RequireAuth(auth Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := Token(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			userID, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, services.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
