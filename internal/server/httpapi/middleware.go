package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/accordai/gateway/internal/logging"
	"github.com/accordai/gateway/internal/server/auth"
	"github.com/accordai/gateway/internal/server/pii"
)

type ctxKey string

const ctxIdentityKey ctxKey = "auth_identity"

// Identity is the authenticated caller, placed in the request context by
// RequireAuth.
type Identity struct {
	UserID   string
	Username string
}

// IdentityFromContext returns the caller identity set by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey).(Identity)
	return id, ok
}

// RequireAuth rejects requests without a valid Bearer token before any
// handler runs. All token failures look the same to the client.
func RequireAuth(secretKey []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeJSON(w, http.StatusUnauthorized, errResp{Error: "authorization_required"})
				return
			}

			parts := strings.Fields(authz)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeJSON(w, http.StatusUnauthorized, errResp{Error: "invalid_authorization_header"})
				return
			}

			claims, err := auth.ParseToken(parts[1], secretKey)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errResp{Error: "invalid_token"})
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentityKey, Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogging logs one line per request. Paths pass through the PII
// redactor first so identifiers in URLs never reach the logs verbatim.
func RequestLogging(logger logging.Logger, redactor *pii.Redactor) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if redactor != nil {
				path = redactor.Redact(path)
			}
			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}
