package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	appKey   contextKey = "app"
	tokenKey contextKey = "sessionToken"
)

// SessionMiddleware validates Bearer session tokens and injects the
// session's App into the context.
func SessionMiddleware(sessions *service.Sessions, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("session: missing or malformed token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "session token not provided")
				return
			}

			app, err := sessions.Lookup(token)
			if err != nil {
				logger.Warn("session: lookup failed",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), appKey, app)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AppFromContext returns the session App injected by SessionMiddleware.
func AppFromContext(ctx context.Context) *service.App {
	v, _ := ctx.Value(appKey).(*service.App)
	return v
}

func tokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
