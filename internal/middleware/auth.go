package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"foodgram/internal/handlers/respond"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

type principalKey struct{}

// WithPrincipal stores the caller in ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

// ViewerID is the caller's user id, or 0 for anonymous requests.
func ViewerID(ctx context.Context) int64 {
	p, _ := PrincipalFrom(ctx)
	return p.UserId
}

// Authenticate resolves an "Authorization: Token <jwt>" (or Bearer) header
// into a principal. Requests without the header pass through anonymously;
// a header that does not authenticate is rejected with 401.
func Authenticate(log *slog.Logger, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.Authenticate"
			log := log.With("op", op)

			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := tokenFromHeader(header)
			if !ok {
				respond.Error(w, log, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized))
				return
			}

			principal, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				respond.Error(w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFrom(r.Context()); !ok {
				respond.Error(w, log.With("op", "middleware.RequireAuth"), serviceerrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromHeader(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
