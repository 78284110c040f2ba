package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markket/storefront-api/internal/controllers/cms"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/models"
)

// UserResolver resolves the CMS user owning an Authorization header value.
type UserResolver interface {
	Me(ctx context.Context, authorization string) (*models.User, error)
}

// WithUserEmail returns a copy of ctx carrying the authenticated user's e-mail.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// UserEmail returns the authenticated user's e-mail, or "" when none is attached.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

// Identity resolves the caller through the CMS and attaches their e-mail to the request context.
func Identity(resolver UserResolver, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				helpers.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := resolver.Me(r.Context(), authorization)
			if err != nil {
				var unauthorized *cms.UnauthorizedError
				if errors.As(err, &unauthorized) {
					logger.Debug("caller rejected by cms", slog.Int("status", unauthorized.StatusCode))
					helpers.RespondError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				logger.Error("failed to resolve caller", slog.Any("error", err),
					slog.String("requestId", RequestIDFrom(r.Context())))
				helpers.RespondError(w, http.StatusInternalServerError, "Failed to resolve user")
				return
			}
			if user.Email == "" {
				helpers.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserEmail(r.Context(), user.Email)))
		})
	}
}
