package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/handlers/userctx"
	"github.com/quillhq/quill/internal/models"
)

type authService interface {
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

// Auth verifies the bearer credential and stores the user in the request context.
// Credential problems are always 401: missing and invalid tokens differ only
// in the message.
func Auth(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), r)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrTokenMissing):
				render.ServiceError(w, "Authorization token required", http.StatusUnauthorized)
				return
			default:
				render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
