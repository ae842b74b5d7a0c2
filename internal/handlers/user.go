package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/handlers/userctx"
	"github.com/quillhq/quill/internal/logger"
	"github.com/quillhq/quill/internal/models"
)

type userService interface {
	// Has to return apperrors.ErrUserNotFound if user not found
	GetProfile(ctx context.Context, username string) (models.User, error)
}

func handleUserProfile(userService userService, l logger.Logger) http.Handler {
	type response struct {
		Username   string    `json:"username"`
		FullName   string    `json:"fullName"`
		JoinedDate time.Time `json:"joinedDate"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		profile, err := userService.GetProfile(r.Context(), user.Username)

		switch {
		case err == nil:
			render.JSON(w, response{
				Username:   profile.Username,
				FullName:   profile.FullName,
				JoinedDate: profile.JoinedAt,
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to get profile", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUserBlogs(blogService blogService, l logger.Logger) http.Handler {
	type response struct {
		Blogs []BlogSummary `json:"blogs"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		blogs, err := blogService.ListOwnedBy(r.Context(), user.Username)

		switch err {
		case nil:
			render.JSON(w, response{Blogs: blogsToSummaries(blogs)})
		default:
			l.Error("Failed to list user blogs", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
