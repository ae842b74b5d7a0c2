package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/handlers/userctx"
	"github.com/quillhq/quill/internal/logger"
	"github.com/quillhq/quill/internal/models"
)

type blogService interface {
	Create(ctx context.Context, user models.User, title string, description string, thumbnail string, content string) (models.Blog, error)
	Get(ctx context.Context, id uuid.UUID) (models.Blog, error)

	// Update and Delete check ownership after the fetch:
	// missing blog is apperrors.ErrBlogNotFound, foreign blog is apperrors.ErrNotBlogOwner
	Update(ctx context.Context, user models.User, id uuid.UUID, patch models.BlogPatch) (models.Blog, error)
	Delete(ctx context.Context, user models.User, id uuid.UUID) error

	Search(ctx context.Context, query string) ([]models.Blog, error)
	ListOwnedBy(ctx context.Context, username string) ([]models.Blog, error)
}

type BlogResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BlogSummary is the list item shape for search and profile listings
type BlogSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func blogToResponse(b models.Blog) BlogResponse {
	return BlogResponse{
		ID:          b.ID,
		Username:    b.Username,
		Title:       b.Title,
		Description: b.Description,
		Thumbnail:   b.Thumbnail,
		Content:     b.Content,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func blogsToSummaries(blogs []models.Blog) []BlogSummary {
	summaries := make([]BlogSummary, 0, len(blogs))
	for _, b := range blogs {
		summaries = append(summaries, BlogSummary{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			Thumbnail:   b.Thumbnail,
			CreatedAt:   b.CreatedAt,
			UpdatedAt:   b.UpdatedAt,
		})
	}
	return summaries
}

func handleCreateBlog(blogService blogService, l logger.Logger) http.Handler {
	type request struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		Thumbnail   string `json:"thumbnail"`
		Content     string `json:"content" validate:"required"`
	}
	type response struct {
		Message string    `json:"message"`
		BlogID  uuid.UUID `json:"blog_id"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		blog, err := blogService.Create(r.Context(), user, data.Title, data.Description, data.Thumbnail, data.Content)

		switch err {
		case nil:
			render.JSONWithStatus(w, response{Message: "Blog added successfully", BlogID: blog.ID}, http.StatusCreated)
		default:
			l.Error("Failed to create blog", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetBlog(blogService blogService, l logger.Logger) http.Handler {
	type response struct {
		Blog BlogResponse `json:"blog"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid blog id", http.StatusBadRequest)
			return
		}

		blog, err := blogService.Get(r.Context(), id)

		switch {
		case err == nil:
			render.JSON(w, response{Blog: blogToResponse(blog)})
		case errors.Is(err, apperrors.ErrBlogNotFound):
			render.ServiceError(w, "Blog not found", http.StatusNotFound)
		default:
			l.Error("Failed to get blog", "error", err, "blog_id", id)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateBlog(blogService blogService, l logger.Logger) http.Handler {
	type request struct {
		BlogID      string  `json:"blog_id" validate:"required,uuid"`
		Title       *string `json:"title" validate:"omitnil,min=1"`
		Description *string `json:"description" validate:"omitnil,min=1"`
		Thumbnail   *string `json:"thumbnail"`
		Content     *string `json:"content" validate:"omitnil,min=1"`
	}
	type response struct {
		Message string    `json:"message"`
		BlogID  uuid.UUID `json:"blog_id"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		// Absent fields stay nil and keep stored values untouched.
		// An explicitly empty thumbnail clears the stored one.
		patch := models.BlogPatch{
			Title:       data.Title,
			Description: data.Description,
			Thumbnail:   data.Thumbnail,
			Content:     data.Content,
		}

		blog, err := blogService.Update(r.Context(), user, uuid.MustParse(data.BlogID), patch)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Blog updated successfully", BlogID: blog.ID})
		case errors.Is(err, apperrors.ErrBlogNotFound):
			render.ServiceError(w, "Blog not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrNotBlogOwner):
			render.ServiceError(w, "You can only update your own blog", http.StatusForbidden)
		default:
			l.Error("Failed to update blog", "error", err, "blog_id", data.BlogID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteBlog(blogService blogService, l logger.Logger) http.Handler {
	type request struct {
		BlogID string `json:"blog_id" validate:"required,uuid"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = blogService.Delete(r.Context(), user, uuid.MustParse(data.BlogID))

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Blog deleted successfully"})
		case errors.Is(err, apperrors.ErrBlogNotFound):
			render.ServiceError(w, "Blog not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrNotBlogOwner):
			render.ServiceError(w, "You can only delete your own blog", http.StatusForbidden)
		default:
			l.Error("Failed to delete blog", "error", err, "blog_id", data.BlogID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSearchBlogs(blogService blogService, l logger.Logger) http.Handler {
	type response struct {
		Blogs []BlogSummary `json:"blogs"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			render.ServiceError(w, "Search query is required", http.StatusBadRequest)
			return
		}

		blogs, err := blogService.Search(r.Context(), query)

		switch err {
		case nil:
			render.JSON(w, response{Blogs: blogsToSummaries(blogs)})
		default:
			l.Error("Failed to search blogs", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
