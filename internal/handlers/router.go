package handlers

import (
	"net/http"

	"github.com/quillhq/quill/internal/handlers/middleware"
	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/logger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter builds the complete route table.
// Dispatch is by exact method and path, no prefix fallthrough:
// every route is matched in full or answered with a JSON 404.
func NewRouter(
	authService authService,
	blogService blogService,
	userService userService,
	presigner thumbnailPresigner,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.Auth(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /login", handleLogin(authService, logger))
	mux.Handle("POST /register", handleRegister(authService, logger))

	mux.Handle("GET /search", withAuth(handleSearchBlogs(blogService, logger)))
	mux.Handle("GET /blog/{id}", withAuth(handleGetBlog(blogService, logger)))
	mux.Handle("POST /create-blog", withAuth(handleCreateBlog(blogService, logger)))
	mux.Handle("PUT /update-blog", withAuth(handleUpdateBlog(blogService, logger)))
	mux.Handle("DELETE /delete-blog", withAuth(handleDeleteBlog(blogService, logger)))

	mux.Handle("GET /user/profile", withAuth(handleUserProfile(userService, logger)))
	mux.Handle("GET /user/blogs", withAuth(handleUserBlogs(blogService, logger)))

	mux.Handle("GET /thumbnail/upload-url", withAuth(handleThumbnailUploadURL(presigner, logger)))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.ServiceError(w, "Not Found", http.StatusNotFound)
	}))

	// CORS answers preflight before auth ever runs
	return chain(mux,
		middleware.Logger(logger),
		middleware.CORS,
	)
}
