package handlers

import (
	"context"
	"net/http"

	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/logger"
)

type thumbnailPresigner interface {
	UploadURL(ctx context.Context) (uploadURL string, publicURL string, err error)
}

// handleThumbnailUploadURL hands the client a presigned PUT url.
// The upload itself happens out of band; the blog only ever stores public_url.
func handleThumbnailUploadURL(presigner thumbnailPresigner, l logger.Logger) http.Handler {
	type response struct {
		UploadURL string `json:"upload_url"`
		PublicURL string `json:"public_url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploadURL, publicURL, err := presigner.UploadURL(r.Context())

		switch err {
		case nil:
			render.JSON(w, response{UploadURL: uploadURL, PublicURL: publicURL})
		default:
			l.Error("Failed to presign thumbnail upload", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
