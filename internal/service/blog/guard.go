package blog

import (
	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/models"
)

// ensureOwner permits mutation iff the authenticated user owns the blog.
// Must be called with a blog that was fetched successfully: a missing blog
// is reported as not found before ownership is ever evaluated.
func ensureOwner(user models.User, blog models.Blog) error {
	if blog.Username != user.Username {
		return apperrors.ErrNotBlogOwner
	}
	return nil
}
