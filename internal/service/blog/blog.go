package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/models"
	"github.com/quillhq/quill/internal/repository"
)

// DefaultThumbnailURL is stored when a blog is created without a thumbnail
const DefaultThumbnailURL = "https://static.quillhq.dev/thumbnails/placeholder.png"

type BlogService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *BlogService {
	return &BlogService{storage: storage}
}

func (s *BlogService) Create(ctx context.Context, user models.User, title string, description string, thumbnail string, content string) (models.Blog, error) {
	if thumbnail == "" {
		thumbnail = DefaultThumbnailURL
	}

	blog, err := s.storage.Blog().CreateBlog(ctx, models.Blog{
		Username:    user.Username,
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
		Content:     content,
	})
	if err != nil {
		return blog, fmt.Errorf("can't create blog. Err: %w", err)
	}

	return blog, nil
}

// Get returns the blog regardless of ownership: reads are not owner restricted
func (s *BlogService) Get(ctx context.Context, id uuid.UUID) (models.Blog, error) {
	return s.storage.Blog().GetBlogByID(ctx, id)
}

// Update applies the patch after the ownership check.
// Check and write run in one transaction so a concurrent delete
// can't slip in between.
// Absent patch fields keep stored values, updated_at is always refreshed.
func (s *BlogService) Update(ctx context.Context, user models.User, id uuid.UUID, patch models.BlogPatch) (models.Blog, error) {
	var updated models.Blog

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		blog, err := st.Blog().GetBlogByID(ctx, id)
		if err != nil {
			return err
		}

		if err := ensureOwner(user, blog); err != nil {
			return err
		}

		updated, err = st.Blog().UpdateBlog(ctx, id, patch)
		return err
	})
	if err != nil {
		return models.Blog{}, err
	}

	return updated, nil
}

func (s *BlogService) Delete(ctx context.Context, user models.User, id uuid.UUID) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		blog, err := st.Blog().GetBlogByID(ctx, id)
		if err != nil {
			return err
		}

		if err := ensureOwner(user, blog); err != nil {
			return err
		}

		return st.Blog().DeleteBlog(ctx, id)
	})
}

// Search delegates matching and ranking to the database text index
func (s *BlogService) Search(ctx context.Context, query string) ([]models.Blog, error) {
	return s.storage.Blog().SearchBlogs(ctx, query)
}

func (s *BlogService) ListOwnedBy(ctx context.Context, username string) ([]models.Blog, error) {
	return s.storage.Blog().ListBlogsByUsername(ctx, username)
}
