package blog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/models"
	"github.com/quillhq/quill/internal/repository"
)

// In-memory storage over the fake blog repo.
// InTx runs the callback directly, there is nothing to roll back.
type fakeStorage struct {
	blog *fakeBlogRepo
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blog: newFakeBlogRepo()}
}

func (s *fakeStorage) User() repository.UserRepo { return nil }
func (s *fakeStorage) Blog() repository.BlogRepo { return s.blog }

func (s *fakeStorage) InTx(_ context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}

// In-memory blog repo with the same patch semantics as the postgres one
type fakeBlogRepo struct {
	blogs map[uuid.UUID]models.Blog
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: map[uuid.UUID]models.Blog{}}
}

func (r *fakeBlogRepo) CreateBlog(_ context.Context, blog models.Blog) (models.Blog, error) {
	blog.ID = uuid.New()
	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	r.blogs[blog.ID] = blog
	return blog, nil
}

func (r *fakeBlogRepo) GetBlogByID(_ context.Context, id uuid.UUID) (models.Blog, error) {
	blog, ok := r.blogs[id]
	if !ok {
		return models.Blog{}, apperrors.ErrBlogNotFound
	}
	return blog, nil
}

func (r *fakeBlogRepo) UpdateBlog(_ context.Context, id uuid.UUID, patch models.BlogPatch) (models.Blog, error) {
	blog, ok := r.blogs[id]
	if !ok {
		return models.Blog{}, apperrors.ErrBlogNotFound
	}

	if patch.Title != nil {
		blog.Title = *patch.Title
	}
	if patch.Description != nil {
		blog.Description = *patch.Description
	}
	if patch.Thumbnail != nil {
		blog.Thumbnail = *patch.Thumbnail
	}
	if patch.Content != nil {
		blog.Content = *patch.Content
	}
	blog.UpdatedAt = blog.UpdatedAt.Add(time.Millisecond)

	r.blogs[id] = blog
	return blog, nil
}

func (r *fakeBlogRepo) DeleteBlog(_ context.Context, id uuid.UUID) error {
	if _, ok := r.blogs[id]; !ok {
		return apperrors.ErrBlogNotFound
	}
	delete(r.blogs, id)
	return nil
}

func (r *fakeBlogRepo) ListBlogsByUsername(_ context.Context, username string) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for _, b := range r.blogs {
		if b.Username == username {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (r *fakeBlogRepo) SearchBlogs(_ context.Context, query string) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for _, b := range r.blogs {
		if strings.Contains(b.Title, query) || strings.Contains(b.Description, query) {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

var (
	alice = models.User{ID: uuid.New(), Username: "alice", FullName: "Alice A"}
	bob   = models.User{ID: uuid.New(), Username: "bob", FullName: "Bob B"}
)

func strPtr(s string) *string { return &s }

func Test_BlogService_Create(t *testing.T) {
	t.Parallel()

	t.Run("create ok", func(t *testing.T) {
		s := NewService(newFakeStorage())

		blog, err := s.Create(t.Context(), alice, "T", "D", "https://img.example/t.png", "C")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, blog.ID)
		assert.Equal(t, "alice", blog.Username, "blog should be owned by its creator")
		assert.Equal(t, "https://img.example/t.png", blog.Thumbnail)
		assert.Equal(t, blog.CreatedAt, blog.UpdatedAt, "fresh blog should have equal timestamps")
	})

	t.Run("empty thumbnail falls back to placeholder", func(t *testing.T) {
		s := NewService(newFakeStorage())

		blog, err := s.Create(t.Context(), alice, "T", "D", "", "C")

		require.NoError(t, err)
		assert.Equal(t, DefaultThumbnailURL, blog.Thumbnail)
	})
}

func Test_BlogService_Update(t *testing.T) {
	t.Parallel()

	create := func(t *testing.T) (*BlogService, models.Blog) {
		s := NewService(newFakeStorage())
		blog, err := s.Create(t.Context(), alice, "T", "D", "thumb", "C")
		require.NoError(t, err)
		return s, blog
	}

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		s, blog := create(t)

		updated, err := s.Update(t.Context(), alice, blog.ID, models.BlogPatch{Title: strPtr("New title")})

		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, "D", updated.Description, "absent field should stay untouched")
		assert.Equal(t, "thumb", updated.Thumbnail, "absent field should stay untouched")
		assert.Equal(t, "C", updated.Content, "absent field should stay untouched")
		assert.True(t, updated.UpdatedAt.After(blog.UpdatedAt), "updated_at should always advance")
	})

	t.Run("empty thumbnail clears stored value", func(t *testing.T) {
		s, blog := create(t)

		updated, err := s.Update(t.Context(), alice, blog.ID, models.BlogPatch{Thumbnail: strPtr("")})

		require.NoError(t, err)
		assert.Equal(t, "", updated.Thumbnail, "explicitly empty thumbnail should clear it")
	})

	t.Run("foreign blog is forbidden", func(t *testing.T) {
		s, blog := create(t)

		_, err := s.Update(t.Context(), bob, blog.ID, models.BlogPatch{Title: strPtr("hijack")})

		require.ErrorIs(t, err, apperrors.ErrNotBlogOwner)

		unchanged, err := s.Get(t.Context(), blog.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", unchanged.Title, "failed update must not mutate the blog")
	})

	t.Run("missing blog reports not found, never forbidden", func(t *testing.T) {
		s, _ := create(t)

		_, err := s.Update(t.Context(), bob, uuid.New(), models.BlogPatch{Title: strPtr("x")})

		require.ErrorIs(t, err, apperrors.ErrBlogNotFound)
		require.NotErrorIs(t, err, apperrors.ErrNotBlogOwner)
	})
}

func Test_BlogService_Delete(t *testing.T) {
	t.Parallel()

	create := func(t *testing.T) (*BlogService, models.Blog) {
		s := NewService(newFakeStorage())
		blog, err := s.Create(t.Context(), alice, "T", "D", "", "C")
		require.NoError(t, err)
		return s, blog
	}

	t.Run("owner deletes permanently", func(t *testing.T) {
		s, blog := create(t)

		require.NoError(t, s.Delete(t.Context(), alice, blog.ID))

		_, err := s.Get(t.Context(), blog.ID)
		require.ErrorIs(t, err, apperrors.ErrBlogNotFound)
	})

	t.Run("foreign blog is forbidden", func(t *testing.T) {
		s, blog := create(t)

		err := s.Delete(t.Context(), bob, blog.ID)
		require.ErrorIs(t, err, apperrors.ErrNotBlogOwner)

		_, err = s.Get(t.Context(), blog.ID)
		require.NoError(t, err, "blog should survive the forbidden delete")
	})

	t.Run("missing blog reports not found, never forbidden", func(t *testing.T) {
		s, _ := create(t)

		err := s.Delete(t.Context(), bob, uuid.New())

		require.ErrorIs(t, err, apperrors.ErrBlogNotFound)
		require.NotErrorIs(t, err, apperrors.ErrNotBlogOwner)
	})
}

func Test_BlogService_Read(t *testing.T) {
	t.Parallel()

	t.Run("any user may read any blog", func(t *testing.T) {
		s := NewService(newFakeStorage())
		blog, err := s.Create(t.Context(), alice, "T", "D", "", "C")
		require.NoError(t, err)

		// Reads carry no ownership check at all, the service
		// does not even take the caller as an argument
		got, err := s.Get(t.Context(), blog.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})
}
