package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, fullName string, hashedPassword string) (models.User, error)

	// Get user by username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Blog repository interface
type BlogRepo interface {
	// Create blog owned by username
	CreateBlog(ctx context.Context, blog models.Blog) (models.Blog, error)

	// Get blog by id
	// If blog not found must return apperrors.ErrBlogNotFound
	GetBlogByID(ctx context.Context, id uuid.UUID) (models.Blog, error)

	// Apply patch to blog and refresh its updated_at
	// Nil patch fields leave stored values untouched
	// If blog not found must return apperrors.ErrBlogNotFound
	UpdateBlog(ctx context.Context, id uuid.UUID, patch models.BlogPatch) (models.Blog, error)

	// Delete blog permanently
	// If blog not found must return apperrors.ErrBlogNotFound
	DeleteBlog(ctx context.Context, id uuid.UUID) error

	// List blogs owned by username, newest first
	ListBlogsByUsername(ctx context.Context, username string) ([]models.Blog, error)

	// Search blogs by title and description with typo tolerance
	// Results come in relevance order; no matches is an empty slice, not an error
	SearchBlogs(ctx context.Context, query string) ([]models.Blog, error)
}

// Storage combines repositories over a single connection source
type Storage interface {
	User() UserRepo
	Blog() BlogRepo

	// Run fn in transaction; rollback if fn returns error
	InTx(ctx context.Context, fn func(Storage) error) error
}
