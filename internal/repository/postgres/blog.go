package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/models"
)

type BlogRepo struct {
	DB DBTX
}

const createBlog = `-- name: CreateBlog
INSERT INTO blogs (id, username, title, description, thumbnail, content)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, username, title, description, thumbnail, content, created_at, updated_at
`

func (r *BlogRepo) CreateBlog(ctx context.Context, blog models.Blog) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, createBlog,
		uuid.New(), blog.Username, blog.Title, blog.Description, blog.Thumbnail, blog.Content,
	)
	created, err := pgx.CollectOneRow(rows, rowToBlog)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getBlogByID = `-- name: GetBlogByID
SELECT id, username, title, description, thumbnail, content, created_at, updated_at
FROM blogs
WHERE id = $1
`

func (r *BlogRepo) GetBlogByID(ctx context.Context, id uuid.UUID) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, getBlogByID, id)
	blog, err := pgx.CollectOneRow(rows, rowToBlog)

	switch {
	case err == nil:
		return blog, nil
	case errors.Is(err, pgx.ErrNoRows):
		return blog, apperrors.ErrBlogNotFound
	default:
		return blog, fmt.Errorf("db error: %w", err)
	}
}

const updateBlog = `-- name: UpdateBlog
UPDATE blogs SET
    title       = COALESCE($2, title),
    description = COALESCE($3, description),
    thumbnail   = COALESCE($4, thumbnail),
    content     = COALESCE($5, content),
    updated_at  = clock_timestamp()
WHERE id = $1
RETURNING id, username, title, description, thumbnail, content, created_at, updated_at
`

// UpdateBlog applies only non-nil patch fields and always refreshes updated_at
func (r *BlogRepo) UpdateBlog(ctx context.Context, id uuid.UUID, patch models.BlogPatch) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, updateBlog,
		id, patch.Title, patch.Description, patch.Thumbnail, patch.Content,
	)
	blog, err := pgx.CollectOneRow(rows, rowToBlog)

	switch {
	case err == nil:
		return blog, nil
	case errors.Is(err, pgx.ErrNoRows):
		return blog, apperrors.ErrBlogNotFound
	default:
		return blog, fmt.Errorf("db error: %w", err)
	}
}

const deleteBlog = `-- name: DeleteBlog
DELETE FROM blogs
WHERE id = $1
`

func (r *BlogRepo) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBlog, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrBlogNotFound
	}

	return nil
}

const listBlogsByUsername = `-- name: ListBlogsByUsername
SELECT id, username, title, description, thumbnail, content, created_at, updated_at
FROM blogs
WHERE username = $1
ORDER BY created_at DESC
`

func (r *BlogRepo) ListBlogsByUsername(ctx context.Context, username string) ([]models.Blog, error) {
	rows, _ := r.DB.Query(ctx, listBlogsByUsername, username)
	blogs, err := pgx.CollectRows(rows, rowToBlog)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return blogs, nil
}

// Fuzzy match on title and description via pg_trgm word similarity.
// The '<%' operator uses the trigram GIN index; one letter typos still
// match because the similarity threshold is lowered at migration time.
const searchBlogs = `-- name: SearchBlogs
SELECT id, username, title, description, thumbnail, content, created_at, updated_at
FROM blogs
WHERE $1::text <% (title || ' ' || description)
ORDER BY word_similarity($1::text, title || ' ' || description) DESC, created_at DESC
`

func (r *BlogRepo) SearchBlogs(ctx context.Context, query string) ([]models.Blog, error) {
	rows, _ := r.DB.Query(ctx, searchBlogs, query)
	blogs, err := pgx.CollectRows(rows, rowToBlog)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return blogs, nil
}

func rowToBlog(row pgx.CollectableRow) (models.Blog, error) {
	var b models.Blog
	err := row.Scan(&b.ID, &b.Username, &b.Title, &b.Description, &b.Thumbnail, &b.Content, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
