package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")

	ErrTokenMissing = errors.New("authorization token required")
	ErrTokenInvalid = errors.New("token invalid or expired")

	ErrBlogNotFound = errors.New("blog not found")
	ErrNotBlogOwner = errors.New("blog belongs to another user")
)
