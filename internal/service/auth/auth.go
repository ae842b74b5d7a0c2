package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/models"
	"github.com/quillhq/quill/internal/repository"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Manager that issues and verifies session tokens
type TokenManager interface {
	Issue(username string) (models.IssuedToken, error)
	Parse(tokenString string) (username string, err error)
}

type Config struct {
	// Hasher to use during registration or login
	// Defaults to bcrypt if not set
	Hasher PasswordHasher
}

type AuthService struct {
	token  TokenManager
	hasher PasswordHasher

	userRepo repository.UserRepo
}

func NewService(cfg Config, token TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	return &AuthService{
		token:    token,
		hasher:   hasher,
		userRepo: userRepo,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, fullName string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, username, fullName, hash)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return models.IssuedToken{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.IssuedToken{}, apperrors.ErrWrongPassword
	}

	token, err := s.token.Issue(user.Username)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be generated, sorry. Err: %w", err)
	}

	return token, nil
}

// Authenticate verifies the bearer credential of the request and resolves the user
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return models.User{}, err
	}

	username, err := s.token.Parse(tokenString)
	if err != nil {
		// Expired and malformed tokens read the same to the client,
		// the wrapped cause stays available for logging
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, apperrors.ErrTokenInvalid
		}
		return models.User{}, err
	}

	return user, nil
}

// bearerToken extracts the token from the 'Authorization: Bearer <token>' header
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", apperrors.ErrTokenMissing
	}

	return token, nil
}
