package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/quillhq/quill/internal/apperrors"
	"github.com/quillhq/quill/internal/handlers/render"
	"github.com/quillhq/quill/internal/logger"
	"github.com/quillhq/quill/internal/models"
)

type authService interface {
	// Register user with username, full name and password
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	Register(ctx context.Context, username string, fullName string, password string) (models.User, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found
	// Has to return apperrors.ErrWrongPassword if password does not match
	Login(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Verify request bearer credential and return the authenticated user
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		_, err = authService.Register(r.Context(), data.Username, data.FullName, data.Password)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{Message: "User registered successfully"}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username already exists", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Login successful", Token: token.Value})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrWrongPassword):
			render.ServiceError(w, "Incorrect password", http.StatusUnauthorized)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
