package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/logger"
	"github.com/quillhq/quill/internal/repository/postgres"
	"github.com/quillhq/quill/internal/service/auth"
	"github.com/quillhq/quill/internal/service/auth/tokenmanager"
	"github.com/quillhq/quill/internal/service/blog"
	"github.com/quillhq/quill/internal/service/user"
	"github.com/quillhq/quill/internal/testutil"
)

type stubPresigner struct{}

func (stubPresigner) UploadURL(context.Context) (string, string, error) {
	return "https://s3.example/upload?signature=stub", "https://s3.example/public/key", nil
}

func Test_Router(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server with the full route table and production services
	withServer := func(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, auth *auth.AuthService)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
			require.NoError(t, err, "token manager should be created without errors")

			authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
			require.NoError(t, err, "auth service starting error", err)

			h := NewRouter(authService, blog.NewService(storage), user.NewService(storage.User()), stubPresigner{}, logger.NewNoOp())
			srv := httptest.NewServer(h)
			defer srv.Close()

			fn(srv.URL, authService)
		})
	}

	// register creates the user through the api and returns a session token
	register := func(t *testing.T, url string, authService *auth.AuthService, username string) string {
		_, err := authService.Register(t.Context(), username, "Full Name", "StrongEnoughPassword")
		require.NoError(t, err)

		token, err := authService.Login(t.Context(), username, "StrongEnoughPassword")
		require.NoError(t, err)
		return token.Value
	}

	do := func(t *testing.T, method string, url string, token string, body string) (*http.Response, string) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reader)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()

		return resp, string(respBody)
	}

	t.Run("register and login ok", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, body := do(t, "POST", url+"/register", "", `{"username": "alice", "fullName": "Alice Doe", "password": "StrongEnoughPassword"}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "User registered successfully"
				}`, body)

			resp, body = do(t, "POST", url+"/login", "", `{"username": "alice", "password": "StrongEnoughPassword"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var loginResp struct {
				Message string `json:"message"`
				Token   string `json:"token"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &loginResp))
			require.Equal(t, "Login successful", loginResp.Message)
			require.NotEmpty(t, loginResp.Token, "login should hand out a session token")
		})
	})

	t.Run("register taken username fails", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			register(t, url, authService, "alice")

			resp, body := do(t, "POST", url+"/register", "", `{"username": "alice", "fullName": "Second Alice", "password": "AnotherPassword"}`)
			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Username already exists"
				}`, body)
		})
	})

	t.Run("login unknown user fails with 404", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, body := do(t, "POST", url+"/login", "", `{"username": "nobody", "password": "whatever"}`)
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "User not found"
				}`, body)
		})
	})

	t.Run("login wrong password fails with 401", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			register(t, url, authService, "alice")

			resp, body := do(t, "POST", url+"/login", "", `{"username": "alice", "password": "WrongPassword"}`)
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Incorrect password"
				}`, body)
		})
	})

	t.Run("protected route requires token", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, body := do(t, "GET", url+"/user/profile", "", "")
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Authorization token required"
				}`, body)

			resp, body = do(t, "GET", url+"/user/profile", "garbage-token", "")
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid or expired token"
				}`, body)
		})
	})

	t.Run("blog lifecycle", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			token := register(t, url, authService, "alice")

			// Create
			resp, body := do(t, "POST", url+"/create-blog", token, `{"title": "Golang tutorial", "description": "Writing web services", "content": "Start with net/http"}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var createResp struct {
				Message string `json:"message"`
				BlogID  string `json:"blog_id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &createResp))
			require.Equal(t, "Blog added successfully", createResp.Message)
			require.NotEmpty(t, createResp.BlogID)

			// Read it back, thumbnail should be the placeholder
			resp, body = do(t, "GET", url+"/blog/"+createResp.BlogID, token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var getResp struct {
				Blog BlogResponse `json:"blog"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &getResp))
			require.Equal(t, "alice", getResp.Blog.Username)
			require.Equal(t, "Golang tutorial", getResp.Blog.Title)
			require.Equal(t, blog.DefaultThumbnailURL, getResp.Blog.Thumbnail)

			// Partial update, only the title changes
			resp, body = do(t, "PUT", url+"/update-blog", token, fmt.Sprintf(`{"blog_id": %q, "title": "Golang tutorial, part 2"}`, createResp.BlogID))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = do(t, "GET", url+"/blog/"+createResp.BlogID, token, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NoError(t, json.Unmarshal([]byte(body), &getResp))
			require.Equal(t, "Golang tutorial, part 2", getResp.Blog.Title)
			require.Equal(t, "Writing web services", getResp.Blog.Description, "untouched field should survive the update")

			// Listed under the owner
			resp, body = do(t, "GET", url+"/user/blogs", token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var listResp struct {
				Blogs []BlogSummary `json:"blogs"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &listResp))
			require.Len(t, listResp.Blogs, 1)

			// Delete and it is gone
			resp, body = do(t, "DELETE", url+"/delete-blog", token, fmt.Sprintf(`{"blog_id": %q}`, createResp.BlogID))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Blog deleted successfully"
				}`, body)

			resp, body = do(t, "GET", url+"/blog/"+createResp.BlogID, token, "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("foreign blog can not be changed", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			aliceToken := register(t, url, authService, "alice")
			bobToken := register(t, url, authService, "bob")

			resp, body := do(t, "POST", url+"/create-blog", aliceToken, `{"title": "Mine", "description": "Private thoughts", "content": "..."}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var createResp struct {
				BlogID string `json:"blog_id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &createResp))

			// Bob can read it
			resp, body = do(t, "GET", url+"/blog/"+createResp.BlogID, bobToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			// But not update it
			resp, body = do(t, "PUT", url+"/update-blog", bobToken, fmt.Sprintf(`{"blog_id": %q, "title": "Now mine"}`, createResp.BlogID))
			require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "You can only update your own blog"
				}`, body)

			// And not delete it
			resp, body = do(t, "DELETE", url+"/delete-blog", bobToken, fmt.Sprintf(`{"blog_id": %q}`, createResp.BlogID))
			require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "You can only delete your own blog"
				}`, body)
		})
	})

	t.Run("search finds blogs with a typo in the query", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			token := register(t, url, authService, "alice")

			resp, body := do(t, "POST", url+"/create-blog", token, `{"title": "Golang tutorial", "description": "Writing web services", "content": "..."}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = do(t, "GET", url+"/search?query=tutoral", token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var searchResp struct {
				Blogs []BlogSummary `json:"blogs"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &searchResp))
			require.Len(t, searchResp.Blogs, 1)
			require.Equal(t, "Golang tutorial", searchResp.Blogs[0].Title)
		})
	})

	t.Run("search without query fails", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			token := register(t, url, authService, "alice")

			resp, body := do(t, "GET", url+"/search", token, "")
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Search query is required"
				}`, body)
		})
	})

	t.Run("profile returns the stored user", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			token := register(t, url, authService, "alice")

			resp, body := do(t, "GET", url+"/user/profile", token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var profileResp struct {
				Username   string `json:"username"`
				FullName   string `json:"fullName"`
				JoinedDate string `json:"joinedDate"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &profileResp))
			require.Equal(t, "alice", profileResp.Username)
			require.Equal(t, "Full Name", profileResp.FullName)
			require.NotEmpty(t, profileResp.JoinedDate)
		})
	})

	t.Run("thumbnail upload url", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, authService *auth.AuthService) {
			token := register(t, url, authService, "alice")

			resp, body := do(t, "GET", url+"/thumbnail/upload-url", token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"upload_url": "https://s3.example/upload?signature=stub",
					"public_url": "https://s3.example/public/key"
				}`, body)
		})
	})

	t.Run("preflight is answered without auth", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, body := do(t, "OPTIONS", url+"/create-blog", "", "")
			require.Equalf(t, http.StatusNoContent, resp.StatusCode, "not expected code. Body: %s", body)
			require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		})
	})

	t.Run("unknown route answers json 404", func(t *testing.T) {
		withServer(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, body := do(t, "GET", url+"/no-such-route", "", "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Not Found"
				}`, body)
		})
	})
}
