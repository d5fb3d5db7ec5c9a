package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/janua/internal/config"
	"github.com/stolasapp/janua/internal/storage"
)

func newTestApp(t *testing.T) (*echo.Echo, storage.Store) {
	t.Helper()

	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "db.sqlite")
	cfg.SecretKey = "test-secret"

	logger := slog.New(slog.DiscardHandler)
	store, err := storage.NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(cfg, logger, store), store
}

func get(srv *echo.Echo, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func postForm(srv *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func credentials(username, password string) url.Values {
	return url.Values{
		"username": []string{username},
		"password": []string{password},
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	return nil
}

func TestHello(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	rec := get(srv, "/hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello world", rec.Body.String())
}

func TestIndex(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	rec := get(srv, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stranger")
}

func TestRegister(t *testing.T) {
	t.Parallel()

	srv, store := newTestApp(t)

	t.Run("form renders", func(t *testing.T) {
		rec := get(srv, "/auth/register")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/auth/register"`)
	})

	t.Run("success redirects to login and hashes the password", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("alice", "pw123"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))

		user, err := store.GetUserByName(t.Context(), "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "pw123", string(user.PasswordHash))
	})

	t.Run("empty username re-renders with error", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("", "pw123"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), errUsernameRequired)

		_, err := store.GetUserByName(t.Context(), "")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty password re-renders with error", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("bob", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), errPasswordRequired)

		_, err := store.GetUserByName(t.Context(), "bob")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty username wins over empty password", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), errUsernameRequired)
		assert.NotContains(t, rec.Body.String(), errPasswordRequired)
	})

	t.Run("duplicate username re-renders with error", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("alice", "other"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "User alice is already registered.")

		users, err := store.ListUsers(t.Context(), "alic", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
	})

	t.Run("omitted field is a bad request", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", url.Values{"username": []string{"carol"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := store.GetUserByName(t.Context(), "carol")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	srv, store := newTestApp(t)

	rec := postForm(srv, "/auth/register", credentials("alice", "pw123"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	alice, err := store.GetUserByName(t.Context(), "alice")
	require.NoError(t, err)

	t.Run("form renders", func(t *testing.T) {
		rec := get(srv, "/auth/login")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/auth/login"`)
	})

	t.Run("success sets the session and redirects to index", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", credentials("alice", "pw123"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		// the session resolves to alice on the next request
		body := get(srv, "/", cookie).Body.String()
		assert.Contains(t, body, "alice")
		assert.NotContains(t, body, "stranger")
	})

	t.Run("wrong password is a generic error without a session", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", credentials("alice", "wrong"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), errBadCredentials)
		assert.Nil(t, sessionCookie(t, rec))
	})

	t.Run("unknown username is the same generic error", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", credentials("nobody", "pw123"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), errBadCredentials)
		assert.Nil(t, sessionCookie(t, rec))
	})

	t.Run("empty fields are validation errors", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", credentials("", "pw123"))
		assert.Contains(t, rec.Body.String(), errUsernameRequired)

		rec = postForm(srv, "/auth/login", credentials("alice", ""))
		assert.Contains(t, rec.Body.String(), errPasswordRequired)
	})

	t.Run("omitted field is a bad request", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", url.Values{"password": []string{"pw123"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("request without a session is anonymous", func(t *testing.T) {
		assert.Contains(t, get(srv, "/").Body.String(), "stranger")
	})

	t.Run("stale session resolves to anonymous", func(t *testing.T) {
		rec := postForm(srv, "/auth/login", credentials("alice", "pw123"))
		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)

		require.NoError(t, store.DeleteUser(t.Context(), alice.ID))

		res := get(srv, "/", cookie)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "stranger")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)

	rec := postForm(srv, "/auth/register", credentials("alice", "pw123"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = postForm(srv, "/auth/login", credentials("alice", "pw123"))
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)

	rec = get(srv, "/auth/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// the cleared cookie no longer resolves to a user
	assert.Contains(t, get(srv, "/", cleared).Body.String(), "stranger")
}

func TestRequireLogin(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		rec := get(srv, "/auth/me")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("authenticated passes through", func(t *testing.T) {
		rec := postForm(srv, "/auth/register", credentials("alice", "pw123"))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		rec = postForm(srv, "/auth/login", credentials("alice", "pw123"))
		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)

		res := get(srv, "/auth/me", cookie)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "alice")
	})

	t.Run("tampered session is redirected to login", func(t *testing.T) {
		rec := get(srv, "/auth/me", &http.Cookie{Name: "session", Value: "not-a-signed-token"})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))
	})
}
