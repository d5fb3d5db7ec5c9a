package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/janua/internal/sec"
	"github.com/stolasapp/janua/internal/storage"
	"github.com/stolasapp/janua/internal/storage/db"
)

// userKey is the echo context key holding the request's resolved identity.
const userKey = "user"

// Error messages surfaced on form re-renders.
const (
	errUsernameRequired = "Username is required."
	errPasswordRequired = "Password is required."
	// errBadCredentials deliberately does not distinguish an unknown username
	// from a wrong password, to avoid username enumeration.
	errBadCredentials = "Incorrect username or password."
)

type handler struct {
	users    storage.Users
	sessions sec.Sessions
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.index)
	e.GET("/hello", h.hello)

	auth := e.Group("/auth")
	auth.GET("/register", h.registerForm)
	auth.POST("/register", h.registerSubmit)
	auth.GET("/login", h.loginForm)
	auth.POST("/login", h.loginSubmit)
	auth.GET("/logout", h.logout)
	auth.GET("/me", h.me, RequireLogin)
}

// resolveIdentity runs before every handler. It derives the request's identity
// from the session cookie: no session, a stale session (deleted user), or a
// token that does not verify all resolve to anonymous, never to an error.
func (h handler) resolveIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := h.sessions.Resolve(c.Request())
		if err == nil {
			user, err := h.users.GetUser(c.Request().Context(), userID)
			switch {
			case err == nil:
				c.Set(userKey, &user)
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
		}
		return next(c)
	}
}

// RequireLogin wraps a handler, short-circuiting anonymous requests with a
// redirect to the login form. It is transparent for authenticated requests.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		return next(c)
	}
}

// currentUser returns the resolved identity for the request, or nil when
// anonymous.
func currentUser(c echo.Context) *db.User {
	user, _ := c.Get(userKey).(*db.User)
	return user
}

func (h handler) index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", pageData{
		Title: "Welcome",
		User:  currentUser(c),
	})
}

func (h handler) hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello world")
}

func (h handler) registerForm(c echo.Context) error {
	return c.Render(http.StatusOK, "auth/register.html", pageData{
		Title: "Register",
		User:  currentUser(c),
	})
}

func (h handler) registerSubmit(c echo.Context) error {
	username, password, err := formCredentials(c)
	if err != nil {
		return err
	}

	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "auth/register.html", pageData{
			Title: "Register",
			User:  currentUser(c),
			Error: msg,
		})
	}

	if username == "" {
		return renderErr(errUsernameRequired)
	} else if password == "" {
		return renderErr(errPasswordRequired)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err = h.users.CreateUser(c.Request().Context(), username, hash); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return renderErr(fmt.Sprintf("User %s is already registered.", username))
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

func (h handler) loginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "auth/login.html", pageData{
		Title: "Log In",
		User:  currentUser(c),
	})
}

func (h handler) loginSubmit(c echo.Context) error {
	username, password, err := formCredentials(c)
	if err != nil {
		return err
	}

	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "auth/login.html", pageData{
			Title: "Log In",
			User:  currentUser(c),
			Error: msg,
		})
	}

	if username == "" {
		return renderErr(errUsernameRequired)
	} else if password == "" {
		return renderErr(errPasswordRequired)
	}

	user, err := h.users.GetUserByName(c.Request().Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		return renderErr(errBadCredentials)
	} else if err != nil {
		return err
	}
	if err = sec.ComparePassword(password, user.PasswordHash); err != nil {
		return renderErr(errBadCredentials)
	}

	// a fresh token replaces any previously held session state
	cookie, err := h.sessions.Issue(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h handler) logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h handler) me(c echo.Context) error {
	return c.Render(http.StatusOK, "auth/me.html", pageData{
		Title: "Account",
		User:  currentUser(c),
	})
}

// formCredentials extracts the username and password fields from the submitted
// form. A form that omits either field entirely (as opposed to submitting it
// empty) is a malformed request, not a validation failure.
func formCredentials(c echo.Context) (username, password string, err error) {
	form, err := c.FormParams()
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "malformed form body")
	}
	if !form.Has("username") {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "missing form field: username")
	}
	if !form.Has("password") {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "missing form field: password")
	}
	return form.Get("username"), form.Get("password"), nil
}
