package app

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/janua/internal/storage/db"
)

//go:embed templates
var templateFS embed.FS

// pageData is the data passed to every page template.
type pageData struct {
	// Title is the page title shown in the header.
	Title string
	// User is the request's resolved identity, nil when anonymous.
	User *db.User
	// Error is the validation message flashed above the page content.
	Error string
}

// renderer satisfies [echo.Renderer] over the embedded html/template pages.
// Each page is parsed together with the base layout so pages can override its
// content block without colliding with each other.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	names := []string{
		"index.html",
		"auth/register.html",
		"auth/login.html",
		"auth/me.html",
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(template.ParseFS(
			templateFS,
			"templates/base.html",
			"templates/"+name,
		))
	}
	return &renderer{pages: pages}
}

// Render satisfies [echo.Renderer].
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return page.ExecuteTemplate(w, "base", data)
}
