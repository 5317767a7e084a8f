// Package web renders the HTML pages of the loan tracker.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/prestamos/loan-tracker/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// CSRF form field and the echo context key the token is published under.
const (
	CSRFField      = "_csrf"
	CSRFContextKey = "csrf"
)

// Page is the data every template receives. CSRF is filled in by Render.
type Page struct {
	Title     string
	AccountID string
	Flash     *Flash
	CSRF      string
	Data      any
}

// Renderer implements echo.Renderer over the embedded templates. Each page is
// parsed together with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the layout with the named page's content block.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if page, ok := data.(Page); ok && c != nil {
		if token, ok := c.Get(CSRFContextKey).(string); ok {
			page.CSRF = token
		}
		data = page
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"money": domain.FormatMoney,
	"percent": func(rate decimal.Decimal) string {
		return rate.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
	},
	"withInterest": func(principal decimal.Decimal, months int) string {
		b, err := domain.BalanceWithInterest(principal, months)
		if err != nil {
			return ""
		}
		return domain.FormatMoney(b)
	},
	"date": func(t time.Time) string {
		return t.Local().Format("02/01/2006 15:04")
	},
	"days": func() []int {
		out := make([]int, 31)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}
