package echoweb

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/user"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutTemplate = "templates/layout.html"
	csrfField      = "csrf"
)

// Page is the data handed to every template.
type Page struct {
	AppName   string
	Principal user.Principal
	Flash     string
	CSRF      string
	Data      interface{}
}

type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

var templateFuncs = template.FuncMap{
	"deref": func(b *bool) bool { return b != nil && *b },
}

// newRenderer parses every page together with the shared layout.
func newRenderer() *renderer {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	r := &renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		page := name[len("templates/"):]
		r.pages[page] = template.Must(
			template.New(page).Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, name),
		)
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

func (s *server) render(ctx echo.Context, code int, name string, data interface{}) error {
	csrf, _ := ctx.Get(csrfField).(string)
	return ctx.Render(code, name, Page{
		AppName:   s.Conf.AppName,
		Principal: getContextPrincipal(ctx),
		Flash:     popFlash(ctx),
		CSRF:      csrf,
		Data:      data,
	})
}
