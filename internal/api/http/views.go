package http

import (
	"embed"
	"html/template"
	"io/fs"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

// ViewsLayout wraps every rendered page.
const ViewsLayout = "layouts/main"

// AppOptions configures the fiber application.
type AppOptions struct {
	Name         string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewViewEngine builds the template engine over the embedded views.
func NewViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFunc("pictureURL", pictureURL)
	return engine, nil
}

// NewApp creates the fiber application with server-rendered views.
func NewApp(opts AppOptions) (*fiber.App, error) {
	engine, err := NewViewEngine()
	if err != nil {
		return nil, err
	}
	return fiber.New(fiber.Config{
		AppName:               opts.Name,
		Views:                 engine,
		ViewsLayout:           ViewsLayout,
		BodyLimit:             opts.BodyLimit,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		DisableStartupMessage: true,
	}), nil
}

// pictureURL lets inline image data URLs and web URLs through html/template's
// URL filter. Anything else renders empty.
func pictureURL(raw string) template.URL {
	switch {
	case strings.HasPrefix(raw, "data:image/"),
		strings.HasPrefix(raw, "https://"),
		strings.HasPrefix(raw, "http://"):
		return template.URL(raw)
	default:
		return ""
	}
}
