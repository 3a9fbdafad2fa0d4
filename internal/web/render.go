package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anivibe/anivibe/internal/nav"
	assets "github.com/anivibe/anivibe/web"
)

// Page templates, one per route.
var pageTemplates = []string{
	"home", "search", "manga", "reader", "anime", "anime-details", "schedule", "community", "error",
}

// Layout is the data every page template receives.
type Layout struct {
	Nav              *nav.Definition
	Page             Page
	Sidebar          SidebarView
	Rail             RailView
	CarouselInterval int64
}

// Renderer executes the embedded templates. It implements echo.Renderer for
// full pages and renders the pieces live sessions push.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(assets.TemplatesFS())
}

// NewRendererFS parses templates from fsys.
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, page := range pageTemplates {
		t, err := template.New("").Funcs(funcMap).ParseFS(fsys, "base.html", "components.html", "pages/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}

	t, err := template.New("").Funcs(funcMap).ParseFS(fsys, "components.html", "fragments.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment templates: %w", err)
	}
	r.fragments = t
	return r, nil
}

// Render implements echo.Renderer. name is a page template and data a
// Layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, err := r.page(name)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, "base", data)
}

// RenderMain renders only the routed view of a layout.
func (r *Renderer) RenderMain(l Layout) (string, error) {
	t, err := r.page(l.Page.Template)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "main", l); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSidebars renders the left and right sidebars of a layout.
func (r *Renderer) RenderSidebars(l Layout) (left, right string, err error) {
	var lb, rb bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&lb, "sidebar-left", l); err != nil {
		return "", "", err
	}
	if err := r.fragments.ExecuteTemplate(&rb, "sidebar-right", l); err != nil {
		return "", "", err
	}
	return lb.String(), rb.String(), nil
}

// RenderFragment renders a named fragment.
func (r *Renderer) RenderFragment(w io.Writer, name string, data any) error {
	return r.fragments.ExecuteTemplate(w, name, data)
}

func (r *Renderer) page(name string) (*template.Template, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", name)
	}
	return t, nil
}

var funcMap = template.FuncMap{
	"add":      func(a, b int) int { return a + b },
	"subtract": func(a, b int) int { return a - b },
	"join":     strings.Join,
	"activeLink": func(v nav.View, id string) bool {
		return nav.ActiveLink(v, id)
	},
	"activeTab": func(v nav.View, href string) bool {
		return nav.ActiveTab(v, href)
	},
	"activeFeed": func(v nav.View, id string) bool {
		return nav.ActiveFeed(v, id)
	},
	"pad2": func(n int) string { return fmt.Sprintf("%02d", n) },
	"more": moreControl,
}

// moreControl builds the load-more control of a page list. kind is anime,
// chapters or episodes.
func moreControl(kind, moreURL string, p Page) MoreList {
	label := LabelMoreAnime
	switch kind {
	case "chapters":
		label = LabelMoreChapters
	case "episodes":
		label = LabelMoreEpisodes
	}
	return MoreList{Label: label, MoreURL: moreURL, Message: p.ExtendMsg, Busy: p.Extending}
}
