package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplatesFS returns the embedded page, component and fragment templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticFS returns the embedded stylesheet and client script.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
