package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

var (
	//go:embed templates/*.tmpl
	templateFiles embed.FS

	//go:embed assets
	assetFiles embed.FS
)

// StaticFS holds the marker images and the stylesheet.
func StaticFS() fs.FS {
	static, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		panic(fmt.Errorf("embedded assets are missing: %w", err))
	}

	return static
}

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/game.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (that *HTMLRenderer) Render(w io.Writer, view *View) error {
	if err := that.tmpl.ExecuteTemplate(w, "game", view); err != nil {
		return fmt.Errorf("failed to render game page: %w", err)
	}

	return nil
}
