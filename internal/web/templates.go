package web

import (
	"html/template"
	"io"
	"path/filepath"
)

func (h *Handler) LoadTemplates(templatesDir string) error {
	tmpl := template.New("base")
	tmpl = tmpl.Funcs(template.FuncMap{
		"distance":    FormatDistance,
		"duration":    FormatDuration,
		"durationPtr": FormatDurationPtr,
		"speed":       FormatSpeed,
		"elevation":   FormatElevation,
		"date":        FormatDate,
	})

	// Load layouts
	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts/*.html"))
	if err != nil {
		return err
	}

	// Load pages
	pages, err := filepath.Glob(filepath.Join(templatesDir, "pages/*.html"))
	if err != nil {
		return err
	}

	files := append(layouts, pages...)

	h.templates, err = tmpl.ParseFiles(files...)
	return err
}

func (h *Handler) renderTemplate(w io.Writer, name string, data interface{}) error {
	return h.templates.ExecuteTemplate(w, name, data)
}
