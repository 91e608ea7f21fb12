// Package web embeds the HTML templates rendered by the handlers.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page together with the shared layout blocks.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// FuncMap holds the helpers available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"datetime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"deref": func(v *string) string {
			if v == nil {
				return ""
			}
			return *v
		},
		"alertClass": func(category string) string {
			switch category {
			case "success", "info", "warning", "danger":
				return "alert-" + category
			default:
				return "alert-secondary"
			}
		},
		"lower": strings.ToLower,
	}
}
