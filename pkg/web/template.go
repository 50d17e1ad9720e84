package web

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"
)

// LoadTemplates parses every template under dir with the shared func map.
// The result is handed to gin's SetHTMLTemplate.
func LoadTemplates(dir string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap()).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
		"lower":      strings.ToLower,
		"add":        func(a, b int) int { return a + b },
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
