// Package view holds the HTML templates of the profile pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"sort"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Template names rendered by the handlers.
const (
	Index = "index.tmpl"
	Edit  = "edit.tmpl"
	Error = "error.tmpl"
)

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
		"sortedKeys": sortedKeys,
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
