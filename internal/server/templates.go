// internal/server/templates.go
package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed web/templates/*.html
var templateFS embed.FS

// loadTemplates parses every embedded page once into a cache keyed by
// file name.
func loadTemplates() (map[string]*template.Template, error) {
	entries, err := fs.Glob(templateFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error listing templates: %w", err)
	}

	cache := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := path.Base(entry)
		tmpl, err := template.New(name).ParseFS(templateFS, entry)
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", name, err)
		}
		cache[name] = tmpl
	}
	return cache, nil
}
