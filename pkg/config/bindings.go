package config

import (
	"path"
	"path/filepath"
)

// SchemaFor returns the schema name bound to a document path, or the
// default schema when no binding matches.
func (c *Config) SchemaFor(docPath string) string {
	for _, b := range c.Documents.Bindings {
		if matchBinding(b.Pattern, docPath) {
			return b.Schema
		}
	}
	return c.Documents.DefaultSchema
}

// matchBinding matches the slash-separated path first and then its base
// name, so "*.rdl" binds documents in any directory.
func matchBinding(pattern, docPath string) bool {
	p := filepath.ToSlash(docPath)
	if ok, _ := path.Match(pattern, p); ok {
		return true
	}
	ok, _ := path.Match(pattern, path.Base(p))
	return ok
}
