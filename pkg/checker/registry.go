package checker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"mercator-hq/rdl/pkg/rdl/rules"
	"mercator-hq/rdl/pkg/rdl/schema"
)

// Schema is a compiled, named rule.
type Schema struct {
	Name     string
	Path     string // Empty for schemas registered in code
	Rule     rules.Rule
	Hash     string // SHA-256 of the schema text
	LoadedAt time.Time
}

// Registry is a concurrency-safe set of named schemas. Reloads replace the
// whole set at once, so readers never see a partial update.
type Registry struct {
	mu       sync.RWMutex
	schemas  map[string]*Schema
	version  string
	loadedAt time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema), loadedAt: time.Now()}
}

// Register adds or replaces a schema compiled in code.
func (r *Registry) Register(name string, rule rules.Rule) error {
	if name == "" {
		return &SchemaError{Name: name, Cause: errors.New("schema name cannot be empty")}
	}
	if rule == nil {
		return &SchemaError{Name: name, Cause: errors.New("rule cannot be nil")}
	}
	sum := sha256.Sum256([]byte(rule.String()))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = &Schema{Name: name, Rule: rule, Hash: hex.EncodeToString(sum[:]), LoadedAt: time.Now()}
	r.updateVersion()
	return nil
}

// Load compiles every name -> path entry and, only if all succeed,
// replaces the registry contents with them. Schemas registered in code
// are kept unless a file schema of the same name replaces them.
func (r *Registry) Load(files map[string]string) error {
	loaded := make(map[string]*Schema, len(files))
	var errs []error

	for _, name := range slices.Sorted(maps.Keys(files)) {
		s, err := LoadSchema(name, files[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loaded[name] = s
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]*Schema, len(loaded))
	for name, s := range r.schemas {
		if s.Path == "" {
			next[name] = s
		}
	}
	maps.Copy(next, loaded)
	r.schemas = next
	r.loadedAt = time.Now()
	r.updateVersion()
	return nil
}

// LoadSchema reads and compiles one schema file.
func LoadSchema(name, path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaError{Name: name, Path: path, Cause: err}
	}
	rule, err := schema.NewParser().WithSourceName(path).Parse(string(data))
	if err != nil {
		return nil, &SchemaError{Name: name, Path: path, Cause: err}
	}
	sum := sha256.Sum256(data)
	return &Schema{
		Name:     name,
		Path:     path,
		Rule:     rule,
		Hash:     hex.EncodeToString(sum[:]),
		LoadedAt: time.Now(),
	}, nil
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.schemas))
}

// List returns the registered schemas sorted by name.
func (r *Registry) List() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Schema, 0, len(r.schemas))
	for _, name := range slices.Sorted(maps.Keys(r.schemas)) {
		out = append(out, r.schemas[name])
	}
	return out
}

// Count returns the number of registered schemas.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Version identifies the current schema set. It changes whenever a schema
// is added, removed or edited.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadedAt returns when the file schemas were last loaded.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Paths returns the files backing the registered schemas.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var paths []string
	for _, s := range r.schemas {
		if s.Path != "" {
			paths = append(paths, s.Path)
		}
	}
	slices.Sort(paths)
	return paths
}

// updateVersion must be called with mu held.
func (r *Registry) updateVersion() {
	if len(r.schemas) == 0 {
		r.version = ""
		return
	}
	h := sha256.New()
	for _, name := range slices.Sorted(maps.Keys(r.schemas)) {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(r.schemas[name].Hash))
		h.Write([]byte{0})
	}
	r.version = hex.EncodeToString(h.Sum(nil))[:12]
}
