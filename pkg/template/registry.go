package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds the known templates. Construct one per process and pass it
// explicitly into the generator; after setup the registry is effectively
// read-only and safe for concurrent lookups.
type Registry struct {
	mu        sync.RWMutex
	templates map[Type]*Template
}

// NewRegistry creates a registry pre-populated with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[Type]*Template)}
	for _, t := range Builtin() {
		r.templates[t.Type] = t
	}
	return r
}

// Add registers a template, replacing any existing one of the same type.
func (r *Registry) Add(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Type] = t
	return nil
}

// Get returns the template for the given type.
func (r *Registry) Get(tt Type) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[tt]
	if !ok {
		return nil, fmt.Errorf("unknown template type: %s", tt)
	}
	return t, nil
}

// Available returns the registered template types, sorted for stable output.
func (r *Registry) Available() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, 0, len(r.templates))
	for tt := range r.templates {
		out = append(out, tt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LoadDir registers every *.yaml template file in dir. Missing dir is not an
// error; custom templates are optional.
func (r *Registry) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read template dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", path, err)
		}
		if err := r.Add(&t); err != nil {
			return fmt.Errorf("invalid template %s: %w", path, err)
		}
	}
	return nil
}
