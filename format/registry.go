// Package format registers map export formats under a name and file
// extension, the way an editor host discovers its writers.
package format

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/milk9111/sonicstage/stage"
)

var (
	ErrUnknownFormat   = errors.New("format: unknown format")
	ErrDuplicateFormat = errors.New("format: already registered")
)

type MapFormat struct {
	Name        string
	Description string
	Extension   string
	Write       func(m stage.Map, path string) error
}

type Registry struct {
	mu      sync.RWMutex
	formats map[string]MapFormat
}

func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]MapFormat)}
}

// Default holds the formats registered by this module.
var Default = NewRegistry()

func init() {
	if err := Default.Register(Stage); err != nil {
		panic(err)
	}
}

func (r *Registry) Register(f MapFormat) error {
	if f.Name == "" || f.Write == nil {
		return fmt.Errorf("format: register %q: name and writer are required", f.Name)
	}
	f.Extension = strings.TrimPrefix(f.Extension, ".")

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.formats[f.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFormat, f.Name)
	}
	r.formats[f.Name] = f
	return nil
}

func (r *Registry) Lookup(name string) (MapFormat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	if !ok {
		return MapFormat{}, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return f, nil
}

// ForExtension finds the format that writes files with ext (with or without
// the leading dot).
func (r *Registry) ForExtension(ext string) (MapFormat, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if strings.ToLower(f.Extension) == ext {
			return f, nil
		}
	}
	return MapFormat{}, fmt.Errorf("%w: no format for .%s", ErrUnknownFormat, ext)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
