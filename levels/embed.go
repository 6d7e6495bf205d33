package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/milk9111/sonicstage/tiled"
)

//go:embed *.tmj
var LevelsFS embed.FS

const ext = ".tmj"

// LoadLevelFromFS loads an embedded map by name. The extension is optional.
func LoadLevelFromFS(name string) (*tiled.Map, error) {
	if path.Ext(name) == "" {
		name += ext
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	m, err := tiled.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", name, err)
	}
	return m, nil
}

// List returns the names of the embedded maps without extension.
func List() ([]string, error) {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}
