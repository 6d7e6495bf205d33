// Package lint runs tengo scripts that check a map before it is exported.
package lint

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/sonicstage/stage"
)

//go:embed default.tengo
var defaultScript []byte

// Default returns the built-in rules.
func Default() []byte {
	return defaultScript
}

// Error lists the findings of a failed check.
type Error struct {
	Findings []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lint: %d finding(s): %s", len(e.Findings), strings.Join(e.Findings, "; "))
}

// Check runs script and returns an *Error when it reports findings.
func Check(ctx context.Context, m stage.Map, script []byte) error {
	findings, err := Run(ctx, m, script)
	if err != nil {
		return err
	}
	if len(findings) > 0 {
		return &Error{Findings: findings}
	}
	return nil
}

// Run executes script against m and returns the messages it appended to
// findings. Compile and runtime failures are returned as errors.
func Run(ctx context.Context, m stage.Map, script []byte) ([]string, error) {
	s := tengo.NewScript(script)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	tileWidth, tileHeight := 0, 0
	if tm, ok := m.(interface {
		TileWidth() int
		TileHeight() int
	}); ok {
		tileWidth, tileHeight = tm.TileWidth(), tm.TileHeight()
	}

	globals := map[string]any{
		"width":       m.Width(),
		"height":      m.Height(),
		"tile_width":  tileWidth,
		"tile_height": tileHeight,
		"layers":      layerNames(m),
		"objects":     objects(m),
		"findings":    []any{},
	}
	for name, v := range globals {
		if err := s.Add(name, v); err != nil {
			return nil, fmt.Errorf("lint: set %s: %w", name, err)
		}
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("lint: compile: %w", err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("lint: run: %w", err)
	}

	var findings []string
	for _, f := range compiled.Get("findings").Array() {
		findings = append(findings, fmt.Sprint(f))
	}
	return findings, nil
}

func layerNames(m stage.Map) []any {
	lm, ok := m.(interface{ Layers() []stage.Layer })
	if !ok {
		return []any{}
	}
	names := make([]any, 0, len(lm.Layers()))
	for _, l := range lm.Layers() {
		names = append(names, l.Name())
	}
	return names
}

func objects(m stage.Map) []any {
	l, ok := m.Layer(stage.ObjectsLayer)
	if !ok {
		return []any{}
	}
	ol, ok := l.(stage.ObjectLayer)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, ol.ObjectCount())
	for i := 0; i < ol.ObjectCount(); i++ {
		o := ol.ObjectAt(i)
		out = append(out, map[string]any{
			"class": o.ClassName(),
			"x":     o.X(),
			"y":     o.Y(),
		})
	}
	return out
}
