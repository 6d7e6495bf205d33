package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
output_dir: build/stages
lint:
  enabled: false
preview:
  enabled: true
  sheet: assets/tiles.png
  scale: 3
  collision: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build/stages", cfg.OutputDir)
	assert.Equal(t, "sonic", cfg.Format, "default kept")
	assert.False(t, cfg.Lint.Enabled)
	assert.Equal(t, PreviewSpec{Enabled: true, Sheet: "assets/tiles.png", Scale: 3, Collision: true}, cfg.Preview)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad_yaml", "output_dir: [\n"},
		{"empty_format", "format: ''\n"},
		{"scale", "preview:\n  scale: 0\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDefaultFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("levels", "zone1.stage"), cfg.OutputPath(filepath.Join("levels", "zone1.tmj"), "stage"))

	cfg.OutputDir = "out"
	assert.Equal(t, filepath.Join("out", "zone1.stage"), cfg.OutputPath(filepath.Join("levels", "zone1.tmj"), ".stage"))
}
