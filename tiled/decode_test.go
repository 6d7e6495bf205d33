package tiled

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/milk9111/sonicstage/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMap = `{
  "width": 2, "height": 1, "tilewidth": 16, "tileheight": 16,
  "infinite": false, "orientation": "orthogonal",
  "tilesets": [{"firstgid": 1, "source": "tiles.tsj"}],
  "layers": [
    {"name": "background", "type": "imagelayer", "image": "sky.png"},
    {"name": "foreground", "type": "tilelayer", "width": 2, "height": 1, "data": [2147483682, 0]},
    {"name": "collision", "type": "tilelayer", "width": 2, "height": 1, "data": [0, 0]},
    {"name": "objects", "type": "objectgroup", "objects": [
      {"id": 1, "name": "first", "type": "Ring", "x": 10.4, "y": 5.6},
      {"id": 2, "class": "Sonic", "type": "", "x": 0, "y": 32}
    ]}
  ]
}`

func TestParseSample(t *testing.T) {
	m, err := Parse([]byte(sampleMap))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 1, m.Height())
	assert.Equal(t, 16, m.TileWidth())
	assert.Len(t, m.Layers(), 4)

	l, ok := m.Layer("foreground")
	require.True(t, ok)
	fg, ok := l.(stage.TileLayer)
	require.True(t, ok)

	// gid 34 with the horizontal flag, firstgid 1
	assert.Equal(t, stage.Cell{TileID: 33, FlippedHorizontally: true}, fg.CellAt(0, 0))
	assert.True(t, fg.CellAt(1, 0).Empty())
	assert.True(t, fg.CellAt(5, 5).Empty(), "outside the layer")

	l, ok = m.Layer("objects")
	require.True(t, ok)
	objs, ok := l.(stage.ObjectLayer)
	require.True(t, ok)
	require.Equal(t, 2, objs.ObjectCount())
	assert.Equal(t, "Ring", objs.ObjectAt(0).ClassName(), "falls back to type")
	assert.Equal(t, 10.4, objs.ObjectAt(0).X())
	assert.Equal(t, "Sonic", objs.ObjectAt(1).ClassName())

	l, ok = m.Layer("background")
	require.True(t, ok)
	_, isTiles := l.(stage.TileLayer)
	assert.False(t, isTiles)

	_, ok = m.Layer("missing")
	assert.False(t, ok)
}

func TestParseEncodesScenario(t *testing.T) {
	m, err := Parse([]byte(sampleMap))
	require.NoError(t, err)

	data, err := stage.Encode(m)
	require.NoError(t, err)
	assert.Len(t, data, stage.Size(2, 1, 2))
	assert.Equal(t, []byte{1, 0, 0, 0, 1, 0, 0, 0, 1, 0}, data[8:18])
}

func TestParseBase64(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[0:], 5|FlippedVertically)
	binary.LittleEndian.PutUint32(raw[4:], 101)
	doc := fmt.Sprintf(`{"width":2,"height":1,
	  "tilesets":[{"firstgid":1},{"firstgid":100}],
	  "layers":[{"name":"foreground","type":"tilelayer","encoding":"base64","data":%q}]}`,
		base64.StdEncoding.EncodeToString(raw))

	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	l, _ := m.Layer("foreground")
	fg := l.(*TileLayer)
	assert.Equal(t, stage.Cell{TileID: 4, FlippedVertically: true}, fg.CellAt(0, 0))
	assert.Equal(t, stage.Cell{TileID: 1}, fg.CellAt(1, 0), "second tileset is local to its firstgid")
}

func TestParseCompressed(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[0:], 34|FlippedHorizontally)
	binary.LittleEndian.PutUint32(raw[4:], 0)

	compressors := map[string]func(t *testing.T, p []byte) []byte{
		"zlib": func(t *testing.T, p []byte) []byte {
			var buf bytes.Buffer
			w := zlib.NewWriter(&buf)
			_, err := w.Write(p)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"gzip": func(t *testing.T, p []byte) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, err := w.Write(p)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"zstd": func(t *testing.T, p []byte) []byte {
			enc, err := zstd.NewWriter(nil)
			require.NoError(t, err)
			defer enc.Close()
			return enc.EncodeAll(p, nil)
		},
	}
	for method, compress := range compressors {
		t.Run(method, func(t *testing.T) {
			doc := fmt.Sprintf(`{"width":2,"height":1,"tilesets":[{"firstgid":1}],
			  "layers":[{"name":"foreground","type":"tilelayer","encoding":"base64","compression":%q,"data":%q}]}`,
				method, base64.StdEncoding.EncodeToString(compress(t, raw)))

			m, err := Parse([]byte(doc))
			require.NoError(t, err)
			l, _ := m.Layer("foreground")
			fg := l.(*TileLayer)
			assert.Equal(t, stage.Cell{TileID: 33, FlippedHorizontally: true}, fg.CellAt(0, 0))
			assert.True(t, fg.CellAt(1, 0).Empty())
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"infinite", `{"width":2,"height":2,"infinite":true}`, ErrUnsupported},
		{"no_size", `{"width":0,"height":2}`, ErrInvalidMap},
		{"short_data", `{"width":2,"height":2,"layers":[{"name":"a","type":"tilelayer","data":[1,2,3]}]}`, ErrInvalidMap},
		{"layer_size", `{"width":2,"height":1,"layers":[{"name":"a","type":"tilelayer","width":1,"height":2,"data":[1,2]}]}`, ErrInvalidMap},
		{"unknown_compression", `{"width":1,"height":1,"layers":[{"name":"a","type":"tilelayer","encoding":"base64","compression":"lz4","data":"AAAA"}]}`, ErrUnsupported},
		{"corrupt_zlib", `{"width":1,"height":1,"layers":[{"name":"a","type":"tilelayer","encoding":"base64","compression":"zlib","data":"AAAA"}]}`, ErrInvalidMap},
		{"corrupt_zstd", `{"width":1,"height":1,"layers":[{"name":"a","type":"tilelayer","encoding":"base64","compression":"zstd","data":"AAAA"}]}`, ErrInvalidMap},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc))
			require.ErrorIs(t, err, c.want)
		})
	}

	_, err := Decode(strings.NewReader("{"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage1.tmj")
	require.NoError(t, os.WriteFile(path, []byte(sampleMap), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())

	_, err = Load(filepath.Join(t.TempDir(), "missing.tmj"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuilder(t *testing.T) {
	m := New(3, 2, 16, 16)
	fg := m.AddTileLayer("foreground")
	fg.SetCell(2, 1, stage.Cell{TileID: 64})
	fg.SetCell(9, 9, stage.Cell{TileID: 1})
	g := m.AddObjectGroup("objects")
	g.Add("Ring", 1, 2)

	assert.Equal(t, stage.Cell{TileID: 64}, fg.CellAt(2, 1))
	assert.True(t, fg.CellAt(0, 0).Empty())
	assert.Equal(t, 1, g.ObjectCount())
}
