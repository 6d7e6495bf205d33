package tiled

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/milk9111/sonicstage/stage"
)

var (
	ErrUnsupported = errors.New("tiled: unsupported map feature")
	ErrInvalidMap  = errors.New("tiled: invalid map")
)

// Global tile id flags, stored in the top bits of each gid.
const (
	FlippedHorizontally uint32 = 0x80000000
	FlippedVertically   uint32 = 0x40000000
	FlippedDiagonally   uint32 = 0x20000000
	RotatedHexagonal120 uint32 = 0x10000000

	flagMask = FlippedHorizontally | FlippedVertically | FlippedDiagonally | RotatedHexagonal120
)

const (
	kindTileLayer   = "tilelayer"
	kindObjectGroup = "objectgroup"
)

type mapJSON struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	TileWidth  int           `json:"tilewidth"`
	TileHeight int           `json:"tileheight"`
	Infinite   bool          `json:"infinite"`
	Layers     []layerJSON   `json:"layers"`
	Tilesets   []tilesetJSON `json:"tilesets"`
}

type layerJSON struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Data        json.RawMessage `json:"data,omitempty"`
	Encoding    string          `json:"encoding,omitempty"`
	Compression string          `json:"compression,omitempty"`
	Objects     []objectJSON    `json:"objects,omitempty"`
}

type objectJSON struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Class string  `json:"class"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type tilesetJSON struct {
	FirstGID uint32 `json:"firstgid"`
	Source   string `json:"source,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Load reads a Tiled JSON map from path.
func Load(path string) (*Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tiled: read %s: %w", path, err)
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func Decode(r io.Reader) (*Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tiled: read: %w", err)
	}
	return Parse(b)
}

func Parse(data []byte) (*Map, error) {
	var doc mapJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tiled: unmarshal map: %w", err)
	}
	if doc.Infinite {
		return nil, fmt.Errorf("%w: infinite maps", ErrUnsupported)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, doc.Width, doc.Height)
	}

	sets := newTilesets(doc.Tilesets)
	m := New(doc.Width, doc.Height, doc.TileWidth, doc.TileHeight)
	for _, lj := range doc.Layers {
		switch lj.Type {
		case kindTileLayer:
			if err := m.addTileLayerJSON(lj, sets); err != nil {
				return nil, err
			}
		case kindObjectGroup:
			g := m.AddObjectGroup(lj.Name)
			for _, oj := range lj.Objects {
				class := oj.Class
				if class == "" {
					class = oj.Type
				}
				o := g.Add(class, oj.X, oj.Y)
				o.ID = oj.ID
				o.Name = oj.Name
			}
		default:
			m.layers = append(m.layers, &otherLayer{name: lj.Name, kind: lj.Type})
		}
	}
	return m, nil
}

func (m *Map) addTileLayerJSON(lj layerJSON, sets tilesets) error {
	gids, err := layerData(lj)
	if err != nil {
		return fmt.Errorf("tiled: layer %q: %w", lj.Name, err)
	}

	if (lj.Width != 0 || lj.Height != 0) && (lj.Width != m.width || lj.Height != m.height) {
		return fmt.Errorf("%w: layer %q is %dx%d in a %dx%d map", ErrInvalidMap, lj.Name, lj.Width, lj.Height, m.width, m.height)
	}
	if len(gids) != m.width*m.height {
		return fmt.Errorf("%w: layer %q has %d tiles, want %d", ErrInvalidMap, lj.Name, len(gids), m.width*m.height)
	}

	l := m.AddTileLayer(lj.Name)
	for i, gid := range gids {
		l.cells[i] = sets.cell(gid)
	}
	return nil
}

func layerData(lj layerJSON) ([]uint32, error) {
	if len(lj.Data) == 0 {
		return nil, nil
	}
	switch lj.Encoding {
	case "", "csv":
		var gids []uint32
		if err := json.Unmarshal(lj.Data, &gids); err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrInvalidMap, err)
		}
		return gids, nil
	case "base64":
		var s string
		if err := json.Unmarshal(lj.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrInvalidMap, err)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: base64 data: %v", ErrInvalidMap, err)
		}
		raw, err = decompress(lj.Compression, raw)
		if err != nil {
			return nil, err
		}
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("%w: base64 data is %d bytes", ErrInvalidMap, len(raw))
		}
		gids := make([]uint32, len(raw)/4)
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, gids); err != nil {
			return nil, err
		}
		return gids, nil
	default:
		return nil, fmt.Errorf("%w: %s encoding", ErrUnsupported, lj.Encoding)
	}
}

// decompress undoes the layer compression Tiled can save with.
func decompress(method string, raw []byte) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch method {
	case "":
		return raw, nil
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(raw))
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(raw))
	case "zstd":
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd data: %v", ErrInvalidMap, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s compression", ErrUnsupported, method)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrInvalidMap, method, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrInvalidMap, method, err)
	}
	return out, nil
}

// tilesets is sorted by first gid.
type tilesets []tilesetJSON

func newTilesets(ts []tilesetJSON) tilesets {
	sets := append(tilesets(nil), ts...)
	sort.Slice(sets, func(i, j int) bool { return sets[i].FirstGID < sets[j].FirstGID })
	return sets
}

// cell resolves a gid to the tile id local to its tileset.
func (ts tilesets) cell(gid uint32) stage.Cell {
	id := gid &^ flagMask
	if id == 0 {
		return stage.Cell{TileID: stage.EmptyTile}
	}

	first := uint32(1)
	if i := sort.Search(len(ts), func(i int) bool { return ts[i].FirstGID > id }); i > 0 {
		first = ts[i-1].FirstGID
	}
	return stage.Cell{
		TileID:              int(id - first),
		FlippedHorizontally: gid&FlippedHorizontally != 0,
		FlippedVertically:   gid&FlippedVertically != 0,
	}
}
