package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/sonicstage/stage"
	"github.com/milk9111/sonicstage/tiled"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

// testSheet is a 32x2 sheet of 2x2 tiles. Tile 33 is red on the left column
// and blue on the right.
func testSheet() *image.RGBA {
	sheet := image.NewRGBA(image.Rect(0, 0, stage.SheetColumns*2, 4))
	for y := 2; y < 4; y++ {
		sheet.Set(2, y, red)
		sheet.Set(3, y, blue)
	}
	return sheet
}

func testMap() *tiled.Map {
	m := tiled.New(2, 1, 2, 2)
	fg := m.AddTileLayer(stage.ForegroundLayer)
	fg.SetCell(0, 0, stage.Cell{TileID: 33, FlippedHorizontally: true})
	fg.SetCell(1, 0, stage.Cell{TileID: 33})
	col := m.AddTileLayer(stage.CollisionLayer)
	col.SetCell(1, 0, stage.Cell{TileID: 0})
	m.AddObjectGroup(stage.ObjectsLayer)
	return m
}

func TestStageWithSheet(t *testing.T) {
	img, err := Stage(testMap(), Options{Sheet: testSheet()})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	for y := 0; y < 2; y++ {
		assert.Equal(t, blue, img.RGBAAt(0, y), "flipped tile starts with its right column")
		assert.Equal(t, red, img.RGBAAt(1, y))
		assert.Equal(t, red, img.RGBAAt(2, y))
		assert.Equal(t, blue, img.RGBAAt(3, y))
	}
}

func TestStageVerticalFlip(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, stage.SheetColumns*2, 2))
	sheet.Set(0, 0, red)
	sheet.Set(1, 0, red)
	sheet.Set(0, 1, blue)
	sheet.Set(1, 1, blue)

	m := tiled.New(1, 1, 2, 2)
	m.AddTileLayer(stage.ForegroundLayer).SetCell(0, 0, stage.Cell{TileID: 0, FlippedVertically: true})

	img, err := Stage(m, Options{Sheet: sheet})
	require.NoError(t, err)
	assert.Equal(t, blue, img.RGBAAt(0, 0))
	assert.Equal(t, red, img.RGBAAt(1, 1))
}

func TestStagePlaceholderAndOverlay(t *testing.T) {
	img, err := Stage(testMap(), Options{Scale: 2, Collision: true})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	tile := placeholder[33%len(placeholder)]
	assert.Equal(t, tile, img.RGBAAt(0, 0))
	assert.NotEqual(t, tile, img.RGBAAt(4, 0), "collision overlay tints the second tile")
	assert.Greater(t, img.RGBAAt(4, 0).R, tile.R)
}

func TestStageEmptyCellsShowBackground(t *testing.T) {
	m := tiled.New(2, 2, 4, 4)
	m.AddTileLayer(stage.ForegroundLayer)
	img, err := Stage(m, Options{})
	require.NoError(t, err)
	assert.Equal(t, background, img.RGBAAt(5, 5))
}

func TestStageObjects(t *testing.T) {
	m := tiled.New(4, 4, 4, 4)
	m.AddTileLayer(stage.ForegroundLayer)
	m.AddObjectGroup(stage.ObjectsLayer).Add("Ring", 8.4, 8.6)
	img, err := Stage(m, Options{Objects: true})
	require.NoError(t, err)
	assert.Equal(t, objectColor, img.RGBAAt(8, 8))
	assert.Equal(t, background, img.RGBAAt(1, 1))
}

func TestStageMissingLayer(t *testing.T) {
	m := tiled.New(2, 2, 4, 4)
	_, err := Stage(m, Options{})
	require.ErrorIs(t, err, stage.ErrMissingLayer)

	m.AddTileLayer(stage.ForegroundLayer)
	_, err = Stage(m, Options{Collision: true})
	require.ErrorIs(t, err, stage.ErrMissingLayer)
}

func TestStageNegativeTileID(t *testing.T) {
	m := tiled.New(1, 1, 2, 2)
	m.AddTileLayer(stage.ForegroundLayer).SetCell(0, 0, stage.Cell{TileID: -2})
	m.AddTileLayer(stage.CollisionLayer)

	_, err := Stage(m, Options{})
	require.ErrorIs(t, err, stage.ErrInvalidTileIdentity)
}

func TestPNG(t *testing.T) {
	img, err := Stage(testMap(), Options{Sheet: testSheet()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	path := filepath.Join(t.TempDir(), "sheet.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WritePNG(f, testSheet()))
	require.NoError(t, f.Close())

	sheet, err := LoadSheet(path)
	require.NoError(t, err)
	assert.Equal(t, testSheet().Bounds(), sheet.Bounds())
}
