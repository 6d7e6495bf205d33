// Package render draws a preview of a stage map: the foreground tiles cut
// from a 32-column sheet, an optional collision overlay and object markers.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/milk9111/sonicstage/common"
	"github.com/milk9111/sonicstage/stage"
)

// DefaultTileSize is the engine's tile size in pixels.
const DefaultTileSize = 16

const maxScale = 16

type Options struct {
	// TileWidth and TileHeight default to the map's tile size, then to
	// DefaultTileSize.
	TileWidth  int
	TileHeight int
	// Sheet is cut into tiles SheetColumns wide. Without a sheet, tiles are
	// drawn as flat placeholder colours.
	Sheet     image.Image
	Scale     int
	Collision bool
	Objects   bool
}

var (
	background     = colornames.Skyblue
	collisionColor = color.NRGBA{R: 0xff, A: 0x60}
	objectColor    = colornames.Gold
)

var placeholder = []color.RGBA{
	colornames.Forestgreen,
	colornames.Saddlebrown,
	colornames.Peru,
	colornames.Olivedrab,
	colornames.Steelblue,
	colornames.Slategray,
	colornames.Darkkhaki,
	colornames.Sienna,
}

// Stage renders the foreground layer of m.
func Stage(m stage.Map, opts Options) (*image.RGBA, error) {
	fg, err := tileLayer(m, stage.ForegroundLayer)
	if err != nil {
		return nil, err
	}

	tw, th := tileSize(m, opts)
	width, height := m.Width(), m.Height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", stage.ErrInvalidDimensions, width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width*tw, height*th))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := fg.CellAt(x, y)
			if c.TileID < stage.EmptyTile {
				return nil, fmt.Errorf("%w: layer %q cell (%d,%d) has id %d", stage.ErrInvalidTileIdentity, fg.Name(), x, y, c.TileID)
			}
			if c.Empty() {
				continue
			}
			drawTile(dst, opts.Sheet, c, image.Pt(x*tw, y*th), tw, th)
		}
	}

	if opts.Collision {
		col, err := tileLayer(m, stage.CollisionLayer)
		if err != nil {
			return nil, err
		}
		overlay := image.NewUniform(collisionColor)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				if col.CellAt(x, y).Empty() {
					continue
				}
				r := image.Rect(x*tw, y*th, (x+1)*tw, (y+1)*th)
				draw.Draw(dst, r, overlay, image.Point{}, draw.Over)
			}
		}
	}

	if opts.Objects {
		drawObjects(dst, m)
	}

	scale := common.Clamp(opts.Scale, 1, maxScale)
	if scale == 1 {
		return dst, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dst.Bounds().Dx()*scale, dst.Bounds().Dy()*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), dst, dst.Bounds(), draw.Src, nil)
	return scaled, nil
}

func tileLayer(m stage.Map, name string) (stage.TileLayer, error) {
	l, ok := m.Layer(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", stage.ErrMissingLayer, name)
	}
	tl, ok := l.(stage.TileLayer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a tile layer", stage.ErrMissingLayer, name)
	}
	return tl, nil
}

func tileSize(m stage.Map, opts Options) (int, int) {
	tw, th := opts.TileWidth, opts.TileHeight
	if sized, ok := m.(interface {
		TileWidth() int
		TileHeight() int
	}); ok {
		if tw <= 0 {
			tw = sized.TileWidth()
		}
		if th <= 0 {
			th = sized.TileHeight()
		}
	}
	if tw <= 0 {
		tw = DefaultTileSize
	}
	if th <= 0 {
		th = DefaultTileSize
	}
	return tw, th
}

func drawTile(dst *image.RGBA, sheet image.Image, c stage.Cell, at image.Point, tw, th int) {
	col, row := stage.Decompose(c.TileID)
	if sheet != nil {
		b := sheet.Bounds()
		sr := image.Rect(col*tw, row*th, (col+1)*tw, (row+1)*th).Add(b.Min)
		if sr.In(b) {
			draw.NearestNeighbor.Transform(dst, tileTransform(sr, at, c), sheet, sr, draw.Over, nil)
			return
		}
	}
	fill := image.NewUniform(placeholder[c.TileID%len(placeholder)])
	draw.Draw(dst, image.Rect(at.X, at.Y, at.X+tw, at.Y+th), fill, image.Point{}, draw.Src)
}

// tileTransform maps the sheet rectangle sr onto the tile at dst position at,
// mirroring it on the flipped axes.
func tileTransform(sr image.Rectangle, at image.Point, c stage.Cell) f64.Aff3 {
	sx, sy := float64(sr.Min.X), float64(sr.Min.Y)
	dx, dy := float64(at.X), float64(at.Y)
	w, h := float64(sr.Dx()), float64(sr.Dy())

	m := f64.Aff3{
		1, 0, dx - sx,
		0, 1, dy - sy,
	}
	if c.FlippedHorizontally {
		m[0], m[2] = -1, dx+sx+w
	}
	if c.FlippedVertically {
		m[4], m[5] = -1, dy+sy+h
	}
	return m
}

func drawObjects(dst *image.RGBA, m stage.Map) {
	l, ok := m.Layer(stage.ObjectsLayer)
	if !ok {
		return
	}
	ol, ok := l.(stage.ObjectLayer)
	if !ok {
		return
	}
	marker := image.NewUniform(objectColor)
	for i := 0; i < ol.ObjectCount(); i++ {
		o := ol.ObjectAt(i)
		x := int(common.RoundHalfUp(o.X()))
		y := int(common.RoundHalfUp(o.Y()))
		r := image.Rect(x-2, y-2, x+2, y+2).Intersect(dst.Bounds())
		draw.Draw(dst, r, marker, image.Point{}, draw.Src)
	}
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// LoadSheet decodes a PNG tile sheet.
func LoadSheet(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: decode sheet %s: %w", path, err)
	}
	return img, nil
}
