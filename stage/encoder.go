package stage

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/milk9111/sonicstage/binwriter"
	"github.com/milk9111/sonicstage/common"
)

var (
	ErrMissingLayer        = errors.New("stage: missing required layer")
	ErrInvalidTileIdentity = errors.New("stage: invalid tile identity")
	ErrInvalidDimensions   = errors.New("stage: invalid map dimensions")
	ErrInvalidObject       = errors.New("stage: invalid object")
	ErrSizeMismatch        = errors.New("stage: encoded size does not match layout")
)

// maxTileID keeps the decomposed sheet row inside an i32.
const maxTileID = math.MaxInt32

// Layers holds the resolved required layers of a map.
type Layers struct {
	Foreground TileLayer
	Collision  TileLayer
	Objects    ObjectLayer
}

// Sink receives an encoded stage. Commit is called once after the whole
// buffer has been written.
type Sink interface {
	io.Writer
	Commit() error
}

// Validate checks every precondition of Encode without allocating the output.
func Validate(m Map) (*Layers, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", ErrInvalidDimensions)
	}

	width, height := m.Width(), m.Height()
	if width <= 0 || height <= 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > math.MaxInt/height/(2*CellSize) {
		return nil, fmt.Errorf("%w: %dx%d is too large", ErrInvalidDimensions, width, height)
	}

	foreground, err := tileLayer(m, ForegroundLayer)
	if err != nil {
		return nil, err
	}
	collision, err := tileLayer(m, CollisionLayer)
	if err != nil {
		return nil, err
	}
	objects, err := objectLayer(m, ObjectsLayer)
	if err != nil {
		return nil, err
	}

	for _, tl := range []TileLayer{foreground, collision} {
		if err := validateTiles(tl, width, height); err != nil {
			return nil, err
		}
	}

	count := objects.ObjectCount()
	tiles := Size(width, height, 0)
	if count < 0 || uint64(count) > math.MaxUint32 || count > (math.MaxInt-tiles)/ObjectSize {
		return nil, fmt.Errorf("%w: object count %d", ErrInvalidObject, count)
	}
	for i := 0; i < count; i++ {
		if err := validateObject(objects.ObjectAt(i)); err != nil {
			return nil, fmt.Errorf("%w: object %d: %w", ErrInvalidObject, i, err)
		}
	}

	return &Layers{
		Foreground: foreground,
		Collision:  collision,
		Objects:    objects,
	}, nil
}

func tileLayer(m Map, name string) (TileLayer, error) {
	l, ok := m.Layer(name)
	if !ok || l == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingLayer, name)
	}
	tl, ok := l.(TileLayer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a tile layer", ErrMissingLayer, name)
	}
	return tl, nil
}

func objectLayer(m Map, name string) (ObjectLayer, error) {
	l, ok := m.Layer(name)
	if !ok || l == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingLayer, name)
	}
	ol, ok := l.(ObjectLayer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object layer", ErrMissingLayer, name)
	}
	return ol, nil
}

func validateTiles(tl TileLayer, width, height int) error {
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			id := tl.CellAt(x, y).TileID
			if id < EmptyTile || id > maxTileID {
				return fmt.Errorf("%w: layer %q cell (%d,%d) has id %d", ErrInvalidTileIdentity, tl.Name(), x, y, id)
			}
		}
	}
	return nil
}

func validateObject(o Object) error {
	if o == nil {
		return errors.New("missing")
	}
	if err := binwriter.CheckFixedString(o.ClassName(), ClassNameSize); err != nil {
		return err
	}
	for _, v := range []float64{o.X(), o.Y()} {
		if math.IsNaN(v) || !common.FitsInt32(common.RoundHalfUp(v)) {
			return fmt.Errorf("position (%g,%g) out of range", o.X(), o.Y())
		}
	}
	return nil
}

// Encode returns the stage file for m. The buffer is allocated once, with
// the exact size of the layout, after every precondition has been checked.
func Encode(m Map) ([]byte, error) {
	layers, err := Validate(m)
	if err != nil {
		return nil, err
	}

	width, height := m.Width(), m.Height()
	count := layers.Objects.ObjectCount()

	buf := make([]byte, Size(width, height, count))
	w := binwriter.New(buf)

	w.U32(uint32(width))
	if err := w.U32(uint32(height)); err != nil {
		return nil, fmt.Errorf("stage: header: %w", err)
	}
	if err := writeTiles(w, layers.Foreground, width, height); err != nil {
		return nil, err
	}
	if err := writeTiles(w, layers.Collision, width, height); err != nil {
		return nil, err
	}
	if err := w.U32(uint32(count)); err != nil {
		return nil, fmt.Errorf("stage: object count: %w", err)
	}
	for i := 0; i < count; i++ {
		if err := writeObject(w, layers.Objects.ObjectAt(i)); err != nil {
			return nil, fmt.Errorf("stage: object %d: %w", i, err)
		}
	}

	if w.Offset() != len(buf) {
		return nil, fmt.Errorf("%w: wrote %d of %d bytes", ErrSizeMismatch, w.Offset(), len(buf))
	}
	return buf, nil
}

// writeTiles writes a tile layer column by column.
func writeTiles(w *binwriter.Writer, tl TileLayer, width, height int) error {
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if err := writeCell(w, tl.CellAt(x, y)); err != nil {
				return fmt.Errorf("stage: layer %q cell (%d,%d): %w", tl.Name(), x, y, err)
			}
		}
	}
	return nil
}

// Writer errors are sticky, so the last write reports any earlier failure.
func writeCell(w *binwriter.Writer, c Cell) error {
	col, row := int32(-1), int32(-1)
	flipH, flipV := false, false
	if !c.Empty() {
		x, y := Decompose(c.TileID)
		col, row = int32(x), int32(y)
		flipH, flipV = c.FlippedHorizontally, c.FlippedVertically
	}
	w.I32(col)
	w.I32(row)
	w.Bool(flipH)
	return w.Bool(flipV)
}

func writeObject(w *binwriter.Writer, o Object) error {
	w.FixedString(o.ClassName(), ClassNameSize)
	w.I32(int32(common.RoundHalfUp(o.X())))
	w.I32(int32(common.RoundHalfUp(o.Y())))

	// Reserved for per-class userdata, left zeroed.
	_, err := w.Slice(UserdataSize)
	return err
}

// Export encodes m and hands the result to sink. Nothing reaches the sink
// unless the whole stage encoded successfully.
func Export(m Map, sink Sink) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if _, err := sink.Write(data); err != nil {
		return fmt.Errorf("stage: write: %w", err)
	}
	if err := sink.Commit(); err != nil {
		return fmt.Errorf("stage: commit: %w", err)
	}
	return nil
}
