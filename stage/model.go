package stage

// Map is the view of an editor map the encoder needs.
type Map interface {
	Width() int
	Height() int
	// Layer looks up a top-level layer by name.
	Layer(name string) (Layer, bool)
}

type Layer interface {
	Name() string
}

type TileLayer interface {
	Layer
	CellAt(x, y int) Cell
}

type ObjectLayer interface {
	Layer
	ObjectCount() int
	ObjectAt(i int) Object
}

type Object interface {
	ClassName() string
	X() float64
	Y() float64
}

// EmptyTile is the tile identity of a cell without a tile.
const EmptyTile = -1

type Cell struct {
	TileID              int
	FlippedHorizontally bool
	FlippedVertically   bool
}

func (c Cell) Empty() bool {
	return c.TileID == EmptyTile
}
