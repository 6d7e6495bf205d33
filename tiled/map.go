// Package tiled adapts maps saved by the Tiled editor in its JSON format
// (.tmj) to the stage encoder's map view.
package tiled

import (
	"github.com/milk9111/sonicstage/stage"
)

type Map struct {
	width      int
	height     int
	tileWidth  int
	tileHeight int
	layers     []stage.Layer
}

// New returns an empty finite map. Layers are added with AddTileLayer and
// AddObjectGroup.
func New(width, height, tileWidth, tileHeight int) *Map {
	return &Map{
		width:      width,
		height:     height,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
	}
}

func (m *Map) Width() int      { return m.width }
func (m *Map) Height() int     { return m.height }
func (m *Map) TileWidth() int  { return m.tileWidth }
func (m *Map) TileHeight() int { return m.tileHeight }

// Layer returns the first top-level layer with the given name.
func (m *Map) Layer(name string) (stage.Layer, bool) {
	for _, l := range m.layers {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

func (m *Map) Layers() []stage.Layer {
	return m.layers
}

func (m *Map) AddTileLayer(name string) *TileLayer {
	l := &TileLayer{
		name:   name,
		width:  m.width,
		height: m.height,
		cells:  make([]stage.Cell, m.width*m.height),
	}
	for i := range l.cells {
		l.cells[i].TileID = stage.EmptyTile
	}
	m.layers = append(m.layers, l)
	return l
}

func (m *Map) AddObjectGroup(name string) *ObjectGroup {
	g := &ObjectGroup{name: name}
	m.layers = append(m.layers, g)
	return g
}

// TileLayer stores cells row-major, the way Tiled saves them.
type TileLayer struct {
	name   string
	width  int
	height int
	cells  []stage.Cell
}

func (l *TileLayer) Name() string { return l.name }

// CellAt returns an empty cell for coordinates outside the layer.
func (l *TileLayer) CellAt(x, y int) stage.Cell {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return stage.Cell{TileID: stage.EmptyTile}
	}
	return l.cells[y*l.width+x]
}

func (l *TileLayer) SetCell(x, y int, c stage.Cell) {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return
	}
	l.cells[y*l.width+x] = c
}

type ObjectGroup struct {
	name    string
	objects []*Object
}

func (g *ObjectGroup) Name() string     { return g.name }
func (g *ObjectGroup) ObjectCount() int { return len(g.objects) }

func (g *ObjectGroup) ObjectAt(i int) stage.Object {
	return g.objects[i]
}

func (g *ObjectGroup) Add(class string, x, y float64) *Object {
	o := &Object{Class: class, PosX: x, PosY: y}
	g.objects = append(g.objects, o)
	return o
}

type Object struct {
	ID    int
	Name  string
	Class string
	PosX  float64
	PosY  float64
}

func (o *Object) ClassName() string { return o.Class }
func (o *Object) X() float64        { return o.PosX }
func (o *Object) Y() float64        { return o.PosY }

// otherLayer is any layer kind the encoder has no use for (image layers,
// groups).
type otherLayer struct {
	name string
	kind string
}

func (l *otherLayer) Name() string { return l.name }
func (l *otherLayer) Kind() string { return l.kind }
