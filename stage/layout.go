package stage

const (
	FormatName  = "sonic"
	Description = "Sonic stage binary format"
	Extension   = "stage"
)

// Required layer names.
const (
	ForegroundLayer = "foreground"
	CollisionLayer  = "collision"
	ObjectsLayer    = "objects"
)

// SheetColumns is the tile sheet stride the engine assumes when turning a
// tile identity into a sheet column and row.
const SheetColumns = 32

// Record sizes in bytes.
const (
	HeaderSize    = 4 + 4         // width, height
	CellSize      = 4 + 4 + 1 + 1 // column, row, flip h, flip v
	CountSize     = 4
	ClassNameSize = 64
	PositionSize  = 4 + 4
	UserdataSize  = 1024
	ObjectSize    = ClassNameSize + PositionSize + UserdataSize
)

// Size returns the exact length of an encoded stage.
func Size(width, height, objectCount int) int {
	cells := width * height
	return HeaderSize +
		cells*CellSize + // foreground
		cells*CellSize + // collision
		CountSize +
		objectCount*ObjectSize
}

// Decompose splits a non-negative tile identity into its sheet column and row.
func Decompose(id int) (col, row int) {
	return id % SheetColumns, id / SheetColumns
}
