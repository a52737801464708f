package layout

// Geometry constants shared by the engine and the graph-model fallback
// grid. Column width matches the renderer's node card width plus spacing.
const (
	ColWidth          = 340.0
	DefaultNodeHeight = 120.0
	MinGap            = 40.0
	ComponentGap      = 160.0

	// Active isolated nodes: the same grid the merge fallback uses.
	ActiveCols       = 3
	ActiveCellWidth  = 320.0
	ActiveCellHeight = 200.0

	// Finished isolated nodes: denser, they carry no structural meaning.
	FinishedCols       = 4
	FinishedCellWidth  = 260.0
	FinishedCellHeight = 140.0
)

// Node is the engine's view of a graph node. X and Y are the node's
// current position and feed only the tie-break ranking; they are never
// copied into the output. Height 0 means unmeasured and falls back to
// DefaultNodeHeight.
type Node struct {
	ID     string
	X, Y   float64
	Height float64
	Done   bool
}

// Edge is a directed dependency from Source to Target.
type Edge struct {
	Source string
	Target string
}

// Point is an output coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
