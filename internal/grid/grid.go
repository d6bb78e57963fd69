// Package grid provides the dense cell grid shared by the ground-truth cave
// and every drone's internal map. Cells are addressed either by (x, y)
// coordinates or by the packed row-major index y*W + x, which is the
// canonical integer key used by the frontier index and the path planner.
package grid

import "fmt"

// CellState is the classification of a single grid cell.
type CellState uint8

const (
	// Unknown is a cell the observer has no information about.
	Unknown CellState = iota
	// Free is a traversable cell.
	Free
	// Occupied is a wall cell.
	Occupied
	// Frontier is a known-free cell bordering at least one Unknown
	// 4-neighbour in the observer's view. Ground truth never holds
	// Frontier; only internal maps do.
	Frontier
)

func (s CellState) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Free:
		return "free"
	case Occupied:
		return "occupied"
	case Frontier:
		return "frontier"
	default:
		return fmt.Sprintf("cellstate(%d)", uint8(s))
	}
}

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Grid is a fixed-size W×H dense array of cell states, row-major.
type Grid struct {
	w, h  int
	cells []CellState
}

// New returns a Grid of the given dimensions with every cell Unknown.
func New(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	return &Grid{w: w, h: h, cells: make([]CellState, w*h)}, nil
}

// MustNew is New for statically-known dimensions; it panics on invalid input.
func MustNew(w, h int) *Grid {
	g, err := New(w, h)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.w && y >= 0 && y < g.h
}

// At returns the state of the cell at (x, y). (x, y) must be in bounds.
func (g *Grid) At(x, y int) CellState {
	return g.cells[y*g.w+x]
}

// Set stores s at (x, y). (x, y) must be in bounds.
func (g *Grid) Set(x, y int, s CellState) {
	g.cells[y*g.w+x] = s
}

// AtIndex returns the state of the cell with packed index i.
func (g *Grid) AtIndex(i int) CellState { return g.cells[i] }

// Pack maps (x, y) to the canonical packed index y*W + x.
func (g *Grid) Pack(x, y int) int { return y*g.w + x }

// PackCell is Pack for a Cell value.
func (g *Grid) PackCell(c Cell) int { return c.Y*g.w + c.X }

// Unpack maps a packed index back to (x, y) with x = i mod W, y = i div W.
func (g *Grid) Unpack(i int) (x, y int) { return i % g.w, i / g.w }

// UnpackCell is Unpack returning a Cell value.
func (g *Grid) UnpackCell(i int) Cell { return Cell{X: i % g.w, Y: i / g.w} }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]CellState, len(g.cells))
	copy(cells, g.cells)
	return &Grid{w: g.w, h: g.h, cells: cells}
}

// Fill sets every cell to s.
func (g *Grid) Fill(s CellState) {
	for i := range g.cells {
		g.cells[i] = s
	}
}

// Count returns the number of cells currently in state s.
func (g *Grid) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Neighbours4 appends the in-bounds 4-neighbours of (x, y) to dst and
// returns the extended slice. Pass a reusable backing array to avoid
// allocation on hot paths.
func (g *Grid) Neighbours4(x, y int, dst []Cell) []Cell {
	if x-1 >= 0 {
		dst = append(dst, Cell{X: x - 1, Y: y})
	}
	if x+1 < g.w {
		dst = append(dst, Cell{X: x + 1, Y: y})
	}
	if y-1 >= 0 {
		dst = append(dst, Cell{X: x, Y: y - 1})
	}
	if y+1 < g.h {
		dst = append(dst, Cell{X: x, Y: y + 1})
	}
	return dst
}

// HasUnknownNeighbour4 reports whether any in-bounds 4-neighbour of (x, y)
// is Unknown.
func (g *Grid) HasUnknownNeighbour4(x, y int) bool {
	if x-1 >= 0 && g.At(x-1, y) == Unknown {
		return true
	}
	if x+1 < g.w && g.At(x+1, y) == Unknown {
		return true
	}
	if y-1 >= 0 && g.At(x, y-1) == Unknown {
		return true
	}
	if y+1 < g.h && g.At(x, y+1) == Unknown {
		return true
	}
	return false
}
