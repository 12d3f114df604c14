// Package grid provides the cell geometry used by layout migration:
// grid sizes, rectangles, and the occupancy mask that tracks filled cells.
package grid

import "fmt"

// Size is the column/row count of one workspace screen.
type Size struct {
	Width  int
	Height int
}

// String returns the size as "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Cells returns the number of cells in a grid of this size.
func (s Size) Cells() int {
	return s.Width * s.Height
}

// Contains reports whether r lies fully inside a grid of this size.
func (s Size) Contains(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 0 && r.H >= 0 &&
		r.X+r.W <= s.Width && r.Y+r.H <= s.Height
}

// Rect is a cell rectangle: top-left corner plus width and height.
type Rect struct {
	X, Y, W, H int
}

// Intersects reports whether two rectangles share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Occupancy is a boolean mask over a W×H grid.
type Occupancy struct {
	size  Size
	cells [][]bool // cells[x][y]
}

// NewOccupancy returns an empty mask for a grid of the given size.
func NewOccupancy(size Size) *Occupancy {
	cells := make([][]bool, size.Width)
	for x := range cells {
		cells[x] = make([]bool, size.Height)
	}
	return &Occupancy{size: size, cells: cells}
}

// Size returns the grid size the mask covers.
func (o *Occupancy) Size() Size {
	return o.size
}

// MarkCells sets every cell in r to occupied or free.
// r must lie inside the grid; anything else is a caller bug and panics.
func (o *Occupancy) MarkCells(r Rect, occupied bool) {
	for x := r.X; x < r.X+r.W; x++ {
		for y := r.Y; y < r.Y+r.H; y++ {
			o.cells[x][y] = occupied
		}
	}
}

// IsOccupied reports whether the cell at (x, y) is filled.
func (o *Occupancy) IsOccupied(x, y int) bool {
	return o.cells[x][y]
}

// IsRegionVacant reports whether the w×h rectangle at (x, y) lies inside the
// grid and every cell in it is free.
func (o *Occupancy) IsRegionVacant(x, y, w, h int) bool {
	if !o.size.Contains(Rect{X: x, Y: y, W: w, H: h}) {
		return false
	}
	for i := x; i < x+w; i++ {
		for j := y; j < y+h; j++ {
			if o.cells[i][j] {
				return false
			}
		}
	}
	return true
}

// FreeCells counts the unoccupied cells.
func (o *Occupancy) FreeCells() int {
	free := 0
	for x := range o.cells {
		for _, c := range o.cells[x] {
			if !c {
				free++
			}
		}
	}
	return free
}
