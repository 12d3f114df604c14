package migrate

import (
	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/placement"
)

// noLine marks "no column" or "no row" removed.
const noLine = -1

// screenResult is the chosen outcome of one single-unit step on one screen.
type screenResult struct {
	Items   []layout.Item // items on the screen after the step
	Evicted []layout.Item // items that found no place on the screen
	Cost    placement.Cost
	Column  int // removed column, or noLine
	Row     int // removed row, or noLine

	occ *grid.Occupancy // target mask with Items and the reserved band marked
}

// migrateScreen shrinks one screen from src to dst, which differ by at most
// one unit per dimension. Every removable column and row pair is tried; the
// first pair with the lowest (loss, move) cost wins. Rows are tried bottom-up
// so the bottom row goes first when results tie.
func migrateScreen(items []layout.Item, src, dst grid.Size, startY int) screenResult {
	columns := []int{noLine}
	if dst.Width < src.Width {
		columns = lineRange(0, src.Width-1, 1)
	}
	rows := []int{noLine}
	if dst.Height < src.Height {
		rows = lineRange(src.Height-1, startY, -1)
		if len(rows) == 0 {
			rows = []int{src.Height - 1}
		}
	}

	var best *screenResult
	for _, col := range columns {
		for _, row := range rows {
			res := tryRemoval(items, dst, startY, col, row)
			if best == nil || res.Cost.Less(best.Cost) {
				best = &res
			}
		}
	}
	return *best
}

// tryRemoval removes one column and/or row, shifts the items past it, and
// asks the solver to re-home the items that were cut or no longer fit.
func tryRemoval(items []layout.Item, dst grid.Size, startY, col, row int) screenResult {
	var kept, evicted []layout.Item
	for _, it := range items {
		cut := false
		if col != noLine {
			if it.CellX <= col && col < it.CellX+it.SpanX {
				cut = true
				if it.CellX >= col {
					it.CellX--
				}
			} else if it.CellX > col {
				it.CellX--
			}
		}
		if row != noLine {
			if it.CellY <= row && row < it.CellY+it.SpanY {
				cut = true
				if it.CellY >= row {
					it.CellY--
				}
			} else if it.CellY > row {
				it.CellY--
			}
		}
		if cut || !dst.Contains(it.Rect()) {
			evicted = append(evicted, it)
			continue
		}
		kept = append(kept, it)
	}

	occ := reservedMask(dst, startY)
	for _, it := range kept {
		occ.MarkCells(it.Rect(), true)
	}

	sol := placement.Solve(occ, evicted, startY, placement.ModeMovementAware)
	for _, it := range sol.Placed {
		occ.MarkCells(it.Rect(), true)
	}

	return screenResult{
		Items:   append(kept, sol.Placed...),
		Evicted: sol.Unplaced,
		Cost:    sol.Cost,
		Column:  col,
		Row:     row,
		occ:     occ,
	}
}

// absorb tries to fit all of carry onto the screen without moving anything
// already there. It returns the placed items, or false if any would be lost.
func (r *screenResult) absorb(carry []layout.Item, startY int) ([]layout.Item, bool) {
	sol := placement.Solve(r.occ, carry, startY, placement.ModeFeasibility)
	if !sol.Cost.NoLoss() {
		return nil, false
	}
	for _, it := range sol.Placed {
		r.occ.MarkCells(it.Rect(), true)
	}
	return sol.Placed, true
}

// reservedMask returns an empty mask with the rows above startY taken.
func reservedMask(size grid.Size, startY int) *grid.Occupancy {
	occ := grid.NewOccupancy(size)
	if band := min(startY, size.Height); band > 0 {
		occ.MarkCells(grid.Rect{X: 0, Y: 0, W: size.Width, H: band}, true)
	}
	return occ
}

// lineRange returns the integers from first to last inclusive, stepping by step.
func lineRange(first, last, step int) []int {
	var out []int
	for i := first; (step > 0 && i <= last) || (step < 0 && i >= last); i += step {
		out = append(out, i)
	}
	return out
}
