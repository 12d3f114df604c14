// Package placement finds positions for items that lost their place on a grid.
//
// The solver is a branch-and-bound search over the items in placement order
// (widgets first, largest first, then 1x1 items by descending weight). It
// minimizes the total weight of items left without a position and, among
// equally lossy solutions, the number of moves and shrinks needed.
package placement

import (
	"errors"
	"math"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
)

// ErrUnsorted is returned by NewSorted when items are not in placement order.
var ErrUnsorted = errors.New("items are not in placement order")

// weightEpsilon absorbs float drift when comparing summed weights.
const weightEpsilon = 1e-9

// Mode selects how movement is scored.
type Mode int

const (
	// ModeMovementAware charges one unit per changed axis and per shrunk
	// dimension, and places 1x1 items on the free cell nearest their old one.
	ModeMovementAware Mode = iota

	// ModeFeasibility ignores position changes and fills free cells in scan
	// order. Used when items have no meaningful position on the target grid.
	ModeFeasibility
)

// Cost is the score of a placement: weight lost first, then moves.
type Cost struct {
	Loss float64
	Move int
}

// Less reports whether c is strictly better than o.
func (c Cost) Less(o Cost) bool {
	if math.Abs(c.Loss-o.Loss) > weightEpsilon {
		return c.Loss < o.Loss
	}
	return c.Move < o.Move
}

// NoLoss reports whether every item was placed.
func (c Cost) NoLoss() bool {
	return c.Loss <= weightEpsilon
}

// worst is larger than any reachable cost.
var worst = Cost{Loss: math.Inf(1), Move: math.MaxInt}

// Solution is the best placement found.
type Solution struct {
	Placed   []layout.Item // new positions and spans, in placement order
	Unplaced []layout.Item // untouched copies of the items left out
	Cost     Cost
	Nodes    int // search nodes visited
}

type placedEntry struct {
	index int
	item  layout.Item
}

// Solver searches placements for one grid. A Solver is single use.
type Solver struct {
	occ        *grid.Occupancy
	size       grid.Size
	items      []layout.Item
	startY     int
	ignoreMove bool

	// unitFrom is the first index from which every item is 1x1.
	unitFrom int

	stack []placedEntry
	best  Cost
	found []placedEntry
	nodes int
}

// New creates a solver. occ holds the cells already taken; it is modified
// during the search and restored before Solve returns. items are copied and
// sorted into placement order. No item is placed above row startY.
func New(occ *grid.Occupancy, items []layout.Item, startY int, mode Mode) *Solver {
	sorted := layout.Clone(items)
	layout.SortForPlacement(sorted)
	return newSolver(occ, sorted, startY, mode)
}

// NewSorted is like New but uses items as given. The bulk-loss shortcut for
// 1x1 items is only exact in placement order, so unsorted input is rejected.
func NewSorted(occ *grid.Occupancy, items []layout.Item, startY int, mode Mode) (*Solver, error) {
	if !layout.IsSortedForPlacement(items) {
		return nil, ErrUnsorted
	}
	return newSolver(occ, items, startY, mode), nil
}

// newSolver expects items in placement order.
func newSolver(occ *grid.Occupancy, items []layout.Item, startY int, mode Mode) *Solver {
	unitFrom := len(items)
	for unitFrom > 0 && items[unitFrom-1].IsUnit() {
		unitFrom--
	}

	return &Solver{
		occ:        occ,
		size:       occ.Size(),
		items:      items,
		startY:     max(startY, 0),
		ignoreMove: mode == ModeFeasibility,
		unitFrom:   unitFrom,
		best:       worst,
	}
}

// Solve runs the search and returns the best placement.
func (s *Solver) Solve() Solution {
	s.find(0, Cost{})

	sol := Solution{Cost: s.best, Nodes: s.nodes}
	placed := make(map[int]bool, len(s.found))
	for _, e := range s.found {
		sol.Placed = append(sol.Placed, e.item)
		placed[e.index] = true
	}
	for i, it := range s.items {
		if !placed[i] {
			sol.Unplaced = append(sol.Unplaced, it)
		}
	}
	return sol
}

// Solve is shorthand for New(...).Solve().
func Solve(occ *grid.Occupancy, items []layout.Item, startY int, mode Mode) Solution {
	return New(occ, items, startY, mode).Solve()
}

// find explores placements for items[index:] given the cost so far.
func (s *Solver) find(index int, cost Cost) {
	s.nodes++
	if !cost.Less(s.best) {
		return
	}
	if index >= len(s.items) {
		s.best = cost
		s.found = append(s.found[:0], s.stack...)
		return
	}

	me := s.items[index]
	if me.IsUnit() {
		s.placeUnit(index, me, cost)
		return
	}
	s.placeSpanning(index, me, cost)
}

// placeSpanning tries a multi-cell item at every position, at full size and
// shrunk by one cell per axis. Leaving it out is tried last so that branch
// is usually pruned.
func (s *Solver) placeSpanning(index int, me layout.Item, cost Cost) {
	canShrinkX := me.SpanX > me.MinSpanX
	canShrinkY := me.SpanY > me.MinSpanY

	for y := s.startY; y < s.size.Height; y++ {
		for x := 0; x < s.size.Width; x++ {
			at := Cost{Loss: cost.Loss, Move: cost.Move + s.moveCost(me, x, y)}

			s.tryAt(index, me, x, y, me.SpanX, me.SpanY, at)
			if canShrinkX {
				s.tryAt(index, me, x, y, me.SpanX-1, me.SpanY, Cost{at.Loss, at.Move + 1})
			}
			if canShrinkY {
				s.tryAt(index, me, x, y, me.SpanX, me.SpanY-1, Cost{at.Loss, at.Move + 1})
			}
			if canShrinkX && canShrinkY {
				s.tryAt(index, me, x, y, me.SpanX-1, me.SpanY-1, Cost{at.Loss, at.Move + 2})
			}
		}
	}

	s.find(index+1, Cost{Loss: cost.Loss + me.Weight, Move: cost.Move})
}

func (s *Solver) tryAt(index int, me layout.Item, x, y, w, h int, cost Cost) {
	if !s.occ.IsRegionVacant(x, y, w, h) {
		return
	}
	placed := me
	placed.CellX, placed.CellY = x, y
	placed.SpanX, placed.SpanY = w, h
	s.push(index, placed, cost)
}

// placeUnit puts a 1x1 item on the free cell nearest its old position.
// This greedy choice keeps the search linear once only 1x1 items remain.
func (s *Solver) placeUnit(index int, me layout.Item, cost Cost) {
	x, y, ok := s.nearestFree(me)
	if !ok {
		if index >= s.unitFrom {
			// No free cell is left, so nothing from here on can be placed.
			loss := cost.Loss
			for _, it := range s.items[index:] {
				loss += it.Weight
			}
			s.find(len(s.items), Cost{Loss: loss, Move: cost.Move})
			return
		}
		s.find(index+1, Cost{Loss: cost.Loss + me.Weight, Move: cost.Move})
		return
	}

	placed := me
	placed.CellX, placed.CellY = x, y
	s.push(index, placed, Cost{Loss: cost.Loss, Move: cost.Move + s.moveCost(me, x, y)})

	// Dropping this item can only pay off when the next one weighs as much,
	// letting the two trade places for fewer moves.
	if !s.ignoreMove && index+1 < len(s.items) && s.items[index+1].Weight >= me.Weight {
		s.find(index+1, Cost{Loss: cost.Loss + me.Weight, Move: cost.Move})
	}
}

// push marks placed on the grid, recurses, then undoes the mark.
func (s *Solver) push(index int, placed layout.Item, cost Cost) {
	r := placed.Rect()
	s.occ.MarkCells(r, true)
	s.stack = append(s.stack, placedEntry{index: index, item: placed})

	s.find(index+1, cost)

	s.stack = s.stack[:len(s.stack)-1]
	s.occ.MarkCells(r, false)
}

func (s *Solver) nearestFree(me layout.Item) (int, int, bool) {
	bestDist := math.MaxInt
	bx, by := -1, -1
	for y := s.startY; y < s.size.Height; y++ {
		for x := 0; x < s.size.Width; x++ {
			if s.occ.IsOccupied(x, y) {
				continue
			}
			dist := 0
			if !s.ignoreMove {
				dx, dy := me.CellX-x, me.CellY-y
				dist = dx*dx + dy*dy
			}
			if dist < bestDist {
				bestDist, bx, by = dist, x, y
			}
		}
	}
	return bx, by, bx >= 0
}

func (s *Solver) moveCost(me layout.Item, x, y int) int {
	if s.ignoreMove {
		return 0
	}
	moves := 0
	if x != me.CellX {
		moves++
	}
	if y != me.CellY {
		moves++
	}
	return moves
}
