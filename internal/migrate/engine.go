package migrate

import (
	"fmt"

	"github.com/javiermolinar/gridshift/internal/debuglog"
	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/placement"
)

// Engine computes migrations. It does not touch storage.
type Engine struct {
	opts  Options
	alloc ScreenAllocator
	log   *debuglog.Logger
}

// NewEngine creates an engine. alloc may be nil if no run needs new screens;
// log may be nil.
func NewEngine(opts Options, alloc ScreenAllocator, log *debuglog.Logger) *Engine {
	return &Engine{opts: opts, alloc: alloc, log: log}
}

// Result is the outcome of a successful migration.
type Result struct {
	// Steps are the intermediate workspace sizes, one unit apart, ending
	// at the target size. Empty when the workspace did not shrink.
	Steps []grid.Size

	// Layout is the migrated layout.
	Layout *Layout

	// Updates are the items whose screen, position or span changed.
	Updates []layout.Item

	// Deletes are the ids of hotseat items that were dropped.
	Deletes []int64

	// Dropped are the hotseat items behind Deletes.
	Dropped []layout.Item

	// NewScreens are the screens allocated for overflow, in order.
	NewScreens []int64
}

// Changed reports whether the migration modifies anything.
func (r *Result) Changed() bool {
	return len(r.Updates) > 0 || len(r.Deletes) > 0
}

// Steps returns the single-unit sizes that take a workspace from src to dst.
// Growing dimensions are widened at once; every still-larger dimension then
// shrinks by one per step.
func Steps(src, dst grid.Size) []grid.Size {
	cur := grid.Size{Width: max(src.Width, dst.Width), Height: max(src.Height, dst.Height)}

	var steps []grid.Size
	for cur != dst {
		if cur.Width > dst.Width {
			cur.Width--
		}
		if cur.Height > dst.Height {
			cur.Height--
		}
		steps = append(steps, cur)
	}
	return steps
}

// Migrate moves in from the src geometry to dst. in is not modified.
func (e *Engine) Migrate(src, dst layout.Geometry, in *Layout) (*Result, error) {
	work := in.Clone()
	res := &Result{Layout: work}

	e.log.Log("MIGRATE_START", map[string]any{
		"source":  src.String(),
		"target":  dst.String(),
		"screens": len(work.Screens),
		"hotseat": len(work.Hotseat),
	})

	if src.Hotseat != dst.Hotseat {
		hs := migrateHotseat(work.Hotseat, dst.Hotseat)
		work.Hotseat = hs.Items
		res.Dropped = hs.Dropped
		for _, it := range hs.Dropped {
			res.Deletes = append(res.Deletes, it.ID)
		}
		e.log.Log("HOTSEAT", map[string]any{
			"from":    src.Hotseat,
			"to":      dst.Hotseat,
			"dropped": len(hs.Dropped),
		})
	}

	cur := grid.Size{
		Width:  max(src.Workspace.Width, dst.Workspace.Width),
		Height: max(src.Workspace.Height, dst.Workspace.Height),
	}
	for _, next := range Steps(src.Workspace, dst.Workspace) {
		if err := e.step(work, cur, next, res); err != nil {
			return nil, err
		}
		res.Steps = append(res.Steps, next)
		cur = next
	}

	res.Updates = diff(in, work)
	e.log.Log("MIGRATE_END", map[string]any{
		"updated":     len(res.Updates),
		"deleted":     len(res.Deletes),
		"new_screens": len(res.NewScreens),
	})
	return res, nil
}

// step runs one single-unit shrink over every screen, then places the
// carry-over on new screens.
func (e *Engine) step(work *Layout, cur, next grid.Size, res *Result) error {
	e.log.Log("STEP", map[string]any{"from": cur.String(), "to": next.String()})

	var carry []layout.Item
	for _, id := range work.ScreenIDs() {
		startY := e.startY(id, next)
		sr := migrateScreen(work.Screens[id], cur, next, startY)

		items := sr.Items
		carry = append(carry, sr.Evicted...)

		if len(carry) > 0 && sr.Cost.NoLoss() {
			if placed, ok := sr.absorb(carry, startY); ok {
				items = append(items, placed...)
				e.log.Log("ABSORB", map[string]any{"screen": id, "items": len(placed)})
				carry = nil
			}
		}

		for i := range items {
			items[i].Screen = id
		}
		work.Screens[id] = items

		e.log.Log("SCREEN", map[string]any{
			"screen":  id,
			"column":  sr.Column,
			"row":     sr.Row,
			"loss":    sr.Cost.Loss,
			"moves":   sr.Cost.Move,
			"evicted": len(sr.Evicted),
		})
	}

	return e.overflow(work, carry, next, res)
}

// overflow places carry on new empty screens until nothing is left. A pass
// that places nothing means the items fit nowhere.
func (e *Engine) overflow(work *Layout, carry []layout.Item, size grid.Size, res *Result) error {
	for len(carry) > 0 {
		sol := placement.Solve(grid.NewOccupancy(size), carry, 0, placement.ModeFeasibility)
		if len(sol.Placed) == 0 {
			err := fmt.Errorf("%w: %d items do not fit a %s screen", ErrPlacementExhausted, len(carry), size)
			e.log.Error("overflow", err)
			return err
		}

		if e.alloc == nil {
			return ErrNoAllocator
		}
		id, err := e.alloc()
		if err != nil {
			return fmt.Errorf("allocating screen: %w", err)
		}

		placed := sol.Placed
		for i := range placed {
			placed[i].Screen = id
			placed[i].Container = layout.ContainerDesktop
		}
		work.Screens[id] = placed
		res.NewScreens = append(res.NewScreens, id)

		e.log.Log("NEW_SCREEN", map[string]any{
			"screen":    id,
			"placed":    len(placed),
			"remaining": len(sol.Unplaced),
		})
		carry = sol.Unplaced
	}
	return nil
}

func (e *Engine) startY(screen int64, size grid.Size) int {
	if screen != e.opts.FirstScreen || e.opts.ReservedRows <= 0 {
		return 0
	}
	return min(e.opts.ReservedRows, size.Height)
}

// diff returns the items of out whose placement differs from in.
// Items are matched by id; items missing from in are included.
func diff(in, out *Layout) []layout.Item {
	before := make(map[int64]layout.Item, in.Count())
	for _, it := range in.Items() {
		before[it.ID] = it
	}

	var changed []layout.Item
	for _, it := range out.Items() {
		orig, ok := before[it.ID]
		if !ok || !orig.SamePlacement(it) {
			changed = append(changed, it)
		}
	}
	return changed
}
