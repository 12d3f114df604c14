package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/javiermolinar/gridshift/internal/debuglog"
	"github.com/javiermolinar/gridshift/internal/layout"
)

// Runner executes migrations against a store. Each run happens inside one
// transaction that commits only when every step succeeded.
type Runner struct {
	repo  layout.Repository
	valid PackageSet
	opts  Options
	log   *debuglog.Logger
}

// NewRunner creates a runner.
func NewRunner(repo layout.Repository, valid PackageSet, opts Options, log *debuglog.Logger) *Runner {
	return &Runner{repo: repo, valid: valid, opts: opts, log: log}
}

// Request describes one migration.
type Request struct {
	Target layout.Geometry

	// Source overrides the stored geometry.
	Source *layout.Geometry

	// Preview computes everything and rolls back.
	Preview bool
}

// Report describes a finished run.
type Report struct {
	// Needed is false when the store already matches the target geometry.
	// Nothing else is set in that case.
	Needed bool

	Source layout.Geometry
	Target layout.Geometry

	// Before is the validated layout the engine started from.
	Before *Layout

	Result   *Result
	Rejected []*layout.ValidationError
	Deletes  []int64

	// Run is the history record. Its ID is empty for previews.
	Run layout.RunRecord
}

// Run migrates the stored layout to req.Target.
//
// When no geometry was stored yet and req.Source is nil, the target geometry
// is stored as is and no migration happens.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	report := &Report{Target: req.Target}

	fn := func(tx layout.Tx) error {
		src, ok, err := tx.Geometry(ctx)
		if err != nil {
			return fmt.Errorf("reading geometry: %w", err)
		}
		if req.Source != nil {
			src, ok = *req.Source, true
		}
		if !ok || src == req.Target {
			if !ok {
				if err := tx.SetGeometry(ctx, req.Target); err != nil {
					return fmt.Errorf("storing geometry: %w", err)
				}
			}
			return nil
		}
		report.Needed = true
		report.Source = src
		return r.migrate(ctx, tx, req, report)
	}

	var err error
	if req.Preview {
		err = r.repo.Preview(ctx, fn)
	} else {
		err = r.repo.InTx(ctx, fn)
	}
	if err != nil {
		r.log.Error("run", err)
		return nil, err
	}
	return report, nil
}

func (r *Runner) migrate(ctx context.Context, tx layout.Tx, req Request, report *Report) error {
	before, err := tx.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("counting items: %w", err)
	}

	snap, err := Load(ctx, tx, r.valid, report.Source, req.Target)
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}
	for _, rej := range snap.Rejected {
		r.log.Log("REJECTED", map[string]any{
			"item":   rej.ItemID,
			"kind":   string(rej.Kind),
			"reason": rej.Err.Error(),
		})
	}

	alloc := func() (int64, error) {
		return tx.NextScreenID(ctx)
	}
	res, err := NewEngine(r.opts, alloc, r.log).Migrate(report.Source, req.Target, snap.Layout)
	if err != nil {
		return err
	}

	deletes := append(append([]int64{}, snap.Deletes...), res.Deletes...)
	contents, err := droppedContents(ctx, tx, res.Dropped)
	if err != nil {
		return err
	}
	seen := make(map[int64]bool, len(deletes))
	for _, id := range deletes {
		seen[id] = true
	}
	for _, id := range contents {
		if !seen[id] {
			seen[id] = true
			deletes = append(deletes, id)
		}
	}
	if err := tx.ApplyChanges(ctx, res.Updates, deletes); err != nil {
		return fmt.Errorf("applying changes: %w", err)
	}

	after, err := tx.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("counting items: %w", err)
	}
	if before > 0 && after == 0 {
		return fmt.Errorf("%w: %d items before, none after", ErrIntegrityViolation, before)
	}

	if err := tx.SetGeometry(ctx, req.Target); err != nil {
		return fmt.Errorf("storing geometry: %w", err)
	}

	report.Before = snap.Layout
	report.Result = res
	report.Rejected = snap.Rejected
	report.Deletes = deletes
	report.Run = layout.RunRecord{
		Source:     report.Source,
		Target:     req.Target,
		Updated:    len(res.Updates),
		Deleted:    len(deletes),
		NewScreens: len(res.NewScreens),
	}
	if req.Preview {
		return nil
	}
	if err := tx.RecordRun(ctx, &report.Run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// droppedContents returns the ids of the items stored inside dropped folders.
func droppedContents(ctx context.Context, r layout.Reader, dropped []layout.Item) ([]int64, error) {
	var ids []int64
	for _, it := range dropped {
		if it.Kind != layout.KindFolder {
			continue
		}
		children, err := r.FolderItems(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("loading folder %d: %w", it.ID, err)
		}
		for _, c := range children {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// IsFatal reports whether err means the layout could not be migrated at all,
// as opposed to a storage failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPlacementExhausted) || errors.Is(err, ErrIntegrityViolation)
}

// Reset clears the layout and stores the target geometry. It is the fallback
// after a fatal migration failure.
func (r *Runner) Reset(ctx context.Context, target layout.Geometry) error {
	if err := r.repo.Reset(ctx, target); err != nil {
		return fmt.Errorf("resetting layout: %w", err)
	}
	r.log.Log("RESET", map[string]any{"target": target.String()})
	return nil
}
