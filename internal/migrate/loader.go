package migrate

import (
	"context"
	"fmt"

	"github.com/javiermolinar/gridshift/internal/layout"
)

// PackageSet answers whether a package is installed or being installed.
type PackageSet interface {
	Contains(pkg string) bool
}

// Snapshot is a validated layout ready for the engine.
type Snapshot struct {
	Layout *Layout

	// Rejected lists every item that failed validation.
	Rejected []*layout.ValidationError

	// Deletes are the ids to remove: rejected items plus the contents of
	// rejected folders.
	Deletes []int64
}

type loader struct {
	r     layout.Reader
	valid PackageSet
	dst   layout.Geometry
	snap  *Snapshot
}

// Load reads and validates the layout. Items that fail validation are left
// out of the returned layout and listed for deletion. Weights and minimum
// spans are filled in on every kept item.
func Load(ctx context.Context, r layout.Reader, valid PackageSet, src, dst layout.Geometry) (*Snapshot, error) {
	l := &loader{
		r:     r,
		valid: valid,
		dst:   dst,
		snap:  &Snapshot{Layout: NewLayout()},
	}

	screens, err := r.WorkspaceScreens(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing screens: %w", err)
	}
	for _, id := range screens {
		items, err := r.ScreenItems(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading screen %d: %w", id, err)
		}
		kept := make([]layout.Item, 0, len(items))
		for _, it := range items {
			ok, err := l.accept(ctx, &it)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, it)
			}
		}
		l.snap.Layout.Screens[id] = kept
	}

	hotseat, err := r.HotseatItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading hotseat: %w", err)
	}
	for _, it := range hotseat {
		if it.Screen < 0 || it.Screen >= int64(src.Hotseat) {
			if err := l.reject(ctx, it, layout.ErrSlotOutOfRange); err != nil {
				return nil, err
			}
			continue
		}
		ok, err := l.accept(ctx, &it)
		if err != nil {
			return nil, err
		}
		if ok {
			l.snap.Layout.Hotseat = append(l.snap.Layout.Hotseat, it)
		}
	}

	return l.snap, nil
}

// accept validates it and fills in its weight. Invalid items are recorded
// for deletion and reported as not ok.
func (l *loader) accept(ctx context.Context, it *layout.Item) (bool, error) {
	children := 0
	verr := it.Validate()
	if verr == nil {
		switch it.Kind {
		case layout.KindApplication, layout.KindShortcut, layout.KindDeepShortcut:
			if !l.valid.Contains(it.Package()) {
				verr = layout.ErrUnavailableTarget
			}
		case layout.KindWidget:
			layout.NormalizeMinSpan(it)
			switch {
			case !l.valid.Contains(it.Package()):
				verr = layout.ErrUnavailableTarget
			case it.MinSpanX > l.dst.Workspace.Width || it.MinSpanY > l.dst.Workspace.Height:
				verr = layout.ErrWidgetTooLarge
			}
		case layout.KindFolder:
			n, err := l.folderChildren(ctx, it.ID)
			if err != nil {
				return false, err
			}
			if n == 0 {
				verr = layout.ErrEmptyFolder
			}
			children = n
		}
	}

	if verr != nil {
		return false, l.reject(ctx, *it, verr)
	}

	layout.NormalizeMinSpan(it)
	it.Weight = layout.ComputeWeight(*it, children)
	return true, nil
}

// folderChildren validates the items inside a folder, rejecting the
// invalid ones, and returns how many are valid.
func (l *loader) folderChildren(ctx context.Context, folderID int64) (int, error) {
	children, err := l.r.FolderItems(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("loading folder %d: %w", folderID, err)
	}

	valid := 0
	for _, c := range children {
		var verr error
		switch {
		case !c.Kind.Valid() || c.Kind == layout.KindFolder || c.Kind == layout.KindWidget:
			verr = fmt.Errorf("%w in folder: %q", layout.ErrUnsupportedKind, c.Kind)
		case !l.valid.Contains(c.Package()):
			verr = layout.ErrUnavailableTarget
		}
		if verr != nil {
			l.record(c, verr)
			continue
		}
		valid++
	}
	return valid, nil
}

// reject records it for deletion. A rejected folder takes its contents with it.
func (l *loader) reject(ctx context.Context, it layout.Item, err error) error {
	l.record(it, err)
	if it.Kind != layout.KindFolder {
		return nil
	}

	children, ferr := l.r.FolderItems(ctx, it.ID)
	if ferr != nil {
		return fmt.Errorf("loading folder %d: %w", it.ID, ferr)
	}
	seen := make(map[int64]bool, len(l.snap.Deletes))
	for _, id := range l.snap.Deletes {
		seen[id] = true
	}
	for _, c := range children {
		if !seen[c.ID] {
			l.snap.Deletes = append(l.snap.Deletes, c.ID)
		}
	}
	return nil
}

func (l *loader) record(it layout.Item, err error) {
	l.snap.Rejected = append(l.snap.Rejected, &layout.ValidationError{
		ItemID: it.ID,
		Kind:   it.Kind,
		Err:    err,
	})
	l.snap.Deletes = append(l.snap.Deletes, it.ID)
}
