// Package layoutfile reads and writes layouts as YAML documents.
//
// A document holds the grid geometry, the workspace screens with their
// items, the hotseat, and folder contents nested under their folder:
//
//	grid: {columns: 5, rows: 5, hotseat: 5}
//	screens:
//	  - id: 0
//	    items:
//	      - {kind: widget, target: com.clock/.Provider, x: 0, y: 0, w: 4, h: 2, min_w: 2, min_h: 1}
//	      - kind: folder
//	        title: Tools
//	        x: 0
//	        y: 3
//	        items:
//	          - {kind: shortcut, title: Calculator, target: com.calc}
//	hotseat:
//	  - {kind: application, target: com.phone/.Dialer}
package layoutfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
)

// ErrInvalidFile is returned for documents that parse but make no sense.
var ErrInvalidFile = errors.New("invalid layout file")

// File is a layout document.
type File struct {
	Grid    Grid     `yaml:"grid"`
	Screens []Screen `yaml:"screens,omitempty"`
	Hotseat []Entry  `yaml:"hotseat,omitempty"`
}

// Grid is the geometry the layout is arranged for.
type Grid struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
	Hotseat int `yaml:"hotseat"`
}

// Screen is one workspace screen.
type Screen struct {
	ID    int64   `yaml:"id"`
	Items []Entry `yaml:"items,omitempty"`
}

// Entry is one item. Spans default to 1x1; hotseat slots default to the
// entry's position in the list.
type Entry struct {
	Kind   string  `yaml:"kind"`
	Title  string  `yaml:"title,omitempty"`
	Target string  `yaml:"target,omitempty"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	W      int     `yaml:"w,omitempty"`
	H      int     `yaml:"h,omitempty"`
	MinW   int     `yaml:"min_w,omitempty"`
	MinH   int     `yaml:"min_h,omitempty"`
	Slot   *int    `yaml:"slot,omitempty"`
	Items  []Entry `yaml:"items,omitempty"`
}

// Geometry returns the grid as a layout geometry.
func (f *File) Geometry() layout.Geometry {
	return layout.Geometry{
		Workspace: grid.Size{Width: f.Grid.Columns, Height: f.Grid.Rows},
		Hotseat:   f.Grid.Hotseat,
	}
}

// Count returns the number of items, folder contents included.
func (f *File) Count() int {
	n := 0
	var count func(entries []Entry)
	count = func(entries []Entry) {
		for _, e := range entries {
			n++
			count(e.Items)
		}
	}
	for _, s := range f.Screens {
		count(s.Items)
	}
	count(f.Hotseat)
	return n
}

// Parse decodes a document. Unknown fields are errors.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Read loads a document from path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return Parse(data)
}

// Marshal encodes f as YAML.
func Marshal(f *File) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding layout file: %w", err)
	}
	return data, nil
}

// Write saves f to path.
func Write(path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing layout file: %w", err)
	}
	return nil
}

// Validate checks the grid and that every entry names a kind.
// Kinds are not checked against the known set; unsupported kinds are
// imported and later rejected by a migration.
func (f *File) Validate() error {
	if f.Grid.Columns < 0 || f.Grid.Rows < 0 || f.Grid.Hotseat < 0 {
		return fmt.Errorf("%w: negative grid size %s", ErrInvalidFile, f.Geometry())
	}

	seen := make(map[int64]bool, len(f.Screens))
	for _, s := range f.Screens {
		if seen[s.ID] {
			return fmt.Errorf("%w: screen %d listed twice", ErrInvalidFile, s.ID)
		}
		seen[s.ID] = true
		if err := validateEntries(s.Items, fmt.Sprintf("screen %d", s.ID)); err != nil {
			return err
		}
	}
	return validateEntries(f.Hotseat, "hotseat")
}

func validateEntries(entries []Entry, where string) error {
	for i, e := range entries {
		if strings.TrimSpace(e.Kind) == "" {
			return fmt.Errorf("%w: %s item %d has no kind", ErrInvalidFile, where, i)
		}
		if e.W < 0 || e.H < 0 || e.MinW < 0 || e.MinH < 0 {
			return fmt.Errorf("%w: %s item %d has a negative span", ErrInvalidFile, where, i)
		}
		if len(e.Items) > 0 && normalizeKind(e.Kind) != layout.KindFolder {
			return fmt.Errorf("%w: %s item %d has contents but is a %s", ErrInvalidFile, where, i, e.Kind)
		}
		if err := validateEntries(e.Items, fmt.Sprintf("%s folder %d", where, i)); err != nil {
			return err
		}
	}
	return nil
}

func normalizeKind(s string) layout.Kind {
	return layout.Kind(strings.ToLower(strings.TrimSpace(s)))
}

// toItem converts an entry to an item in container.
func (e Entry) toItem(container, screen int64) *layout.Item {
	it := &layout.Item{
		Kind:      normalizeKind(e.Kind),
		Title:     e.Title,
		Target:    e.Target,
		Container: container,
		Screen:    screen,
		CellX:     e.X,
		CellY:     e.Y,
		SpanX:     max(e.W, 1),
		SpanY:     max(e.H, 1),
		MinSpanX:  e.MinW,
		MinSpanY:  e.MinH,
	}
	return it
}

func fromItem(it layout.Item) Entry {
	e := Entry{
		Kind:   string(it.Kind),
		Title:  it.Title,
		Target: it.Target,
		X:      it.CellX,
		Y:      it.CellY,
	}
	if it.SpanX != 1 || it.SpanY != 1 {
		e.W, e.H = it.SpanX, it.SpanY
	}
	if it.IsWidget() {
		e.MinW, e.MinH = it.MinSpanX, it.MinSpanY
	}
	return e
}

// Store is the storage an import writes to.
type Store interface {
	CreateItems(ctx context.Context, items []*layout.Item) error
	SetGeometry(ctx context.Context, g layout.Geometry) error
}

// Import writes the items of f to s and stores its geometry. Folders are
// created first so their contents can reference them. It returns the number
// of items created. Import does not undo earlier writes on failure, so s is
// usually a transaction.
func Import(ctx context.Context, s Store, f *File) (int, error) {
	var top []*layout.Item
	var folders []folderEntry

	add := func(e Entry, container, screen int64) {
		it := e.toItem(container, screen)
		top = append(top, it)
		if len(e.Items) > 0 {
			folders = append(folders, folderEntry{item: it, entries: e.Items})
		}
	}
	for _, sc := range f.Screens {
		for _, e := range sc.Items {
			add(e, layout.ContainerDesktop, sc.ID)
		}
	}
	for i, e := range f.Hotseat {
		slot := i
		if e.Slot != nil {
			slot = *e.Slot
		}
		e.X, e.Y = slot, 0
		add(e, layout.ContainerHotseat, int64(slot))
	}

	if err := s.CreateItems(ctx, top); err != nil {
		return 0, fmt.Errorf("creating items: %w", err)
	}
	created := len(top)

	var children []*layout.Item
	for _, fe := range folders {
		for rank, e := range fe.entries {
			c := e.toItem(fe.item.ID, 0)
			if e.X == 0 && e.Y == 0 {
				c.CellX = rank
			}
			children = append(children, c)
		}
	}
	if err := s.CreateItems(ctx, children); err != nil {
		return created, fmt.Errorf("creating folder items: %w", err)
	}
	created += len(children)

	if err := s.SetGeometry(ctx, f.Geometry()); err != nil {
		return created, fmt.Errorf("storing geometry: %w", err)
	}
	return created, nil
}

type folderEntry struct {
	item    *layout.Item
	entries []Entry
}

// FromItems builds a document from stored items. Folder contents are nested
// under their folder; items in unknown containers are skipped.
func FromItems(g layout.Geometry, items []layout.Item) *File {
	f := &File{Grid: Grid{Columns: g.Workspace.Width, Rows: g.Workspace.Height, Hotseat: g.Hotseat}}

	contents := make(map[int64][]layout.Item)
	for _, it := range items {
		if it.Container >= 0 {
			contents[it.Container] = append(contents[it.Container], it)
		}
	}
	entry := func(it layout.Item) Entry {
		e := fromItem(it)
		for _, c := range contents[it.ID] {
			e.Items = append(e.Items, fromItem(c))
		}
		return e
	}

	byScreen := make(map[int64][]Entry)
	for _, it := range items {
		switch it.Container {
		case layout.ContainerDesktop:
			byScreen[it.Screen] = append(byScreen[it.Screen], entry(it))
		case layout.ContainerHotseat:
			e := entry(it)
			slot := int(it.Screen)
			e.Slot = &slot
			e.X, e.Y = 0, 0
			f.Hotseat = append(f.Hotseat, e)
		}
	}

	ids := make([]int64, 0, len(byScreen))
	for id := range byScreen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		f.Screens = append(f.Screens, Screen{ID: id, Items: byScreen[id]})
	}
	sort.SliceStable(f.Hotseat, func(i, j int) bool { return *f.Hotseat[i].Slot < *f.Hotseat[j].Slot })
	return f
}
