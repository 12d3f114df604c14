package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/javiermolinar/gridshift/internal/grid"
)

// ErrInvalidGeometry is returned when a geometry string cannot be parsed.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Geometry is the grid configuration a layout was arranged for.
type Geometry struct {
	Workspace grid.Size
	Hotseat   int
}

// String returns the geometry as "WxH+N".
func (g Geometry) String() string {
	return fmt.Sprintf("%s+%d", g.Workspace, g.Hotseat)
}

// ParseGeometry parses "WxH+N", the format produced by String.
func ParseGeometry(s string) (Geometry, error) {
	size, hotseat, ok := strings.Cut(strings.TrimSpace(s), "+")
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %q: expected WxH+N", ErrInvalidGeometry, s)
	}
	cols, rows, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %q: expected WxH+N", ErrInvalidGeometry, s)
	}

	var g Geometry
	var err error
	if g.Workspace.Width, err = parseDim(cols); err != nil {
		return Geometry{}, fmt.Errorf("%w: %q: columns: %v", ErrInvalidGeometry, s, err)
	}
	if g.Workspace.Height, err = parseDim(rows); err != nil {
		return Geometry{}, fmt.Errorf("%w: %q: rows: %v", ErrInvalidGeometry, s, err)
	}
	if g.Hotseat, err = parseDim(hotseat); err != nil {
		return Geometry{}, fmt.Errorf("%w: %q: hotseat: %v", ErrInvalidGeometry, s, err)
	}
	return g, nil
}

func parseDim(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
