package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
	}{
		{"short", "Mail", 10},
		{"empty", "", 10},
		{"exact", "123456789", 10},
		{"long", "VeryLongApplicationName", 10},
		{"wide span", "Clock", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pad(tt.in, tt.width)
			if w := ansi.StringWidth(got); w != tt.width {
				t.Errorf("pad(%q, %d) width = %d, want %d", tt.in, tt.width, w, tt.width)
			}
			if !strings.HasPrefix(got, " ") {
				t.Errorf("pad(%q, %d) = %q, want leading space", tt.in, tt.width, got)
			}
		})
	}

	if got := pad("VeryLongApplicationName", 10); !strings.HasSuffix(strings.TrimRight(got, " "), "…") {
		t.Errorf("expected truncation tail, got %q", got)
	}
}

func TestCellOwners(t *testing.T) {
	items := []layout.Item{
		{ID: 1, CellX: 0, CellY: 0, SpanX: 2, SpanY: 2},
		{ID: 2, CellX: 2, CellY: 1, SpanX: 1, SpanY: 1},
		{ID: 3, CellX: 2, CellY: 0, SpanX: 3, SpanY: 1}, // clipped
	}
	owner := cellOwners(grid.Size{Width: 3, Height: 2}, items)

	want := [][]int{
		{0, 0, 2},
		{0, 0, 1},
	}
	for y := range want {
		for x := range want[y] {
			if owner[y][x] != want[y][x] {
				t.Errorf("owner[%d][%d] = %d, want %d", y, x, owner[y][x], want[y][x])
			}
		}
	}
}

func TestRenderScreen(t *testing.T) {
	s := NewStyles(nil)
	out := ansi.Strip(s.RenderScreen(ScreenView{
		Title: "Screen 0",
		Size:  grid.Size{Width: 3, Height: 2},
		Items: []layout.Item{
			{ID: 1, Kind: layout.KindApplication, Title: "Mail", CellX: 0, CellY: 0, SpanX: 1, SpanY: 1},
			{ID: 2, Kind: layout.KindWidget, Title: "Clock", CellX: 1, CellY: 1, SpanX: 2, SpanY: 1},
		},
	}))

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, 2 rows and borders (5 lines), got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Screen 0") {
		t.Errorf("expected title line, got %q", lines[0])
	}
	for _, label := range []string{"Mail", "Clock"} {
		if !strings.Contains(out, label) {
			t.Errorf("expected %q in output:\n%s", label, out)
		}
	}
	if w := ansi.StringWidth(lines[2]); w != 3*cellWidth+2 {
		t.Errorf("row width = %d, want %d", w, 3*cellWidth+2)
	}
}

func TestRenderScreen_LabelFallback(t *testing.T) {
	s := NewStyles(nil)
	out := ansi.Strip(s.RenderScreen(ScreenView{
		Size: grid.Size{Width: 2, Height: 1},
		Items: []layout.Item{
			{ID: 1, Kind: layout.KindShortcut, Target: "com.calc", SpanX: 1, SpanY: 1},
			{ID: 2, Kind: layout.KindFolder, CellX: 1, SpanX: 1, SpanY: 1},
		},
	}))

	if !strings.Contains(out, "com.calc") {
		t.Errorf("expected package label, got:\n%s", out)
	}
	if !strings.Contains(out, "folder") {
		t.Errorf("expected kind label, got:\n%s", out)
	}
}

func TestRenderHotseat(t *testing.T) {
	s := NewStyles(nil)
	items := []layout.Item{
		{ID: 1, Title: "Phone", Container: layout.ContainerHotseat, Screen: 0, SpanX: 1, SpanY: 1},
		{ID: 2, Title: "Browser", Container: layout.ContainerHotseat, Screen: 2, SpanX: 1, SpanY: 1},
	}
	out := ansi.Strip(s.RenderHotseat("Hotseat", 3, items, nil))

	row := strings.Split(out, "\n")[2]
	if !strings.Contains(row, "Phone") || !strings.Contains(row, "Browser") {
		t.Errorf("expected both items in %q", row)
	}
	if strings.Index(row, "Phone") > strings.Index(row, "Browser") {
		t.Errorf("expected slot order, got %q", row)
	}

	if out := ansi.Strip(s.RenderHotseat("Hotseat", 0, nil, nil)); !strings.Contains(out, "(no hotseat)") {
		t.Errorf("expected empty hotseat marker, got:\n%s", out)
	}
}

func TestRenderRejected(t *testing.T) {
	s := NewStyles(nil)
	if got := s.RenderRejected(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}

	out := ansi.Strip(s.RenderRejected([]*layout.ValidationError{
		{ItemID: 7, Kind: layout.KindApplication, Err: layout.ErrUnavailableTarget},
	}))
	if !strings.Contains(out, "1 item(s) rejected") {
		t.Errorf("expected rejection count, got:\n%s", out)
	}
}
