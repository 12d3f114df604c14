package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
)

func TestPlacement(t *testing.T) {
	tests := []struct {
		name string
		item layout.Item
		want string
	}{
		{
			name: "unit",
			item: layout.Item{Container: layout.ContainerDesktop, Screen: 2, CellX: 1, CellY: 3, SpanX: 1, SpanY: 1},
			want: "screen 2 (1,3)",
		},
		{
			name: "widget",
			item: layout.Item{Container: layout.ContainerDesktop, Screen: 0, SpanX: 4, SpanY: 2},
			want: "screen 0 (0,0) 4x2",
		},
		{
			name: "hotseat",
			item: layout.Item{Container: layout.ContainerHotseat, Screen: 3, CellX: 3, SpanX: 1, SpanY: 1},
			want: "hotseat 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placement(tt.item); got != tt.want {
				t.Errorf("placement() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemColumn(t *testing.T) {
	short := itemColumn(layout.Item{ID: 3, Title: "Mail"})
	if ansi.StringWidth(short) != labelWidth || !strings.HasPrefix(short, "#3 Mail") {
		t.Errorf("unexpected column %q", short)
	}

	long := itemColumn(layout.Item{ID: 12, Target: "com.example.averylongpackagename/.Main"})
	if ansi.StringWidth(long) != labelWidth || !strings.HasSuffix(long, "...") {
		t.Errorf("expected truncated column, got %q", long)
	}

	if got := itemLabel(layout.Item{Kind: layout.KindFolder}); got != "folder" {
		t.Errorf("expected kind fallback, got %q", got)
	}
}

func TestPlainReport_NotNeeded(t *testing.T) {
	r := &migrate.Report{Target: layout.Geometry{Workspace: grid.Size{Width: 4, Height: 5}, Hotseat: 4}}
	got := PlainReport(r, false)
	if got != "Nothing to migrate: layout is arranged for 4x5+4.\n" {
		t.Errorf("unexpected report %q", got)
	}
}

func TestPlainReport(t *testing.T) {
	widget := layout.Item{ID: 1, Kind: layout.KindWidget, Title: "Clock", Container: layout.ContainerDesktop, SpanX: 2, SpanY: 2}
	app := layout.Item{ID: 2, Kind: layout.KindApplication, Title: "Mail", Container: layout.ContainerDesktop, CellX: 1, CellY: 2, SpanX: 1, SpanY: 1}
	dropped := layout.Item{ID: 3, Kind: layout.KindApplication, Title: "Music", Container: layout.ContainerHotseat, Screen: 1, SpanX: 1, SpanY: 1}

	before := migrate.NewLayout()
	before.Screens[0] = []layout.Item{widget, app}
	before.Hotseat = []layout.Item{dropped}

	resized := widget
	resized.SpanX = 1
	moved := app
	moved.Screen, moved.CellX, moved.CellY = 4, 0, 0

	r := &migrate.Report{
		Needed: true,
		Source: layout.Geometry{Workspace: grid.Size{Width: 2, Height: 3}, Hotseat: 2},
		Target: layout.Geometry{Workspace: grid.Size{Width: 1, Height: 2}, Hotseat: 1},
		Before: before,
		Result: &migrate.Result{
			Steps:      []grid.Size{{Width: 1, Height: 2}},
			Updates:    []layout.Item{resized, moved},
			Dropped:    []layout.Item{dropped},
			Deletes:    []int64{3},
			NewScreens: []int64{4},
		},
		Rejected: []*layout.ValidationError{{ItemID: 9, Kind: layout.KindShortcut, Err: layout.ErrUnavailableTarget}},
		Run:      layout.RunRecord{Updated: 2, Deleted: 2, NewScreens: 1},
	}

	got := PlainReport(r, true)
	for _, want := range []string{
		"Preview 2x3+2 → 1x2+1",
		"Steps: 1x2",
		"resized  #1 Clock",
		"screen 0 (0,0) 2x2 → screen 0 (0,0) 1x2",
		"moved    #2 Mail",
		"screen 0 (1,2) → screen 4 (0,0)",
		"removed  #3 Music",
		"rejected  item 9 (shortcut)",
		"New screens: 4",
		"Kept: 0 | Updated: 2 | Deleted: 2",
		"nothing was written",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in report:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("expected no escape sequences in plain report")
	}
}
