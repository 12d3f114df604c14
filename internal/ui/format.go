package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
)

// labelWidth is the column width for item labels in reports.
const labelWidth = 24

// WriteReport prints a summary of a migration run.
func WriteReport(w io.Writer, r *migrate.Report, preview bool) {
	if !r.Needed {
		fmt.Fprintf(w, "Nothing to migrate: layout is arranged for %s.\n", r.Target)
		return
	}

	verb := "Migrated"
	if preview {
		verb = "Preview"
	}
	fmt.Fprintf(w, "%s %s → %s\n", formatHeader(verb), r.Source, r.Target)
	if steps := r.Result.Steps; len(steps) > 0 {
		fmt.Fprintf(w, "%s\n", formatMuted("Steps: "+formatSteps(steps)))
	}
	fmt.Fprintln(w)

	before := make(map[int64]layout.Item)
	for _, it := range r.Before.Items() {
		before[it.ID] = it
	}

	for _, u := range r.Result.Updates {
		prev, ok := before[u.ID]
		if !ok {
			continue
		}
		action := formatMoved("moved  ")
		if prev.SpanX != u.SpanX || prev.SpanY != u.SpanY {
			action = formatMoved("resized")
		}
		fmt.Fprintf(w, "  %s  %s  %s → %s\n", action, itemColumn(u), placement(prev), placement(u))
	}
	for _, it := range r.Result.Dropped {
		fmt.Fprintf(w, "  %s  %s  %s\n", formatRemoved("removed"), itemColumn(it), placement(it))
	}
	for _, rej := range r.Rejected {
		fmt.Fprintf(w, "  %s  item %d (%s): %v\n", formatRemoved("rejected"), rej.ItemID, rej.Kind, rej.Err)
	}
	if len(r.Result.Updates)+len(r.Result.Dropped)+len(r.Rejected) > 0 {
		fmt.Fprintln(w)
	}

	if len(r.Result.NewScreens) > 0 {
		ids := make([]string, len(r.Result.NewScreens))
		for i, id := range r.Result.NewScreens {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(w, "New screens: %s\n", strings.Join(ids, ", "))
	}

	kept := r.Before.Count() - len(r.Result.Updates) - len(r.Result.Dropped)
	fmt.Fprintf(w, "%s | %s | %s\n",
		formatKept(fmt.Sprintf("Kept: %d", kept)),
		formatMoved(fmt.Sprintf("Updated: %d", r.Run.Updated)),
		formatRemoved(fmt.Sprintf("Deleted: %d", r.Run.Deleted)),
	)

	switch {
	case preview:
		fmt.Fprintln(w, formatMuted("Preview only, nothing was written."))
	case r.Run.ID != "":
		fmt.Fprintln(w, formatOK("Committed run "+r.Run.ID))
	}
}

// PlainReport renders the report without colors.
func PlainReport(r *migrate.Report, preview bool) string {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	var b strings.Builder
	WriteReport(&b, r, preview)
	return b.String()
}

func formatSteps(steps []grid.Size) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " → ")
}

func itemColumn(it layout.Item) string {
	label := ansi.Truncate(fmt.Sprintf("#%d %s", it.ID, itemLabel(it)), labelWidth, "...")
	return label + strings.Repeat(" ", labelWidth-ansi.StringWidth(label))
}

func itemLabel(it layout.Item) string {
	switch {
	case it.Title != "":
		return it.Title
	case it.Target != "":
		return it.Target
	default:
		return string(it.Kind)
	}
}

// placement describes where an item sits.
func placement(it layout.Item) string {
	if it.Container == layout.ContainerHotseat {
		return fmt.Sprintf("hotseat %d", it.Screen)
	}
	s := fmt.Sprintf("screen %d (%d,%d)", it.Screen, it.CellX, it.CellY)
	if it.SpanX != 1 || it.SpanY != 1 {
		s += fmt.Sprintf(" %dx%d", it.SpanX, it.SpanY)
	}
	return s
}
