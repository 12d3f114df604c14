package ui

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
	"github.com/javiermolinar/gridshift/internal/tui"
	"github.com/javiermolinar/gridshift/internal/tui/theme"
)

func (a *App) showCmd() *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored layout",
		Long: `Draw every workspace screen and the hotseat as stored, using the
stored geometry (or the configured one if none was stored yet).

Example:
  gridshift show
  gridshift show --runs 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			out := cmd.OutOrStdout()

			g, stored, err := a.repo.Geometry(ctx)
			if err != nil {
				return fmt.Errorf("reading geometry: %w", err)
			}
			if !stored {
				g = a.config.Target()
			}
			items, err := a.repo.ListItems(ctx)
			if err != nil {
				return fmt.Errorf("listing items: %w", err)
			}

			th, err := theme.Load(a.config.UI.Theme)
			if err != nil {
				return err
			}
			writeLayout(out, tui.NewStyles(th), g, stored, items, a.options(), termWidth())

			if runs > 0 {
				history, err := a.repo.ListRuns(ctx, runs)
				if err != nil {
					return fmt.Errorf("listing runs: %w", err)
				}
				writeRuns(out, history)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 0, "Also list the N most recent migrations")
	return cmd
}

// writeLayout draws the screens, as many per line as fit width.
func writeLayout(w io.Writer, s *tui.Styles, g layout.Geometry, stored bool, items []layout.Item, opts migrate.Options, width int) {
	source := "stored"
	if !stored {
		source = "configured, nothing stored yet"
	}
	fmt.Fprintf(w, "%s %s (%s), %d items\n\n", formatHeader("Geometry"), g, source, len(items))

	children := make(map[int64]int)
	for _, it := range items {
		if it.Container >= 0 {
			children[it.Container]++
		}
	}
	byScreen := make(map[int64][]layout.Item)
	var hotseat []layout.Item
	for _, it := range items {
		if it.Kind == layout.KindFolder {
			it.Title = fmt.Sprintf("%s (%d)", itemLabel(it), children[it.ID])
		}
		switch it.Container {
		case layout.ContainerDesktop:
			byScreen[it.Screen] = append(byScreen[it.Screen], it)
		case layout.ContainerHotseat:
			hotseat = append(hotseat, it)
		}
	}

	ids := make([]int64, 0, len(byScreen))
	for id := range byScreen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var row []string
	flush := func() {
		if len(row) > 0 {
			fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	for _, id := range ids {
		v := tui.ScreenView{
			Title: fmt.Sprintf("Screen %d", id),
			Size:  g.Workspace,
			Items: byScreen[id],
		}
		if id == opts.FirstScreen {
			v.ReservedRows = opts.ReservedRows
		}
		block := lipgloss.NewStyle().MarginRight(2).Render(s.RenderScreen(v))
		if len(row) > 0 && lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Top, append(row, block)...)) > width {
			flush()
		}
		row = append(row, block)
	}
	flush()
	if len(ids) == 0 {
		fmt.Fprintln(w, formatMuted("The workspace is empty."))
	}

	fmt.Fprintln(w, s.RenderHotseat("Hotseat", g.Hotseat, hotseat, nil))
}

func writeRuns(w io.Writer, runs []layout.RunRecord) {
	fmt.Fprintf(w, "\n%s\n", formatHeader("Recent migrations"))
	if len(runs) == 0 {
		fmt.Fprintln(w, formatMuted("  none"))
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s → %s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source, r.Target,
			formatMuted(fmt.Sprintf("updated %d, deleted %d, new screens %d  %s", r.Updated, r.Deleted, r.NewScreens, r.ID)),
		)
	}
}
