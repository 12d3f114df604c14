package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
	"github.com/javiermolinar/gridshift/internal/tui"
	"github.com/javiermolinar/gridshift/internal/tui/theme"
)

// geometryFlags are the source and target overrides shared by migrate and preview.
type geometryFlags struct {
	source string
	target string
}

func (f *geometryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Source geometry as WxH+N (default: stored geometry)")
	cmd.Flags().StringVar(&f.target, "target", "", "Target geometry as WxH+N (default: [grid] config)")
}

// request builds a migration request from the flags and the configuration.
func (f *geometryFlags) request(a *App, preview bool) (migrate.Request, error) {
	req := migrate.Request{Target: a.config.Target(), Preview: preview}
	if f.target != "" {
		g, err := layout.ParseGeometry(f.target)
		if err != nil {
			return req, fmt.Errorf("parsing --target: %w", err)
		}
		req.Target = g
	}
	if f.source != "" {
		g, err := layout.ParseGeometry(f.source)
		if err != nil {
			return req, fmt.Errorf("parsing --source: %w", err)
		}
		req.Source = &g
	}
	return req, nil
}

func (a *App) migrateCmd() *cobra.Command {
	var flags geometryFlags
	var resetOnFailure bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the stored layout to the configured grid",
		Long: `Rearrange the stored layout for the target grid and commit the result.

The whole run happens in one transaction. Items that cannot be placed are
moved to new screens; the run fails without writing anything if even an
empty screen cannot hold them.

If no geometry was stored yet, the target is stored and nothing moves.

Example:
  gridshift migrate --target 4x5+4
  gridshift migrate --source 5x5+5 --reset-on-failure`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			req, err := flags.request(a, false)
			if err != nil {
				return err
			}
			runner, err := a.runner()
			if err != nil {
				return err
			}

			ctx := context.Background()
			out := cmd.OutOrStdout()
			report, err := runner.Run(ctx, req)
			if err != nil {
				if !resetOnFailure || !migrate.IsFatal(err) {
					return fmt.Errorf("migrating layout: %w", err)
				}
				if rerr := runner.Reset(ctx, req.Target); rerr != nil {
					return errors.Join(fmt.Errorf("migrating layout: %w", err), rerr)
				}
				fmt.Fprintf(out, "%s %v\n", formatRemoved("Migration failed:"), err)
				fmt.Fprintf(out, "Layout cleared and reset to %s.\n", req.Target)
				return nil
			}

			WriteReport(out, report, false)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&resetOnFailure, "reset-on-failure", false, "Clear the layout if it cannot be migrated")
	return cmd
}

func (a *App) previewCmd() *cobra.Command {
	var flags geometryFlags
	var interactive bool
	var copyReport bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what a migration would do without writing it",
		Long: `Run a migration and roll it back, then print what would change.

With --interactive, browse the screens before and after side by side.

Example:
  gridshift preview --target 4x4+4 -i
  gridshift preview --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			req, err := flags.request(a, true)
			if err != nil {
				return err
			}
			runner, err := a.runner()
			if err != nil {
				return err
			}

			report, err := runner.Run(context.Background(), req)
			if err != nil {
				return fmt.Errorf("previewing migration: %w", err)
			}

			if copyReport {
				if err := clipboard.WriteAll(PlainReport(report, true)); err != nil {
					return fmt.Errorf("copying report: %w", err)
				}
			}

			if interactive {
				if !isTerminal() {
					return errors.New("interactive preview needs a terminal")
				}
				th, err := theme.Load(a.config.UI.Theme)
				if err != nil {
					return err
				}
				return tui.Run(tui.NewComparison(report, a.options()), th)
			}

			out := cmd.OutOrStdout()
			WriteReport(out, report, true)
			if copyReport {
				fmt.Fprintln(out, formatMuted("Report copied to clipboard."))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the result in a terminal UI")
	cmd.Flags().BoolVar(&copyReport, "copy", false, "Copy the report to the clipboard")
	return cmd
}
