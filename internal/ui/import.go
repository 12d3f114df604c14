package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/layoutfile"
)

func (a *App) importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import [layout_file]",
		Short: "Load a layout from a YAML file",
		Long: `Create the items of a YAML layout file and store its grid geometry.

The database must be empty unless --replace is given, which deletes every
stored item first.

Example:
  gridshift import ~/layouts/phone.yaml --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			f, err := layoutfile.Read(path)
			if err != nil {
				return err
			}

			count, err := importLayout(context.Background(), a.repo, f, replace)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items for %s from %s\n", count, f.Geometry(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Delete the stored layout before importing")
	return cmd
}

// importLayout stores f in one transaction; a failure leaves the database
// as it was.
func importLayout(ctx context.Context, repo layout.Repository, f *layoutfile.File, replace bool) (int, error) {
	var count int
	err := repo.InTx(ctx, func(tx layout.Tx) error {
		if replace {
			if err := tx.DeleteAllItems(ctx); err != nil {
				return fmt.Errorf("clearing layout: %w", err)
			}
		} else {
			n, err := tx.CountItems(ctx)
			if err != nil {
				return fmt.Errorf("counting items: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("database already holds %d items, use --replace to overwrite", n)
			}
		}

		var err error
		count, err = layoutfile.Import(ctx, tx, f)
		if err != nil {
			return fmt.Errorf("importing layout: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (a *App) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [layout_file]",
		Short: "Write the stored layout as YAML",
		Long: `Write the stored layout and geometry as a YAML layout file, or to
standard output when no file is given.

Example:
  gridshift export backup.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			f, err := exportLayout(context.Background(), a.repo, a.config.Target())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				data, err := layoutfile.Marshal(f)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if err := layoutfile.Write(path, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", f.Count(), path)
			return nil
		},
	}
}

// exportLayout reads the stored layout. fallback is used when no geometry
// was stored.
func exportLayout(ctx context.Context, repo layout.Repository, fallback layout.Geometry) (*layoutfile.File, error) {
	g, ok, err := repo.Geometry(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}
	if !ok {
		g = fallback
	}
	items, err := repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return layoutfile.FromItems(g, items), nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
