package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/gridshift/internal/config"
	"github.com/javiermolinar/gridshift/internal/db"
	"github.com/javiermolinar/gridshift/internal/debuglog"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/migrate"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    layout.Repository
	config  *config.Config
	log     *debuglog.Logger
	root    *cobra.Command
	debug   bool // Enable debug logging
	noColor bool
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repo is opened lazily from the configured database path.
func NewApp(repo layout.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg}

	a.root = &cobra.Command{
		Use:   "gridshift",
		Short: "Migrate launcher home screen layouts between grid sizes",
		Long: `Gridshift rearranges a launcher layout when the grid changes size.

It moves workspace items and widgets to fit the new grid, resizes widgets
down to their minimum span when needed, drops the least valuable hotseat
items, and commits everything in one transaction.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			log, err := debuglog.Open(a.debug, debuglog.DefaultPath)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+debuglog.DefaultPath+")")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.previewCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gridshift %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureRepo opens the configured database if no repository was given.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	path := a.config.Storage.DBPath
	if path == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	a.repo = repo
	return nil
}

// runner builds a migration runner from the configuration.
func (a *App) runner() (*migrate.Runner, error) {
	valid, err := a.config.Validity()
	if err != nil {
		return nil, err
	}
	return migrate.NewRunner(a.repo, valid, a.options(), a.log), nil
}

func (a *App) options() migrate.Options {
	return migrate.Options{
		FirstScreen:  a.config.Workspace.FirstScreen,
		ReservedRows: a.config.Workspace.ReservedRows,
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides the command line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Close releases the repository and the debug log.
func (a *App) Close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
	}
	if cerr := a.log.Close(); err == nil {
		err = cerr
	}
	return err
}
