package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/gridshift/internal/config"
	"github.com/javiermolinar/gridshift/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The repository is opened lazily so config and version work without a database.
	app := ui.NewApp(nil, cfg)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
