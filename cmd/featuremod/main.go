// ABOUTME: CLI entry point for featuremod
// ABOUTME: Parses flags, loads settings, wires the app, and dispatches the subcommand

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/featuremod-go/internal/termfix"

	"github.com/mauromedda/featuremod-go/internal/app"
	"github.com/mauromedda/featuremod-go/internal/cli"
	"github.com/mauromedda/featuremod-go/internal/config"
	fmlog "github.com/mauromedda/featuremod-go/internal/log"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("featuremod %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args cliArgs) error {
	settings, err := loadSettings(args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := fmlog.ParseLevel(settings.LogLevel)
	if err != nil {
		fmlog.Warn("config: %v; using info", err)
	}
	if args.verbose {
		level = fmlog.LevelDebug
	}
	fmlog.SetLevel(level)

	a, err := app.New(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRunner(a).Run(ctx, args.command)
}

// loadSettings reads -config when given, otherwise the global and project
// files, then applies -modules-dir.
func loadSettings(args cliArgs) (*config.Settings, error) {
	var (
		settings *config.Settings
		err      error
	)
	if args.config != "" {
		if _, statErr := os.Stat(args.config); statErr != nil {
			return nil, statErr
		}
		settings, err = config.LoadFiles(args.config)
	} else {
		cwd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, fmt.Errorf("getting working directory: %w", wdErr)
		}
		settings, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	if args.modulesDir != "" {
		settings.ModulesDir = config.ExpandHome(args.modulesDir)
	}
	return settings, nil
}
