// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -v, -config, -modules-dir, -version; the rest is the subcommand

package main

import (
	"flag"
	"fmt"

	"github.com/mauromedda/featuremod-go/internal/cli"
)

type cliArgs struct {
	verbose    bool
	config     string
	modulesDir string
	version    bool
	command    []string
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.BoolVar(&args.verbose, "v", false, "Verbose (debug) logging")
	flag.StringVar(&args.config, "config", "", "Read settings from this file instead of the global and project config")
	flag.StringVar(&args.modulesDir, "modules-dir", "", "Override the modules directory")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), cli.Usage)
		fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
		flag.PrintDefaults()
	}

	flag.Parse()
	args.command = flag.Args()
	return args
}
