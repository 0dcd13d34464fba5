// ABOUTME: Subcommand dispatch for featuremod: install, status, list, info, remove, load
// ABOUTME: Adapts output to the terminal: styled tables and a live progress view on a TTY

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mauromedda/featuremod-go/internal/app"
)

// Usage lists the subcommands.
const Usage = `usage: featuremod [flags] <command> [args]

commands:
  install [module...]  install modules and wait for the outcome; with no
                       names, install the eager modules not yet installed
  status               show every catalog module and its install state
  list                 list installed modules
  info <module>        show a module's descriptor and documentation
  remove <module...>   uninstall modules
  load <module>        install check, native load, and entry point listing`

// Runner executes subcommands against an App.
type Runner struct {
	App *app.App
	Out io.Writer
	// TTY enables styled output and the interactive progress view.
	TTY bool
	// Width is the terminal width used for truncation and wrapping.
	Width int
}

// NewRunner creates a runner writing to stdout, detecting whether it is a terminal.
func NewRunner(a *app.App) *Runner {
	r := &Runner{App: a, Out: os.Stdout, Width: 80}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		r.TTY = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			r.Width = w
		}
	}
	return r
}

// Run dispatches args[0] with the remaining arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", Usage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "install":
		return r.install(ctx, rest)
	case "status":
		return r.status()
	case "list":
		return r.list()
	case "info":
		return r.info(rest)
	case "remove":
		return r.remove(rest)
	case "load":
		return r.load(ctx, rest)
	case "help":
		fmt.Fprintln(r.Out, Usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q: expected %s", cmd,
			strings.Join([]string{"install", "status", "list", "info", "remove", "load"}, ", "))
	}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}
