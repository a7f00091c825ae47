// Package cli parses command-line arguments for the todo client and
// dispatches to the matching command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"todoapp/internal/api"
	"todoapp/internal/exitcode"
	"todoapp/internal/sync"
)

// Dispatcher routes subcommands to the reconciler. The TUI launcher is
// injected so this package stays terminal-free.
type Dispatcher struct {
	rec *sync.Reconciler
	tui func(ctx context.Context) error
}

func NewDispatcher(rec *sync.Reconciler, tui func(ctx context.Context) error) *Dispatcher {
	return &Dispatcher{rec: rec, tui: tui}
}

// Run parses args and executes one command, returning the exit code. A bare
// invocation launches the interactive UI.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.runTUI(ctx, errOut)
	}

	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return cmd.run(ctx, d, args[1:], out, errOut)
}

func (d *Dispatcher) runTUI(ctx context.Context, errOut io.Writer) int {
	if d.tui == nil {
		fmt.Fprintln(errOut, "error: interactive mode is not available")
		return exitcode.UserError
	}
	if err := d.tui(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// codeFor maps an error to a CLI exit code.
func codeFor(err error) int {
	var reqErr *api.RequestError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return exitcode.AuthError
	case errors.Is(err, sync.ErrMissingCredentials),
		errors.Is(err, sync.ErrOpInFlight):
		return exitcode.UserError
	case errors.As(err, &reqErr) && reqErr.Status < 500:
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return codeFor(err)
}
