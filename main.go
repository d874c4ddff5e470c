// Command panelcfg resolves comic panel generation settings from presets,
// page-layout slots and explicit overrides, and composes multi-condition
// generation requests from them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"comic_backend/core"
)

// errValidationFailed is returned by the validate command when a check fails.
var errValidationFailed = errors.New("validation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	code := exitCode(ctx, err)
	switch {
	case core.IsSignalExit(code):
		fmt.Fprintf(stderr, "Stopped: %s\n", core.ExitCodeName(code))
	case err != nil:
		fmt.Fprintln(stderr, "Error:", err)
	}
	return code
}

func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return core.ExitCodeSuccess
	case ctx.Err() != nil:
		return core.ExitCodeSIGINT
	case errors.Is(err, errValidationFailed):
		return core.ExitCodeValidation
	default:
		return core.ExitCodeFor(err)
	}
}
