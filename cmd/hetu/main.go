// Command hetu is the host CLI described by spec.md's "CLI surface": run,
// compile, analyze, format, and an interactive repl, all operating on
// already-compiled bytecode files (this build ships no source-to-bytecode
// front end; see package registry's ErrNoCompiler). Modeled on the teacher's
// cmd/hey/main.go cli.Command tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/registry"
	"github.com/hetu-lang/hetu/registry/hostdb"
	"github.com/hetu-lang/hetu/version"
)

// Exit codes follow the spec's documented surface (sysexits.h-style): 0 ok,
// 64 bad usage, 65 script error, 70 internal error.
const (
	exitOK        = 0
	exitUsage     = 64
	exitDataError = 65
	exitSoftware  = 70
)

func main() {
	app := &cli.Command{
		Name:    "hetu",
		Usage:   "Embeddable stack-register bytecode VM",
		Version: version.Version(),
		Commands: []*cli.Command{
			runCommand,
			compileCommand,
			analyzeCommand,
			formatCommand,
			replCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hetu: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to one of the spec's documented exit
// codes: the code an *exitError carries, or exitSoftware for any other
// error.
func exitCodeFor(err error) int {
	if ek, ok := err.(*exitError); ok {
		return ek.code
	}
	return exitSoftware
}

// exitError pins a specific process exit code to an error, used by every
// subcommand action instead of calling os.Exit directly so cli.Command's own
// usage-error formatting still runs first.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// newRegistry builds the registry every run/analyze/repl subcommand
// executes bytecode against, with this CLI's host bindings installed —
// currently the hostdb.Database external class (§6 bindExternalClass demo).
func newRegistry() (*registry.Registry, error) {
	r := registry.Init(registry.DefaultOptions())
	if err := hostdb.Register(r); err != nil {
		return nil, internalError("registering hostdb: %v", err)
	}
	return r, nil
}

func usageError(format string, args ...interface{}) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func scriptError(format string, args ...interface{}) error {
	return &exitError{code: exitDataError, err: fmt.Errorf(format, args...)}
}

func internalError(format string, args ...interface{}) error {
	return &exitError{code: exitSoftware, err: fmt.Errorf(format, args...)}
}
