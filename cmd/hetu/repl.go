package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/registry"
	"github.com/hetu-lang/hetu/values"
)

var replCommand = &cli.Command{
	Name:   "repl",
	Usage:  "Interactive shell over a persistent namespace",
	Action: replAction,
}

// replAction reworks the teacher's bufio.Scanner "-a" shell
// (cmd/hey/main.go's runInteractiveShell/executeREPLCode) onto
// chzyer/readline, kept persistent across inputs via one long-lived
// registry.Registry. Since this build has no source compiler (see
// registry.ErrNoCompiler), the prompt accepts `:`-prefixed commands against
// already-compiled bytecode rather than raw source text — the closest
// equivalent "successive top-level entries" a bytecode-only host can offer.
func replAction(ctx context.Context, cmd *cli.Command) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hetu> ",
		HistoryFile:     filepath.Join(os.TempDir(), "hetu_repl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return internalError("repl: %v", err)
	}
	defer rl.Close()

	r, err := newRegistry()
	if err != nil {
		return err
	}
	fmt.Println("hetu repl — :load <file>, :invoke <name> [args...], :vars, :quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return internalError("repl: %v", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := replDispatch(r, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func replDispatch(r *registry.Registry, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		os.Exit(exitOK)
	case ":load":
		if len(fields) < 2 {
			return fmt.Errorf(":load requires a file path")
		}
		raw, err := os.ReadFile(fields[1])
		if err != nil {
			return err
		}
		_, err = r.LoadBytecode(raw, fields[1], true, "", nil, nil)
		return err
	case ":invoke":
		if len(fields) < 2 {
			return fmt.Errorf(":invoke requires a function name")
		}
		args := make([]*values.Value, 0, len(fields)-2)
		for _, a := range fields[2:] {
			args = append(args, values.NewString(a))
		}
		result, err := r.Invoke(fields[1], args, nil)
		if err != nil {
			return err
		}
		if result != nil && !result.IsNull() {
			fmt.Println(result.String())
		}
		return nil
	case ":vars":
		for _, name := range r.EC.Global.SymbolNames() {
			fmt.Println(name)
		}
		return nil
	default:
		return fmt.Errorf("unrecognized command %q (try :load, :invoke, :vars, :quit)", fields[0])
	}
	return nil
}
