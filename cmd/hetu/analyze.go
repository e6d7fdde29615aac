package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/registry"
)

var analyzeCommand = &cli.Command{
	Name:      "analyze",
	Usage:     "Load a bytecode file, run it, and report static/profiling information",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "profile",
			Usage: "Print the hot-spot/performance report after running",
		},
	},
	Action: analyzeAction,
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return usageError("analyze: missing <file>")
	}

	r, err := newRegistry()
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return internalError("analyze: %v", err)
	}

	if _, err := r.LoadBytecode(raw, file, true, "", nil, nil); err != nil {
		if errors.Is(err, registry.ErrNoCompiler) {
			return scriptError("analyze: %s is not compiled bytecode", file)
		}
		return scriptError("analyze: %v", err)
	}

	m, _ := r.Modules.Get(file)
	fmt.Printf("module %s: %d instructions, compiler %s\n", file, len(m.Instructions), m.CompilerVersion)

	if cmd.Bool("profile") {
		fmt.Println(r.EC.GetPerformanceReport())
		for _, spot := range r.EC.GetHotSpots(10) {
			fmt.Printf("  ip=%d count=%d\n", spot.IP, spot.Count)
		}
	}
	return nil
}
