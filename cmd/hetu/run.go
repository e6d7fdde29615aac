package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/registry"
	"github.com/hetu-lang/hetu/values"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Load and execute a compiled bytecode file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "invoke",
			Usage: "Call this top-level function after the module runs, passing remaining args as strings",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return usageError("run: missing <file>")
	}

	r, err := newRegistry()
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return internalError("run: %v", err)
	}

	invoke := cmd.String("invoke")
	var args []*values.Value
	if invoke != "" {
		for _, a := range cmd.Args().Tail() {
			args = append(args, values.NewString(a))
		}
	}

	result, err := r.LoadBytecode(raw, file, true, invoke, args, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNoCompiler) {
			return scriptError("run: %s is not compiled bytecode", file)
		}
		return scriptError("run: %v", err)
	}
	if invoke != "" && result != nil && !result.IsNull() {
		fmt.Println(result.String())
	}
	return nil
}
