package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/module"
	"github.com/hetu-lang/hetu/registry"
)

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "Validate a bytecode file and re-emit it to an output path",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "o",
			Usage:    "Output file path",
			Required: true,
		},
	},
	Action: compileAction,
}

// compileAction stands in for source compilation (no compiler front end
// ships in this build, see registry.ErrNoCompiler): it validates that <file>
// is already well-formed bytecode by decoding it through the same
// module.Cache path `run` uses, then re-serializes the decoded header,
// constant pools, and instruction stream to -o, exercising the bytecode
// writer independently of whatever produced the original file.
func compileAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return usageError("compile: missing <file>")
	}
	out := cmd.String("o")

	raw, err := os.ReadFile(file)
	if err != nil {
		return internalError("compile: %v", err)
	}

	r := registry.Init(registry.DefaultOptions())
	cache := module.NewCache()
	m, err := cache.LoadBytecode(file, raw, r.Version())
	if err != nil {
		if errors.Is(err, module.ErrBytecode) {
			return scriptError("compile: %s is not compiled bytecode", file)
		}
		return scriptError("compile: %v", err)
	}

	w := bytecode.NewWriter()
	w.WriteHeader(bytecode.Header{
		CompilerVersion: m.CompilerVersion,
		HasBytecode:     m.HasBytecodeVer,
		BytecodeVersion: m.BytecodeVersion,
		CompiledAtUtc:   m.CompiledAtUtc,
		CurrentFilename: m.CurrentFile,
		SourceType:      m.SourceType,
	})
	w.WriteConstantPools(*m.Reader.Pool())
	w.WriteInstructions(m.Instructions)

	if err := os.WriteFile(out, w.Bytes(), 0o644); err != nil {
		return internalError("compile: %v", err)
	}
	return nil
}
