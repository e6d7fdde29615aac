package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hetu-lang/hetu/module"
	"github.com/hetu-lang/hetu/registry"
)

var formatCommand = &cli.Command{
	Name:      "format",
	Usage:     "Disassemble a bytecode file to a readable instruction listing",
	ArgsUsage: "<file>",
	Action:    formatAction,
}

// formatAction plays the role spec.md's CLI surface reserves for `format`:
// with no surviving source formatter (this build has no pretty-printer for
// source text, since it has no parser either; see registry.ErrNoCompiler),
// "formatting" a hetu artifact means rendering its one canonical textual
// form, the disassembled instruction stream, the way `objdump`-style tools
// do for other bytecode formats.
func formatAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return usageError("format: missing <file>")
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return internalError("format: %v", err)
	}

	r := registry.Init(registry.DefaultOptions())
	cache := module.NewCache()
	m, err := cache.LoadBytecode(file, raw, r.Version())
	if err != nil {
		if errors.Is(err, module.ErrBytecode) {
			return scriptError("format: %s is not compiled bytecode", file)
		}
		return scriptError("format: %v", err)
	}

	fmt.Printf("; %s  compiledAt=%s  sourceType=%d\n", m.CurrentFile, m.CompiledAtUtc, m.SourceType)
	for i, instr := range m.Instructions {
		fmt.Printf("%4d  %s\n", i, instr)
	}
	return nil
}
