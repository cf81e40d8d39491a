package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"litecc/codegen"
)

// compileCmd is the compiler's primary entry point: one source string
// in, Intel-syntax x86-64 assembly out.
type compileCmd struct {
	outPath string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "compile a source string to x86-64 assembly" }
func (*compileCmd) Usage() string {
	return `compile [-o file] "<source-string>" | @path:
  Compiles the given program text and writes Intel-syntax x86-64
  assembly to stdout, or to -o's file. A leading '@' on the argument
  means "read the source from this path" instead of using the literal
  argument text. Exits non-zero with a diagnostic on stderr if the
  program is lexically, syntactically, or semantically invalid.
`
}
func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outPath, "o", "", "write assembly to this file instead of stdout")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one argument: the source string")
		return subcommands.ExitUsageError
	}

	src, err := resolveSource(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	prog, err := compileSource(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.outPath != "" {
		f, err := os.Create(c.outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		out = f
	}

	codegen.New(out).Generate(prog)
	return subcommands.ExitSuccess
}
