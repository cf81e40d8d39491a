package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"litecc/parser"
)

// astCmd exposes the parser stage on its own: useful for inspecting
// type attribution and the pointer-arithmetic/array-index rewrites
// without generating assembly.
type astCmd struct{}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "print the parsed AST for a source string as JSON" }
func (*astCmd) Usage() string {
	return `ast "<source-string>" | @path:
  Parses the given program text and prints its AST as indented JSON. A
  leading '@' on the argument means "read the source from this path".
`
}
func (*astCmd) SetFlags(f *flag.FlagSet) {}

func (c *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out, err := parser.ProgramToJSON(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}
