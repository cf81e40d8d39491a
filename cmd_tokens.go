package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// tokensCmd exposes the tokenizer stage on its own, mainly useful for
// debugging the lexer without running the rest of the pipeline.
type tokensCmd struct{}

func (*tokensCmd) Name() string     { return "tokens" }
func (*tokensCmd) Synopsis() string { return "print the token stream for a source string" }
func (*tokensCmd) Usage() string {
	return `tokens "<source-string>" | @path:
  Lexes the given program text and dumps the token stream (kind,
  lexeme, line, column) as text, one per line. A leading '@' on the
  argument means "read the source from this path".
`
}
func (*tokensCmd) SetFlags(f *flag.FlagSet) {}

func (c *tokensCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	toks, err := tokenizeSource(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, tok := range toks {
		fmt.Printf("%s %q %d:%d\n", tok.Kind, tok.Text, tok.Line, tok.Column)
	}
	return subcommands.ExitSuccess
}
