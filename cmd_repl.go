package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"litecc/codegen"
)

// replCmd reads program text interactively and compiles it a chunk at
// a time: a chunk is ready once its braces balance, so a function
// definition can be typed across several lines before it's compiled
// and its assembly printed.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "interactively compile program text to assembly" }
func (*replCmd) Usage() string {
	return `repl:
  Reads program text line by line; once braces balance, compiles the
  accumulated text and prints its assembly.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

const (
	promptReady      = "litecc> "
	promptContinuing = "   ...> "
)

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(promptReady)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buf strings.Builder
	depth := 0

	for {
		line, err := rl.Readline()
		if err != nil {
			return subcommands.ExitSuccess
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		if !isChunkReady(buf.String(), depth) {
			rl.SetPrompt(promptContinuing)
			continue
		}
		rl.SetPrompt(promptReady)

		src := buf.String()
		buf.Reset()
		depth = 0

		prog, err := compileSource(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		codegen.New(os.Stdout).Generate(prog)
	}
}

// isChunkReady reports whether buf has balanced braces (depth <= 0)
// and holds at least one non-whitespace character.
func isChunkReady(buf string, depth int) bool {
	return depth <= 0 && strings.TrimSpace(buf) != ""
}
