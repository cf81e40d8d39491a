package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

var commandNames = map[string]bool{
	"help": true, "flags": true, "commands": true,
	"compile": true, "tokens": true, "ast": true, "repl": true,
}

// withDefaultSubcommand inserts "compile" as args[1] when the first
// argument isn't a known subcommand name, so a bare invocation like
// `litecc "int main(){return 0;}"` is shorthand for
// `litecc compile "int main(){return 0;}"`.
func withDefaultSubcommand(args []string) []string {
	if len(args) < 2 || commandNames[args[1]] {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], "compile")
	out = append(out, args[1:]...)
	return out
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&tokensCmd{}, "")
	subcommands.Register(&astCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	os.Args = withDefaultSubcommand(os.Args)

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
