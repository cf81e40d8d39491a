package main

import (
	"fmt"
	"os"
	"strings"
)

// resolveSource implements the CLI's "<source-or-@file>" convention:
// a leading '@' means the rest of the argument is a path to read the
// program text from, recovering original_source/main.c's
// read-from-argv[1]-path convention without breaking the core
// contract that the compiler takes a single source string.
func resolveSource(arg string) (string, error) {
	path, isFile := strings.CutPrefix(arg, "@")
	if !isFile {
		return arg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
