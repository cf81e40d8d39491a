package main

import (
	"litecc/ast"
	"litecc/diagnostic"
	"litecc/lexer"
	"litecc/parser"
	"litecc/token"
)

// Every stage aborts a malformed program with panic(*diagnostic.Error)
// rather than a Go error return (see diagnostic.Fail): there is never
// anything useful for a caller to do but stop. These two helpers are
// the only places that recover, turning the panic back into a regular
// error for the CLI commands to print and exit non-zero on. A panic
// of any other shape is a real bug and is left to propagate.

func tokenizeSource(src string) (toks []token.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			if diagErr, ok := r.(*diagnostic.Error); ok {
				err = diagErr
				return
			}
			panic(r)
		}
	}()
	toks = lexer.New(src).Scan()
	return toks, nil
}

func compileSource(src string) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if diagErr, ok := r.(*diagnostic.Error); ok {
				err = diagErr
				return
			}
			panic(r)
		}
	}()
	toks := lexer.New(src).Scan()
	prog = parser.Parse(src, toks)
	return prog, nil
}
