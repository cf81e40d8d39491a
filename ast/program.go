package ast

import "litecc/typesys"

// Variable is a declared name: a global, a local, or a function
// parameter (parameters are locals with Offset assigned like any
// other). Variables are arena-allocated by the parser so every VarExpr
// referencing the same declaration shares one *Variable, which is
// where codegen later reads the assigned stack Offset from.
type Variable struct {
	Name    string
	Typ     *typesys.Type
	IsLocal bool
	Offset  int // byte offset from rbp for locals; unused for globals
}

// Function is one parsed function definition: its parameters (which
// also appear at the front of Locals), its locals in declaration
// order, its body, and the total stack frame size codegen reserves on
// entry.
type Function struct {
	Name      string
	Params    []*Variable
	Locals    []*Variable
	Body      []Stmt
	StackSize int // bytes reserved below rbp, a multiple of 8
}

// Program is the parsed translation unit: every top-level function and
// every file-scope global variable, in source order.
type Program struct {
	Functions []*Function
	Globals   []*Variable
}
