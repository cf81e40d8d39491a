package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"litecc/ast"
)

// exprToJSON converts one Expr into a JSON-friendly map/slice/scalar value
// by a type switch over the concrete node kinds, the Go-idiomatic
// replacement for walking the tree through a Visitor.
func exprToJSON(e ast.Expr) any {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case ast.NumberExpr:
		return map[string]any{"node": "Number", "value": n.Value}
	case ast.VarExpr:
		return map[string]any{"node": "Var", "name": n.Var.Name}
	case ast.AssignExpr:
		return map[string]any{"node": "Assign", "target": exprToJSON(n.Target), "value": exprToJSON(n.Value)}
	case ast.AddrExpr:
		return map[string]any{"node": "Addr", "x": exprToJSON(n.X)}
	case ast.DerefExpr:
		return map[string]any{"node": "Deref", "x": exprToJSON(n.X)}
	case ast.CallExpr:
		args := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, exprToJSON(a))
		}
		return map[string]any{"node": "Call", "callee": n.Callee, "args": args}
	case ast.BinaryExpr:
		return map[string]any{
			"node":  "Binary",
			"op":    binaryOpName(n.Op),
			"left":  exprToJSON(n.Left),
			"right": exprToJSON(n.Right),
		}
	default:
		return map[string]any{"node": fmt.Sprintf("%T", e)}
	}
}

func binaryOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpPtrAdd:
		return "ptr+"
	case ast.OpPtrSub:
		return "ptr-"
	case ast.OpPtrDiff:
		return "ptrdiff"
	default:
		return "?"
	}
}

func stmtToJSON(s ast.Stmt) any {
	switch n := s.(type) {
	case ast.ExprStmt:
		return map[string]any{"node": "ExprStmt", "x": exprToJSON(n.X)}
	case ast.BlockStmt:
		stmts := make([]any, 0, len(n.Stmts))
		for _, c := range n.Stmts {
			stmts = append(stmts, stmtToJSON(c))
		}
		return map[string]any{"node": "Block", "stmts": stmts}
	case ast.IfStmt:
		var elseVal any
		if n.Else != nil {
			elseVal = stmtToJSON(n.Else)
		}
		return map[string]any{"node": "If", "cond": exprToJSON(n.Cond), "then": stmtToJSON(n.Then), "else": elseVal}
	case ast.WhileStmt:
		return map[string]any{"node": "While", "cond": exprToJSON(n.Cond), "body": stmtToJSON(n.Body)}
	case ast.ForStmt:
		return map[string]any{
			"node": "For",
			"init": stmtToJSONOrNil(n.Init),
			"cond": exprToJSON(n.Cond),
			"post": stmtToJSONOrNil(n.Post),
			"body": stmtToJSON(n.Body),
		}
	case ast.ReturnStmt:
		return map[string]any{"node": "Return", "x": exprToJSON(n.X)}
	default:
		return map[string]any{"node": fmt.Sprintf("%T", s)}
	}
}

func stmtToJSONOrNil(s ast.Stmt) any {
	if s == nil {
		return nil
	}
	return stmtToJSON(s)
}

func functionToJSON(fn *ast.Function) any {
	params := make([]any, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, p.Name)
	}
	body := make([]any, 0, len(fn.Body))
	for _, s := range fn.Body {
		body = append(body, stmtToJSON(s))
	}
	return map[string]any{
		"node":      "Function",
		"name":      fn.Name,
		"params":    params,
		"stackSize": fn.StackSize,
		"body":      body,
	}
}

// ProgramToJSON renders a whole parsed Program as an indented JSON
// object with a "functions" key (each function with its body) and a
// "globals" key (the global names); encoding/json writes the keys in
// that sorted order.
func ProgramToJSON(prog *ast.Program) (string, error) {
	globals := make([]any, 0, len(prog.Globals))
	for _, g := range prog.Globals {
		globals = append(globals, g.Name)
	}
	functions := make([]any, 0, len(prog.Functions))
	for _, fn := range prog.Functions {
		functions = append(functions, functionToJSON(fn))
	}
	doc := map[string]any{"globals": globals, "functions": functions}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteProgramJSON renders prog as JSON and writes it to path.
func WriteProgramJSON(prog *ast.Program, path string) error {
	s, err := ProgramToJSON(prog)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating AST file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		return fmt.Errorf("writing AST to file: %w", err)
	}
	return nil
}
