// Package codegen walks a typed ast.Program and emits Intel-syntax
// x86-64 assembly for the GNU assembler. It is a stack machine: every
// expression leaves exactly one value on the CPU stack, and every
// statement that doesn't need the expression's value pops it back off.
package codegen

import (
	"fmt"
	"io"

	"litecc/ast"
)

// argRegs are the System V AMD64 integer argument registers, in order.
var argRegs = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Generator emits assembly for one Program to a single output sink.
// labelSeq is the monotonically increasing counter, shared by every
// function this Generator emits, behind every ".L.<tag>.<n>" label; curFunc names the function currently
// being emitted, for its ".L.return.<name>" epilogue label.
type Generator struct {
	out      io.Writer
	labelSeq int
	curFunc  string
}

// New creates a Generator that writes to out.
func New(out io.Writer) *Generator {
	return &Generator{out: out}
}

// Generate emits the full assembly listing for prog: the directive
// header, a .data section with one zeroed slot per global, and a .text
// section with one prologue/body/epilogue per function.
func (g *Generator) Generate(prog *ast.Program) {
	g.emit(".intel_syntax noprefix")

	g.emit(".data")
	for _, v := range prog.Globals {
		g.emit("%s:", v.Name)
		g.emit("  .zero %d", v.Typ.Size)
	}

	g.emit(".text")
	for _, fn := range prog.Functions {
		g.genFunction(fn)
	}
}

func (g *Generator) emit(format string, args ...any) {
	fmt.Fprintf(g.out, format+"\n", args...)
}

func (g *Generator) nextLabel() int {
	g.labelSeq++
	return g.labelSeq
}

// genFunction emits one function's prologue, materializes its
// parameters into their stack slots, emits its body, and closes with
// the shared return label and epilogue.
func (g *Generator) genFunction(fn *ast.Function) {
	g.curFunc = fn.Name

	g.emit(".global %s", fn.Name)
	g.emit("%s:", fn.Name)
	g.emit("  push rbp")
	g.emit("  mov rbp, rsp")
	g.emit("  sub rsp, %d", fn.StackSize)

	for i, param := range fn.Params {
		g.emit("  mov [rbp-%d], %s", param.Offset, argRegs[i])
	}

	for _, stmt := range fn.Body {
		g.genStmt(stmt)
	}

	g.emit(".L.return.%s:", fn.Name)
	g.emit("  mov rsp, rbp")
	g.emit("  pop rbp")
	g.emit("  ret")
}

// genAddr pushes the address of an lvalue expression: a local's frame
// slot, a global's label, or (for "*e") e's own value, which is
// already the address being dereferenced.
func (g *Generator) genAddr(e ast.Expr) {
	switch n := e.(type) {
	case ast.VarExpr:
		if n.Var.IsLocal {
			g.emit("  lea rax, [rbp-%d]", n.Var.Offset)
			g.emit("  push rax")
		} else {
			g.emit("  push offset %s", n.Var.Name)
		}
	case ast.DerefExpr:
		g.genExpr(n.X)
	default:
		panic(fmt.Sprintf("codegen: %T is not an lvalue", e))
	}
}

func (g *Generator) load() {
	g.emit("  pop rax")
	g.emit("  mov rax, [rax]")
	g.emit("  push rax")
}

func (g *Generator) store() {
	g.emit("  pop rdi")
	g.emit("  pop rax")
	g.emit("  mov [rax], rdi")
	g.emit("  push rdi")
}

// genStmt emits one statement. Every statement form either consumes
// whatever its sub-expressions left on the stack or discards it, so
// the stack is exactly empty again once genStmt returns (loop/if
// conditions are the one case handled inline by genStmt itself).
func (g *Generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case ast.ExprStmt:
		g.genExpr(n.X)
		g.emit("  add rsp, 8")

	case ast.BlockStmt:
		for _, c := range n.Stmts {
			g.genStmt(c)
		}

	case ast.ReturnStmt:
		g.genExpr(n.X)
		g.emit("  pop rax")
		g.emit("  jmp .L.return.%s", g.curFunc)

	case ast.IfStmt:
		seq := g.nextLabel()
		g.genExpr(n.Cond)
		g.emit("  pop rax")
		g.emit("  cmp rax, 0")
		if n.Else != nil {
			g.emit("  je .L.else.%d", seq)
			g.genStmt(n.Then)
			g.emit("  jmp .L.end.%d", seq)
			g.emit(".L.else.%d:", seq)
			g.genStmt(n.Else)
			g.emit(".L.end.%d:", seq)
		} else {
			g.emit("  je .L.end.%d", seq)
			g.genStmt(n.Then)
			g.emit(".L.end.%d:", seq)
		}

	case ast.WhileStmt:
		seq := g.nextLabel()
		g.emit(".L.begin.%d:", seq)
		g.genExpr(n.Cond)
		g.emit("  pop rax")
		g.emit("  cmp rax, 0")
		g.emit("  je .L.end.%d", seq)
		g.genStmt(n.Body)
		g.emit("  jmp .L.begin.%d", seq)
		g.emit(".L.end.%d:", seq)

	case ast.ForStmt:
		seq := g.nextLabel()
		if n.Init != nil {
			g.genStmt(n.Init)
		}
		g.emit(".L.begin.%d:", seq)
		if n.Cond != nil {
			g.genExpr(n.Cond)
			g.emit("  pop rax")
			g.emit("  cmp rax, 0")
			g.emit("  je .L.end.%d", seq)
		}
		g.genStmt(n.Body)
		if n.Post != nil {
			g.genStmt(n.Post)
		}
		g.emit("  jmp .L.begin.%d", seq)
		g.emit(".L.end.%d:", seq)

	default:
		panic(fmt.Sprintf("codegen: unhandled statement %T", s))
	}
}

// genExpr emits code that leaves exactly one value — the expression's
// result — on top of the stack.
func (g *Generator) genExpr(e ast.Expr) {
	switch n := e.(type) {
	case ast.NumberExpr:
		g.emit("  push %d", n.Value)

	case ast.VarExpr:
		g.genAddr(n)
		if !n.Var.Typ.IsArray() {
			g.load()
		}

	case ast.AddrExpr:
		g.genAddr(n.X)

	case ast.DerefExpr:
		g.genExpr(n.X)
		if !n.Typ.IsArray() {
			g.load()
		}

	case ast.AssignExpr:
		g.genAddr(n.Target)
		g.genExpr(n.Value)
		g.store()

	case ast.CallExpr:
		g.genCall(n)

	case ast.BinaryExpr:
		g.genBinary(n)

	default:
		panic(fmt.Sprintf("codegen: unhandled expression %T", e))
	}
}

// genCall pushes each argument left to right, then pops them into the
// argument registers in reverse order so argument 0 ends up in rdi,
// aligns the stack to 16 bytes around the call per the System V ABI,
// zeroes rax per the variadic convention, and pushes the result.
func (g *Generator) genCall(n ast.CallExpr) {
	for _, arg := range n.Args {
		g.genExpr(arg)
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.emit("  pop %s", argRegs[i])
	}

	seq := g.nextLabel()
	g.emit("  mov rax, rsp")
	g.emit("  and rax, 15")
	g.emit("  jnz .L.call.%d", seq)
	g.emit("  mov rax, 0")
	g.emit("  call %s", n.Callee)
	g.emit("  jmp .L.end.%d", seq)
	g.emit(".L.call.%d:", seq)
	g.emit("  sub rsp, 8")
	g.emit("  mov rax, 0")
	g.emit("  call %s", n.Callee)
	g.emit("  add rsp, 8")
	g.emit(".L.end.%d:", seq)
	g.emit("  push rax")
}

// genBinary emits both operands then dispatches on the operator. Plain
// arithmetic and comparisons pop rdi/rax in that order so "rax op rdi"
// reads left-to-right; PtrAdd/PtrSub scale rdi by the pointee size
// first, and PtrDiff divides the raw byte difference by it.
func (g *Generator) genBinary(n ast.BinaryExpr) {
	g.genExpr(n.Left)
	g.genExpr(n.Right)
	g.emit("  pop rdi")
	g.emit("  pop rax")

	switch n.Op {
	case ast.OpAdd:
		g.emit("  add rax, rdi")
	case ast.OpSub:
		g.emit("  sub rax, rdi")
	case ast.OpMul:
		g.emit("  imul rax, rdi")
	case ast.OpDiv:
		g.emit("  cqo")
		g.emit("  idiv rdi")
	case ast.OpEq:
		g.emit("  cmp rax, rdi")
		g.emit("  sete al")
		g.emit("  movzb rax, al")
	case ast.OpNe:
		g.emit("  cmp rax, rdi")
		g.emit("  setne al")
		g.emit("  movzb rax, al")
	case ast.OpLt:
		g.emit("  cmp rax, rdi")
		g.emit("  setl al")
		g.emit("  movzb rax, al")
	case ast.OpLe:
		g.emit("  cmp rax, rdi")
		g.emit("  setle al")
		g.emit("  movzb rax, al")
	case ast.OpPtrAdd:
		g.emit("  imul rdi, %d", n.ElemSize)
		g.emit("  add rax, rdi")
	case ast.OpPtrSub:
		g.emit("  imul rdi, %d", n.ElemSize)
		g.emit("  sub rax, rdi")
	case ast.OpPtrDiff:
		g.emit("  sub rax, rdi")
		g.emit("  cqo")
		g.emit("  mov rdi, %d", n.ElemSize)
		g.emit("  idiv rdi")
	default:
		panic(fmt.Sprintf("codegen: unhandled binary operator %v", n.Op))
	}

	g.emit("  push rax")
}
