package parser

import (
	"testing"

	"litecc/ast"
	"litecc/lexer"
)

func parse(src string) *ast.Program {
	toks := lexer.New(src).Scan()
	return Parse(src, toks)
}

func TestFunctionAndGlobalDisambiguation(t *testing.T) {
	prog := parse("int g; int main(){ return g; }")
	if len(prog.Globals) != 1 || prog.Globals[0].Name != "g" {
		t.Fatalf("globals = %+v", prog.Globals)
	}
	if len(prog.Functions) != 1 || prog.Functions[0].Name != "main" {
		t.Fatalf("functions = %+v", prog.Functions)
	}
}

func TestLocalOffsetsAndStackSize(t *testing.T) {
	prog := parse("int main(){ int a; int b; return a+b; }")
	fn := prog.Functions[0]
	if len(fn.Locals) != 2 {
		t.Fatalf("expected 2 locals, got %d", len(fn.Locals))
	}
	if fn.Locals[0].Offset != 8 || fn.Locals[1].Offset != 16 {
		t.Fatalf("offsets = %d, %d", fn.Locals[0].Offset, fn.Locals[1].Offset)
	}
	if fn.StackSize != 16 {
		t.Fatalf("StackSize = %d, want 16", fn.StackSize)
	}
}

func TestDeclarationWithInitializerDesugarsToAssign(t *testing.T) {
	prog := parse("int main(){ int a = 5; return a; }")
	fn := prog.Functions[0]
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements (assign + return), got %d", len(fn.Body))
	}
	es, ok := fn.Body[0].(ast.ExprStmt)
	if !ok {
		t.Fatalf("first statement is %T, want ast.ExprStmt", fn.Body[0])
	}
	if _, ok := es.X.(ast.AssignExpr); !ok {
		t.Fatalf("first statement's expr is %T, want ast.AssignExpr", es.X)
	}
}

func TestDeclarationWithoutInitializerProducesNoStatement(t *testing.T) {
	prog := parse("int main(){ int a; return 0; }")
	fn := prog.Functions[0]
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body))
	}
	if len(fn.Locals) != 1 {
		t.Fatalf("expected 1 local, got %d", len(fn.Locals))
	}
}

func TestPointerArithmeticRewrite(t *testing.T) {
	prog := parse("int main(){ int *p; int a; return p+1; }")
	fn := prog.Functions[0]
	ret := fn.Body[len(fn.Body)-1].(ast.ReturnStmt)
	bin, ok := ret.X.(ast.BinaryExpr)
	if !ok {
		t.Fatalf("return value is %T, want ast.BinaryExpr", ret.X)
	}
	if bin.Op != ast.OpPtrAdd {
		t.Fatalf("Op = %v, want OpPtrAdd", bin.Op)
	}
	if bin.ElemSize != 8 {
		t.Fatalf("ElemSize = %d, want 8", bin.ElemSize)
	}
}

func TestPointerDiffDivides(t *testing.T) {
	prog := parse("int main(){ int a[4]; return &a[3]-&a[0]; }")
	fn := prog.Functions[0]
	ret := fn.Body[len(fn.Body)-1].(ast.ReturnStmt)
	bin, ok := ret.X.(ast.BinaryExpr)
	if !ok || bin.Op != ast.OpPtrDiff {
		t.Fatalf("return value = %+v, want OpPtrDiff", ret.X)
	}
	if bin.ElemSize != 8 {
		t.Fatalf("ElemSize = %d, want 8", bin.ElemSize)
	}
}

func TestRelationalGreaterThanSwapsOperands(t *testing.T) {
	prog := parse("int main(){ int a; int b; return a>b; }")
	fn := prog.Functions[0]
	ret := fn.Body[len(fn.Body)-1].(ast.ReturnStmt)
	bin, ok := ret.X.(ast.BinaryExpr)
	if !ok || bin.Op != ast.OpLt {
		t.Fatalf("return value = %+v, want OpLt (rewritten from '>')", ret.X)
	}
	left := bin.Left.(ast.VarExpr)
	right := bin.Right.(ast.VarExpr)
	if left.Var.Name != "b" || right.Var.Name != "a" {
		t.Fatalf("operands not swapped: left=%s right=%s", left.Var.Name, right.Var.Name)
	}
}

func TestArrayIndexRewritesToDerefOfAdd(t *testing.T) {
	prog := parse("int main(){ int a[3]; return a[1]; }")
	fn := prog.Functions[0]
	ret := fn.Body[len(fn.Body)-1].(ast.ReturnStmt)
	deref, ok := ret.X.(ast.DerefExpr)
	if !ok {
		t.Fatalf("return value is %T, want ast.DerefExpr", ret.X)
	}
	if _, ok := deref.X.(ast.BinaryExpr); !ok {
		t.Fatalf("deref target is %T, want ast.BinaryExpr (a+i)", deref.X)
	}
}

func TestArrayDecaysOnAddressOf(t *testing.T) {
	prog := parse("int main(){ int a[4]; int *q; q = a; q = &a; return 0; }")
	fn := prog.Functions[0]
	asg := fn.Body[1].(ast.ExprStmt).X.(ast.AssignExpr)
	addr, ok := asg.Value.(ast.AddrExpr)
	if !ok {
		t.Fatalf("assigned value is %T, want ast.AddrExpr", asg.Value)
	}
	if !addr.Typ.IsPointer() || !addr.Typ.Base.IsInt() {
		t.Fatalf("&a has type %+v, want pointer to int", addr.Typ)
	}
}

func TestSizeofReturnsConstant(t *testing.T) {
	prog := parse("int main(){ int a; return sizeof(a); }")
	fn := prog.Functions[0]
	ret := fn.Body[len(fn.Body)-1].(ast.ReturnStmt)
	num, ok := ret.X.(ast.NumberExpr)
	if !ok || num.Value != 8 {
		t.Fatalf("sizeof(int) = %+v, want NumberExpr{8}", ret.X)
	}
}

func TestAssignToArrayPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic assigning to an array")
		}
	}()
	parse("int main(){ int a[3]; int b[3]; a = b; return 0; }")
}

func TestUndefinedVariablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on undefined variable")
		}
	}()
	parse("int main(){ return undefined_name; }")
}

func TestUnaryMinusDesugarsToZeroMinusX(t *testing.T) {
	prog := parse("int main(){ return -5; }")
	fn := prog.Functions[0]
	ret := fn.Body[0].(ast.ReturnStmt)
	bin, ok := ret.X.(ast.BinaryExpr)
	if !ok || bin.Op != ast.OpSub {
		t.Fatalf("return value = %+v, want OpSub", ret.X)
	}
	if n, ok := bin.Left.(ast.NumberExpr); !ok || n.Value != 0 {
		t.Fatalf("left = %+v, want NumberExpr{0}", bin.Left)
	}
}

func TestMultiDimensionalArrayNesting(t *testing.T) {
	prog := parse("int main(){ int a[2][3]; return a[0][0]; }")
	fn := prog.Functions[0]
	if fn.Locals[0].Typ.Size != 2*3*8 {
		t.Fatalf("array size = %d, want 48", fn.Locals[0].Typ.Size)
	}
	typ := fn.Locals[0].Typ
	if typ.Length != 2 || !typ.Base.IsArray() || typ.Base.Length != 3 {
		t.Fatalf("array type = %+v, want 2 rows of 3 ints", typ)
	}
}

func TestFunctionCallArguments(t *testing.T) {
	prog := parse("int add(int a, int b){ return a+b; } int main(){ return add(1,2); }")
	if len(prog.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(prog.Functions))
	}
	fn := prog.Functions[1]
	ret := fn.Body[0].(ast.ReturnStmt)
	call, ok := ret.X.(ast.CallExpr)
	if !ok || call.Callee != "add" || len(call.Args) != 2 {
		t.Fatalf("return value = %+v, want CallExpr(add, 2 args)", ret.X)
	}
}
