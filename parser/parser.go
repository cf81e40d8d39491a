// Package parser implements the recursive-descent parser: a single
// mutable cursor over the token stream that builds a typed ast.Program
// directly, with no separate type-checking pass. Every expression node
// is attributed a typesys.Type at the point it is constructed, which
// is also where '+'/'-' get rewritten into their pointer-arithmetic
// forms (see buildAdd/buildSub) and where 'a[i]' is rewritten into
// '*(a+i)' (see postfix).
package parser

import (
	"litecc/arena"
	"litecc/ast"
	"litecc/diagnostic"
	"litecc/token"
	"litecc/typesys"
)

// Parser holds the token cursor, the arenas that own every Variable
// and Type it allocates, and the two symbol tables: the current
// function's locals (reset per function) and the program's globals
// (accumulated for the whole translation unit).
type Parser struct {
	tokens []token.Token
	pos    int
	source string

	varArena  *arena.Arena[ast.Variable]
	typeArena *arena.Arena[typesys.Type]

	locals  []*ast.Variable
	globals []*ast.Variable
}

// Parse consumes an already-scanned token stream and the original
// source (kept only so diagnostics can quote the offending line) and
// returns the parsed Program.
func Parse(source string, tokens []token.Token) *ast.Program {
	p := &Parser{
		tokens:    tokens,
		source:    source,
		varArena:  arena.New[ast.Variable](64),
		typeArena: arena.New[typesys.Type](64),
	}
	return p.program()
}

// ---- cursor ----

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *Parser) peek(op string) bool {
	return p.cur().Is(op)
}

func (p *Parser) consume(op string) bool {
	if p.peek(op) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) consumeIdent() (string, bool) {
	if p.cur().Kind == token.Identifier {
		name := p.cur().Text
		p.pos++
		return name, true
	}
	return "", false
}

func (p *Parser) expect(op string) {
	if p.consume(op) {
		return
	}
	t := p.cur()
	diagnostic.Fail(diagnostic.Syntax, t.Line, t.Column, p.source, "expected %q", op)
}

func (p *Parser) expectNumber() int64 {
	t := p.cur()
	if t.Kind != token.Number {
		diagnostic.Fail(diagnostic.Syntax, t.Line, t.Column, p.source, "expected a number")
	}
	p.pos++
	return t.Value
}

func (p *Parser) expectIdent() string {
	name, ok := p.consumeIdent()
	if !ok {
		t := p.cur()
		diagnostic.Fail(diagnostic.Syntax, t.Line, t.Column, p.source, "expected an identifier")
	}
	return name
}

// ---- symbol table ----

func (p *Parser) addLocal(name string, typ *typesys.Type) *ast.Variable {
	v := p.varArena.Alloc(ast.Variable{Name: name, Typ: typ, IsLocal: true})
	p.locals = append(p.locals, v)
	return v
}

func (p *Parser) addGlobal(name string, typ *typesys.Type) *ast.Variable {
	v := p.varArena.Alloc(ast.Variable{Name: name, Typ: typ, IsLocal: false})
	p.globals = append(p.globals, v)
	return v
}

// findVar resolves name to the innermost local/parameter, else a
// global, else nil. There is no block scoping, so "innermost" just
// means the most recently declared local with this name.
func (p *Parser) findVar(name string) *ast.Variable {
	for i := len(p.locals) - 1; i >= 0; i-- {
		if p.locals[i].Name == name {
			return p.locals[i]
		}
	}
	for i := len(p.globals) - 1; i >= 0; i-- {
		if p.globals[i].Name == name {
			return p.globals[i]
		}
	}
	return nil
}

// ---- type construction ----

func (p *Parser) newPointerType(base *typesys.Type) *typesys.Type {
	return p.typeArena.Alloc(typesys.Type{Kind: typesys.Pointer, Base: base, Size: 8})
}

func (p *Parser) newArrayType(base *typesys.Type, length int) *typesys.Type {
	return p.typeArena.Alloc(typesys.Type{Kind: typesys.Array, Base: base, Length: length, Size: base.Size * length})
}

// ---- grammar ----

func (p *Parser) program() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		base := p.basetype()
		name := p.expectIdent()
		if p.peek("(") {
			prog.Functions = append(prog.Functions, p.function(base, name))
		} else {
			prog.Globals = append(prog.Globals, p.globalVar(base, name))
		}
	}
	return prog
}

// basetype = "int" "*"*
func (p *Parser) basetype() *typesys.Type {
	t := p.cur()
	if !t.Is("int") {
		diagnostic.Fail(diagnostic.Syntax, t.Line, t.Column, p.source, "expected a type")
	}
	p.pos++
	typ := typesys.IntType
	for p.consume("*") {
		typ = p.newPointerType(typ)
	}
	return typ
}

// typeSuffix = ("[" num "]" typeSuffix)?
//
// Recurses before wrapping so that "a[2][3]" builds as
// Array(Array(int,3),2): an array of 2 rows, each an array of 3 ints.
func (p *Parser) typeSuffix(base *typesys.Type) *typesys.Type {
	if !p.consume("[") {
		return base
	}
	length := p.expectNumber()
	p.expect("]")
	elem := p.typeSuffix(base)
	return p.newArrayType(elem, int(length))
}

// globalVar = basetype ident typeSuffix ";"  (basetype/ident already consumed)
func (p *Parser) globalVar(base *typesys.Type, name string) *ast.Variable {
	typ := p.typeSuffix(base)
	p.expect(";")
	return p.addGlobal(name, typ)
}

// function = basetype ident "(" params? ")" "{" stmt* "}"
func (p *Parser) function(base *typesys.Type, name string) *ast.Function {
	p.locals = nil
	fn := &ast.Function{Name: name}

	p.expect("(")
	if !p.peek(")") {
		for {
			ptyp := p.basetype()
			pname := p.expectIdent()
			fn.Params = append(fn.Params, p.addLocal(pname, ptyp))
			if !p.consume(",") {
				break
			}
		}
	}
	p.expect(")")

	p.expect("{")
	for !p.consume("}") {
		if s := p.stmt(); s != nil {
			fn.Body = append(fn.Body, s)
		}
	}

	fn.Locals = p.locals
	assignOffsets(fn)
	return fn
}

// assignOffsets lays out each local at an increasing offset from rbp,
// in declaration order, and rounds the total frame size up to a
// multiple of 8. Every type's Size is already a multiple of 8, so the
// rounding is a formality rather than a correction.
func assignOffsets(fn *ast.Function) {
	offset := 0
	for _, v := range fn.Locals {
		offset += v.Typ.Size
		v.Offset = offset
	}
	fn.StackSize = alignTo(offset, 8)
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}

// stmt dispatches on the leading token. A bare declaration with no
// initializer returns nil: it only has a symbol-table side effect, and
// callers must skip a nil result rather than append it.
func (p *Parser) stmt() ast.Stmt {
	t := p.cur()
	switch {
	case t.Is("return"):
		p.pos++
		x := p.expr()
		p.expect(";")
		return ast.ReturnStmt{X: x}

	case t.Is("if"):
		p.pos++
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		then := p.stmt()
		var els ast.Stmt
		if p.consume("else") {
			els = p.stmt()
		}
		return ast.IfStmt{Cond: cond, Then: then, Else: els}

	case t.Is("while"):
		p.pos++
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		return ast.WhileStmt{Cond: cond, Body: p.stmt()}

	case t.Is("for"):
		p.pos++
		p.expect("(")
		var init ast.Stmt
		var cond ast.Expr
		var post ast.Stmt
		if !p.peek(";") {
			init = ast.ExprStmt{X: p.expr()}
		}
		p.expect(";")
		if !p.peek(";") {
			cond = p.expr()
		}
		p.expect(";")
		if !p.peek(")") {
			post = ast.ExprStmt{X: p.expr()}
		}
		p.expect(")")
		return ast.ForStmt{Init: init, Cond: cond, Post: post, Body: p.stmt()}

	case t.Is("{"):
		p.pos++
		var stmts []ast.Stmt
		for !p.consume("}") {
			if s := p.stmt(); s != nil {
				stmts = append(stmts, s)
			}
		}
		return ast.BlockStmt{Stmts: stmts}

	case t.Is("int"):
		return p.declaration()

	default:
		x := p.expr()
		p.expect(";")
		return ast.ExprStmt{X: x}
	}
}

// declaration = basetype ident typeSuffix ("=" expr)? ";"
func (p *Parser) declaration() ast.Stmt {
	base := p.basetype()
	name := p.expectIdent()
	typ := p.typeSuffix(base)
	v := p.addLocal(name, typ)

	if p.peek("=") {
		opTok := p.cur()
		p.pos++
		value := p.assign()
		p.expect(";")
		return ast.ExprStmt{X: p.buildAssign(ast.VarExpr{Var: v}, value, opTok)}
	}
	p.expect(";")
	return nil
}

func (p *Parser) expr() ast.Expr {
	return p.assign()
}

// assign = equality ("=" assign)?   -- right-associative
func (p *Parser) assign() ast.Expr {
	x := p.equality()
	if p.peek("=") {
		opTok := p.cur()
		p.pos++
		value := p.assign()
		return p.buildAssign(x, value, opTok)
	}
	return x
}

// buildAssign enforces that an array can't be the assignment target;
// everything else assigns its right-hand value straight through.
func (p *Parser) buildAssign(target, value ast.Expr, at token.Token) ast.Expr {
	if target.Type().IsArray() {
		diagnostic.Fail(diagnostic.Semantic, at.Line, at.Column, p.source, "array is not assignable")
	}
	return ast.AssignExpr{Target: target, Value: value}
}

func (p *Parser) equality() ast.Expr {
	x := p.relational()
	for {
		switch {
		case p.consume("=="):
			x = ast.BinaryExpr{Op: ast.OpEq, Left: x, Right: p.relational(), Typ: typesys.IntType}
		case p.consume("!="):
			x = ast.BinaryExpr{Op: ast.OpNe, Left: x, Right: p.relational(), Typ: typesys.IntType}
		default:
			return x
		}
	}
}

// relational rewrites '>' and '>=' by swapping operands at construction
// time, so the generator only ever has to emit '<' and '<='.
func (p *Parser) relational() ast.Expr {
	x := p.add()
	for {
		switch {
		case p.consume("<"):
			x = ast.BinaryExpr{Op: ast.OpLt, Left: x, Right: p.add(), Typ: typesys.IntType}
		case p.consume("<="):
			x = ast.BinaryExpr{Op: ast.OpLe, Left: x, Right: p.add(), Typ: typesys.IntType}
		case p.consume(">"):
			rhs := p.add()
			x = ast.BinaryExpr{Op: ast.OpLt, Left: rhs, Right: x, Typ: typesys.IntType}
		case p.consume(">="):
			rhs := p.add()
			x = ast.BinaryExpr{Op: ast.OpLe, Left: rhs, Right: x, Typ: typesys.IntType}
		default:
			return x
		}
	}
}

func (p *Parser) add() ast.Expr {
	x := p.mul()
	for {
		opTok := p.cur()
		switch {
		case p.consume("+"):
			x = p.buildAdd(x, p.mul(), opTok)
		case p.consume("-"):
			x = p.buildSub(x, p.mul(), opTok)
		default:
			return x
		}
	}
}

// buildAdd implements the pointer-arithmetic rewrite table for '+':
// int+int stays Add; a pointer or array on either side becomes PtrAdd,
// scaled by the base type's size; pointer+pointer is a semantic error.
func (p *Parser) buildAdd(lhs, rhs ast.Expr, at token.Token) ast.Expr {
	lt, rt := lhs.Type(), rhs.Type()
	switch {
	case lt.IsInt() && rt.IsInt():
		return ast.BinaryExpr{Op: ast.OpAdd, Left: lhs, Right: rhs, Typ: typesys.IntType}
	case lt.HasBase() && rt.IsInt():
		return ast.BinaryExpr{Op: ast.OpPtrAdd, Left: lhs, Right: rhs, ElemSize: lt.Base.Size, Typ: lt.Decay()}
	case lt.IsInt() && rt.HasBase():
		return ast.BinaryExpr{Op: ast.OpPtrAdd, Left: rhs, Right: lhs, ElemSize: rt.Base.Size, Typ: rt.Decay()}
	default:
		diagnostic.Fail(diagnostic.Semantic, at.Line, at.Column, p.source, "invalid operands to '+'")
		panic("unreachable")
	}
}

// buildSub mirrors buildAdd for '-', plus PtrDiff when both operands
// have a base type: the byte difference divided by the base size.
func (p *Parser) buildSub(lhs, rhs ast.Expr, at token.Token) ast.Expr {
	lt, rt := lhs.Type(), rhs.Type()
	switch {
	case lt.IsInt() && rt.IsInt():
		return ast.BinaryExpr{Op: ast.OpSub, Left: lhs, Right: rhs, Typ: typesys.IntType}
	case lt.HasBase() && rt.IsInt():
		return ast.BinaryExpr{Op: ast.OpPtrSub, Left: lhs, Right: rhs, ElemSize: lt.Base.Size, Typ: lt.Decay()}
	case lt.HasBase() && rt.HasBase():
		return ast.BinaryExpr{Op: ast.OpPtrDiff, Left: lhs, Right: rhs, ElemSize: lt.Base.Size, Typ: typesys.IntType}
	default:
		diagnostic.Fail(diagnostic.Semantic, at.Line, at.Column, p.source, "invalid operands to '-'")
		panic("unreachable")
	}
}

func (p *Parser) mul() ast.Expr {
	x := p.unary()
	for {
		switch {
		case p.consume("*"):
			x = ast.BinaryExpr{Op: ast.OpMul, Left: x, Right: p.unary(), Typ: typesys.IntType}
		case p.consume("/"):
			x = ast.BinaryExpr{Op: ast.OpDiv, Left: x, Right: p.unary(), Typ: typesys.IntType}
		default:
			return x
		}
	}
}

// unary = ("+" | "-" | "*" | "&" | "sizeof") unary | postfix
func (p *Parser) unary() ast.Expr {
	t := p.cur()
	switch {
	case p.consume("+"):
		return p.unary()
	case p.consume("-"):
		// 0 - x, rather than a dedicated negation node: the generator
		// then never needs a unary-minus instruction of its own.
		return ast.BinaryExpr{Op: ast.OpSub, Left: ast.NumberExpr{Value: 0}, Right: p.unary(), Typ: typesys.IntType}
	case p.consume("*"):
		x := p.unary()
		xt := x.Type()
		if !xt.HasBase() {
			diagnostic.Fail(diagnostic.Semantic, t.Line, t.Column, p.source, "cannot dereference a non-pointer")
		}
		return ast.DerefExpr{X: x, Typ: xt.Base}
	case p.consume("&"):
		x := p.unary()
		return ast.AddrExpr{X: x, Typ: p.addrType(x.Type())}
	case t.Is("sizeof"):
		p.pos++
		x := p.unary()
		return ast.NumberExpr{Value: int64(x.Type().Size)}
	default:
		return p.postfix()
	}
}

// addrType implements "&e => Pointer(T) where T is array-of-X
// collapsed to X if e is an array; otherwise e.ty": taking the address
// of an array yields a pointer to its element type, not a pointer to
// the array type itself.
func (p *Parser) addrType(t *typesys.Type) *typesys.Type {
	if t.IsArray() {
		return p.newPointerType(t.Base)
	}
	return p.newPointerType(t)
}

// postfix = primary ("[" expr "]")*
//
// "e[i]" is rewritten as "*(e+i)" at construction time via buildAdd,
// so the AST never has a dedicated index node.
func (p *Parser) postfix() ast.Expr {
	x := p.primary()
	for p.consume("[") {
		idxTok := p.cur()
		idx := p.expr()
		p.expect("]")
		sum := p.buildAdd(x, idx, idxTok)
		st := sum.Type()
		if !st.HasBase() {
			diagnostic.Fail(diagnostic.Semantic, idxTok.Line, idxTok.Column, p.source, "cannot index a non-pointer")
		}
		x = ast.DerefExpr{X: sum, Typ: st.Base}
	}
	return x
}

// primary = "(" expr ")" | ident ("(" args? ")")? | num
func (p *Parser) primary() ast.Expr {
	if p.consume("(") {
		x := p.expr()
		p.expect(")")
		return x
	}

	t := p.cur()
	if name, ok := p.consumeIdent(); ok {
		if p.consume("(") {
			return p.call(name)
		}
		v := p.findVar(name)
		if v == nil {
			diagnostic.Fail(diagnostic.Semantic, t.Line, t.Column, p.source, "undefined variable %q", name)
		}
		return ast.VarExpr{Var: v}
	}

	return ast.NumberExpr{Value: p.expectNumber()}
}

// args = assign ("," assign)*  (the opening "(" is already consumed)
func (p *Parser) call(callee string) ast.Expr {
	var args []ast.Expr
	if !p.peek(")") {
		for {
			args = append(args, p.assign())
			if !p.consume(",") {
				break
			}
		}
	}
	p.expect(")")
	return ast.CallExpr{Callee: callee, Args: args}
}
