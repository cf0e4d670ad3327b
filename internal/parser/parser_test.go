package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/ergo-lang/ergo/internal/lexer"
	"github.com/ergo-lang/ergo/internal/parser"
	"github.com/stretchr/testify/require"
)

func parseModule(t *testing.T, src string) (*ast.Module, *diag.Sink) {
	t.Helper()
	a := arena.New()
	d := diag.NewSink("test.cask")
	toks, ok := lexer.Lex("test.cask", []byte(src), a, d)
	require.True(t, ok, "lexing should succeed")
	mod, _ := parser.ParseModule(toks, "test.cask", a, d)
	return mod, d
}

func TestFunDeclWithReturnSpec(t *testing.T) {
	mod, d := parseModule(t, `
fun add(a = int, b = int) ((int)) {
	return a + b;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	require.Len(t, mod.Decls, 1)
	fn, ok := mod.Decls[0].(*ast.FunDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Ret.Types, 1)
	require.False(t, fn.Ret.IsVoid)
}

func TestFunDeclWithVoidReturn(t *testing.T) {
	mod, d := parseModule(t, `
fun log(msg = string) ((--)) {
	msg;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	require.True(t, fn.Ret.IsVoid)
}

func TestFunDeclWithMultiReturn(t *testing.T) {
	mod, d := parseModule(t, `
fun divmod(a = int, b = int) ((int; int)) {
	return a;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	require.Len(t, fn.Ret.Types, 2)
}

// A chain of two ordinary call postfixes (`f()(1, 2)`) must not be
// confused with return-spec mode: each `(` here is single, so no `((`
// pair ever appears and the lexer never opens return-mode.
func TestEntryDeclWithChainedCalls(t *testing.T) {
	mod, d := parseModule(t, `
entry() ((--)) {
	let x = f()(1, 2);
}
`)
	require.True(t, d.OK(), diagMsg(d))
	entry := mod.Decls[0].(*ast.EntryDecl)
	require.True(t, entry.Ret.IsVoid)
}

func TestNamedArgsRewriteToNew(t *testing.T) {
	mod, d := parseModule(t, `
fun make() ((--)) {
	let p = Point(x: 1, y: 2);
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	n, ok := let.Expr.(*ast.New)
	require.True(t, ok, "named-arg call should rewrite to ast.New")
	require.Equal(t, "Point", n.Name)
	require.Equal(t, []string{"x", "y"}, n.ArgNames)
}

func TestNamedArgsRejectedForNonConstructorCallee(t *testing.T) {
	_, d := parseModule(t, `
fun make() ((--)) {
	let p = a.b.c(x: 1);
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "named args are only supported for constructors")
}

func TestArrowLambdaDisambiguation(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	let add = (a = int, b = int) => a + b;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lam, ok := let.Expr.(*ast.Lambda)
	require.True(t, ok, "arrow form should parse as Lambda")
	require.Len(t, lam.Params, 2)
}

func TestParenTupleDisambiguatedFromArrowLambda(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	let t = (1, 2, 3);
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	tup, ok := let.Expr.(*ast.TupleExpr)
	require.True(t, ok, "plain parenthesised list should parse as TupleExpr")
	require.Len(t, tup.Items, 3)
}

func TestPipeLambda(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	let double = |x = int| x * 2;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lam, ok := let.Expr.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Params, 1)
}

func TestMatchInlineForm(t *testing.T) {
	mod, d := parseModule(t, `
fun classify(n = int) ((string)) {
	return match n : 0 => "zero", 1 => "one", x => "many";
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	m, ok := ret.Expr.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	_, isWildcardBind := m.Arms[2].Pat.(*ast.IdentPat)
	require.True(t, isWildcardBind)
}

func TestMatchBraceForm(t *testing.T) {
	mod, d := parseModule(t, `
fun classify(n = int) ((string)) {
	return match n {
		0 => "zero";
		_ => "other";
	};
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	m := ret.Expr.(*ast.Match)
	require.Len(t, m.Arms, 2)
	_, isWildcard := m.Arms[1].Pat.(*ast.WildcardPat)
	require.True(t, isWildcard)
}

func TestIfExpressionRequiresElse(t *testing.T) {
	_, d := parseModule(t, `
fun use() ((int)) {
	return if x : 1;
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "if expression requires else branch")
}

func TestIfExpressionBlockMustBeSingleExpr(t *testing.T) {
	_, d := parseModule(t, `
fun use() ((int)) {
	return if x { 1; 2 } else : 3;
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "single expression")
}

func TestIfExpressionWithElse(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((int)) {
	return if x : 1 else : 2;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	ifExpr, ok := ret.Expr.(*ast.If)
	require.True(t, ok)
	require.Len(t, ifExpr.Arms, 2)
	require.Nil(t, ifExpr.Arms[1].Cond)
}

func TestIfStatementDoesNotRequireElse(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	if x {
		y;
	}
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	_, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
}

func TestClassWithBase(t *testing.T) {
	mod, d := parseModule(t, `
class Dog : Animal {
	name = string;
	pub fun bark() ((--)) {
		name;
	}
}
`)
	require.True(t, d.OK(), diagMsg(d))
	cd := mod.Decls[0].(*ast.ClassDecl)
	require.Equal(t, ast.KindClass, cd.Kind)
	require.True(t, cd.HasBase)
	require.Equal(t, "Animal", cd.Base)
	require.Len(t, cd.Fields, 1)
	require.Len(t, cd.Methods, 1)
}

func TestStructCannotBeSealed(t *testing.T) {
	_, d := parseModule(t, `
seal struct Point = [
	x = int;
]
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "seal is only valid on class declarations")
}

func TestEnumDecl(t *testing.T) {
	mod, d := parseModule(t, `
enum Color = [
	r = int;
	g = int;
]
`)
	require.True(t, d.OK(), diagMsg(d))
	cd := mod.Decls[0].(*ast.ClassDecl)
	require.Equal(t, ast.KindEnum, cd.Kind)
	require.False(t, cd.HasBase)
	require.Len(t, cd.Fields, 2)
}

func TestStringPlaceholderResolvesToMemberExpr(t *testing.T) {
	mod, d := parseModule(t, `
fun greet(user = User) ((--)) {
	let s = "hi <user.name>";
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lit := let.Expr.(*ast.StringLit)
	require.Len(t, lit.Parts, 2)
	require.False(t, lit.Parts[0].IsExpr)
	require.True(t, lit.Parts[1].IsExpr)
	member, ok := lit.Parts[1].Expr.(*ast.Member)
	require.True(t, ok)
	require.Equal(t, "name", member.Name)
	base, ok := member.X.(*ast.Ident)
	require.True(t, ok)
	require.Equal(t, "user", base.Name)
}

func TestStringPlaceholderOperatorRejectedByParser(t *testing.T) {
	_, d := parseModule(t, `
fun greet() ((--)) {
	let s = "bad <a+b>";
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, "invalid interpolation '<a+b>': operators not allowed in placeholder", dg.Message)
}

func TestStringPlaceholderEmptyIndexRejected(t *testing.T) {
	_, d := parseModule(t, `
fun greet() ((--)) {
	let s = "bad <a[]>";
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, "invalid interpolation '<a[]>': empty index", dg.Message)
}

func TestStringPlaceholderExpectedIdentifierRejected(t *testing.T) {
	_, d := parseModule(t, `
fun greet() ((--)) {
	let s = "bad <1>";
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, "invalid interpolation '<1>': expected identifier", dg.Message)
}

func TestStringPlaceholderDanglingDotRejected(t *testing.T) {
	_, d := parseModule(t, `
fun greet() ((--)) {
	let s = "bad <a.>";
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, "invalid interpolation '<a.>': expected member name after '.'", dg.Message)
}

func TestStringPlaceholderUnterminatedIndexRejected(t *testing.T) {
	_, d := parseModule(t, `
fun greet() ((--)) {
	let s = "bad <a[0>";
}
`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, "invalid interpolation '<a[0>': unterminated '['", dg.Message)
}

func TestBangCallSugar(t *testing.T) {
	mod, d := parseModule(t, `
fun use(log = Logger) ((--)) {
	log!info "starting", 1, 2;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 3)
	member, ok := call.Fn.(*ast.Member)
	require.True(t, ok)
	require.Equal(t, "info", member.Name)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	a = b = 1;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer, ok := stmt.Expr.(*ast.Assign)
	require.True(t, ok)
	_, ok = outer.Value.(*ast.Assign)
	require.True(t, ok, "assignment chain should nest on the right")
}

func TestBinaryPrecedenceClimbing(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((int)) {
	return 1 + 2 * 3;
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin := ret.Expr.(*ast.Binary)
	require.Equal(t, "+", bin.Op)
	_, ok := bin.Rhs.(*ast.Binary)
	require.True(t, ok, "multiplication should bind tighter than addition")
}

func TestForEachLoop(t *testing.T) {
	mod, d := parseModule(t, `
fun use(xs = [int]) ((--)) {
	for (x in xs) {
		x;
	}
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	fe, ok := fn.Body.Stmts[0].(*ast.ForEachStmt)
	require.True(t, ok)
	require.Equal(t, "x", fe.Name)
}

func TestCStyleForLoop(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	for (let i = 0; i; i = i + 1) {
		i;
	}
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	_, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
}

func TestArrayAndDictLiterals(t *testing.T) {
	mod, d := parseModule(t, `
fun use() ((--)) {
	let xs = [1, 2, 3];
	let m = ["a" => 1, "b" => 2];
}
`)
	require.True(t, d.OK(), diagMsg(d))
	fn := mod.Decls[0].(*ast.FunDecl)
	arr := fn.Body.Stmts[0].(*ast.LetStmt).Expr.(*ast.ArrayLit)
	require.Len(t, arr.Items, 3)
	dict := fn.Body.Stmts[1].(*ast.LetStmt).Expr.(*ast.DictLit)
	require.Len(t, dict.Entries, 2)
}

func TestModuleHeaderAndImports(t *testing.T) {
	mod, d := parseModule(t, `
cask geometry;
bring std.math;
bring std.io;

fun noop() ((--)) {
	--
}
`)
	require.True(t, d.OK(), diagMsg(d))
	require.True(t, mod.HasDeclaredName)
	require.Equal(t, "geometry", mod.DeclaredName)
	require.Len(t, mod.Imports, 2)
	require.Equal(t, "std.math", mod.Imports[0].Name)
}

// TestIdempotentParse checks §8's idempotent-parse invariant: parsing the
// same source twice, independently, produces structurally identical ASTs.
// Positions are ignored since each parse re-derives them from its own
// token stream and comparing them would be comparing the lexer, not the
// parser.
func TestIdempotentParse(t *testing.T) {
	const src = `
cask geometry;
bring std.math;

class Point {
	x = float;
	y = float;

	fun dist(other = Point) ((float)) {
		return ((x - other.x) * (x - other.x) + (y - other.y) * (y - other.y));
	}
}

fun describe(p = Point) ((--)) {
	let s = "point <p.x> , <p.y>";
	if (p.x == 0.0) {
		return;
	} elif (p.x > 0.0) {
		return;
	} else {
		return;
	}
}

entry() ((--)) {
	let pt = new Point(x: 1.0, y: 2.0);
	for (i in pt) {
		break;
	}
}
`
	mod1, d1 := parseModule(t, src)
	require.True(t, d1.OK(), diagMsg(d1))
	mod2, d2 := parseModule(t, src)
	require.True(t, d2.OK(), diagMsg(d2))

	ignorePos := cmpopts.IgnoreFields(ast.Pos{}, "Line", "Col")
	if diff := cmp.Diff(mod1, mod2, ignorePos); diff != "" {
		t.Fatalf("repeated parse of identical source produced different ASTs (-first +second):\n%s", diff)
	}
}

func diagMsg(d *diag.Sink) string {
	dg, ok := d.Diagnostic()
	if !ok {
		return ""
	}
	return dg.String()
}
