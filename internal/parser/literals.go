package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// parsePrimary parses one primary expression: literals, identifier,
// match, if-expression, new, lambda, array/dict literal, or a
// parenthesised expression/tuple (with speculative arrow-lambda
// disambiguation tried first).
func (p *Parser) parsePrimary() ast.Expr {
	switch p.curTok.Kind {
	case lexer.INT:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.IntLit{Pos: posOf(t), Val: t.IntVal})

	case lexer.FLOAT:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.FloatLit{Pos: posOf(t), Val: t.FloatVal})

	case lexer.STR:
		t := p.curTok
		p.nextToken()
		return p.buildStringLit(t)

	case lexer.KW_TRUE:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.BoolLit{Pos: posOf(t), Val: true})

	case lexer.KW_FALSE:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.BoolLit{Pos: posOf(t), Val: false})

	case lexer.KW_NULL:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.NullLit{Pos: posOf(t)})

	case lexer.IDENT:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.Ident{Pos: posOf(t), Name: t.Text})

	case lexer.KW_MATCH:
		return p.parseMatch()

	case lexer.KW_IF:
		return p.parseIfExpr()

	case lexer.KW_NEW:
		return p.parseNew()

	case lexer.PIPE:
		return p.parseLambdaPipe()

	case lexer.LBRACKET:
		return p.parseArrayOrDictLit()

	case lexer.LPAREN:
		if lam := p.tryParseArrowLambda(); lam != nil {
			return lam
		}
		if !p.ok() {
			return nil
		}
		return p.parseParenOrTuple()
	}

	p.fail("unexpected token %s", tokenDisplay(p.curTok))
	return nil
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.curTok
	p.nextToken() // '('
	if p.curTok.Kind == lexer.RPAREN {
		p.nextToken()
		return arena.Make(p.arena, ast.TupleExpr{Pos: posOf(start)})
	}
	first := p.parseExpr(0)
	if first == nil {
		return nil
	}
	if p.curTok.Kind == lexer.COMMA {
		items := []ast.Expr{first}
		for p.curTok.Kind == lexer.COMMA {
			p.nextToken()
			if p.curTok.Kind == lexer.RPAREN {
				break
			}
			e := p.parseExpr(0)
			if e == nil {
				return nil
			}
			items = append(items, e)
		}
		if !p.expect(lexer.RPAREN, "')'") {
			return nil
		}
		return arena.Make(p.arena, ast.TupleExpr{Pos: posOf(start), Items: arena.MakeSlice(p.arena, items)})
	}
	if !p.expect(lexer.RPAREN, "')'") {
		return nil
	}
	return arena.Make(p.arena, ast.Paren{Pos: posOf(start), X: first})
}

// parseNew parses `new IDENT ('.' IDENT)? ('(' args ')')?` — a trailing
// empty-or-populated argument list is optional, per §4.4.1: `new Foo`
// with no parens is a valid zero-arg constructor call.
func (p *Parser) parseNew() ast.Expr {
	start := p.curTok
	p.nextToken() // 'new'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected type name after 'new'")
		return nil
	}
	name := p.curTok.Text
	p.nextToken()
	if p.maybe(lexer.DOT) {
		if p.curTok.Kind != lexer.IDENT {
			p.fail("expected identifier after '.'")
			return nil
		}
		name += "." + p.curTok.Text
		p.nextToken()
	}

	var args []ast.Expr
	var names []string
	if p.maybe(lexer.LPAREN) {
		var errd bool
		args, names, errd = p.parseCallArgs()
		if errd {
			return nil
		}
		if !p.expect(lexer.RPAREN, "')'") {
			return nil
		}
	}
	return arena.Make(p.arena, ast.New{Pos: posOf(start), Name: name, Args: arena.MakeSlice(p.arena, args), ArgNames: arena.MakeSlice(p.arena, names)})
}

func (p *Parser) parseLambdaPipe() *ast.Lambda {
	start := p.curTok
	p.nextToken() // '|'
	var params []*ast.Param
	if p.curTok.Kind != lexer.PIPE {
		for {
			prm := p.parseParam()
			if prm == nil {
				return nil
			}
			params = append(params, prm)
			if p.curTok.Kind != lexer.COMMA {
				break
			}
			p.nextToken()
		}
	}
	if !p.expect(lexer.PIPE, "'|'") {
		return nil
	}
	body := p.parseLambdaBody()
	if body == nil {
		return nil
	}
	return arena.Make(p.arena, ast.Lambda{Pos: posOf(start), Params: arena.MakeSlice(p.arena, params), Body: body})
}

func (p *Parser) parseLambdaBody() ast.Expr {
	if p.curTok.Kind == lexer.LBRACE {
		blk := p.parseBlock()
		if blk == nil {
			return nil
		}
		return arena.Make(p.arena, ast.Block{Pos: blk.Pos, Stmts: blk.Stmts})
	}
	return p.parseExpr(0)
}

// tryParseArrowLambda speculatively attempts `(params) => body` using a
// cloned parser with an isolated diagnostic sink (§4.4.11). On success it
// adopts the clone's advanced cursor into p, preserving p's own diag.
// On failure it returns nil having left p untouched.
func (p *Parser) tryParseArrowLambda() *ast.Lambda {
	cur := p.clone()
	start := cur.curTok

	if !cur.expect(lexer.LPAREN, "'('") {
		return nil
	}
	var params []*ast.Param
	if cur.curTok.Kind != lexer.RPAREN {
		for {
			prm := cur.parseParam()
			if prm == nil {
				return nil
			}
			params = append(params, prm)
			if cur.curTok.Kind != lexer.COMMA {
				break
			}
			cur.nextToken()
		}
	}
	if !cur.expect(lexer.RPAREN, "')'") {
		return nil
	}
	if cur.curTok.Kind != lexer.FATARROW {
		return nil
	}
	cur.nextToken()
	body := cur.parseLambdaBody()
	if body == nil {
		return nil
	}

	lam := arena.Make(p.arena, ast.Lambda{Pos: posOf(start), Params: arena.MakeSlice(p.arena, params), Body: body})
	p.adopt(cur)
	return lam
}

func (p *Parser) parseArrayOrDictLit() ast.Expr {
	start := p.curTok
	p.nextToken() // '['

	if p.curTok.Kind == lexer.RBRACKET {
		p.nextToken()
		if p.curTok.Kind == lexer.COLON {
			p.nextToken()
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			if dt, ok := typ.(*ast.DictType); ok {
				return arena.Make(p.arena, ast.DictLit{Pos: posOf(start), KeyType: dt.Key, ValType: dt.Val})
			}
			return arena.Make(p.arena, ast.ArrayLit{Pos: posOf(start), ElemType: typ})
		}
		return arena.Make(p.arena, ast.ArrayLit{Pos: posOf(start)})
	}

	first := p.parseExpr(0)
	if first == nil {
		return nil
	}

	if p.curTok.Kind == lexer.FATARROW {
		p.nextToken()
		val := p.parseExpr(0)
		if val == nil {
			return nil
		}
		entries := []ast.DictEntry{{Key: first, Val: val}}
		for p.curTok.Kind == lexer.COMMA {
			p.nextToken()
			if p.curTok.Kind == lexer.RBRACKET {
				break
			}
			k := p.parseExpr(0)
			if k == nil {
				return nil
			}
			if !p.expect(lexer.FATARROW, "'=>'") {
				return nil
			}
			v := p.parseExpr(0)
			if v == nil {
				return nil
			}
			entries = append(entries, ast.DictEntry{Key: k, Val: v})
		}
		if !p.expect(lexer.RBRACKET, "']'") {
			return nil
		}
		return arena.Make(p.arena, ast.DictLit{Pos: posOf(start), Entries: arena.MakeSlice(p.arena, entries)})
	}

	items := []ast.Expr{first}
	for p.curTok.Kind == lexer.COMMA {
		p.nextToken()
		if p.curTok.Kind == lexer.RBRACKET {
			break
		}
		e := p.parseExpr(0)
		if e == nil {
			return nil
		}
		items = append(items, e)
	}
	if !p.expect(lexer.RBRACKET, "']'") {
		return nil
	}
	return arena.Make(p.arena, ast.ArrayLit{Pos: posOf(start), Items: arena.MakeSlice(p.arena, items)})
}

// parseIfExpr parses the if-expression production: an else arm is
// mandatory (§4.4.10, boundary scenario 8's sibling rule).
func (p *Parser) parseIfExpr() *ast.If {
	start := p.curTok
	p.nextToken() // 'if'

	var arms []ast.IfArm

	hasParen := p.maybe(lexer.LPAREN)
	cond := p.parseExpr(0)
	if cond == nil {
		return nil
	}
	if hasParen && !p.expect(lexer.RPAREN, "')'") {
		return nil
	}
	body := p.parseIfExprArmValue()
	if body == nil {
		return nil
	}
	arms = append(arms, ast.IfArm{Cond: cond, Body: body})

	for p.curTok.Kind == lexer.KW_ELIF {
		p.nextToken()
		hasParen := p.maybe(lexer.LPAREN)
		cond := p.parseExpr(0)
		if cond == nil {
			return nil
		}
		if hasParen && !p.expect(lexer.RPAREN, "')'") {
			return nil
		}
		body := p.parseIfExprArmValue()
		if body == nil {
			return nil
		}
		arms = append(arms, ast.IfArm{Cond: cond, Body: body})
	}

	if p.curTok.Kind != lexer.KW_ELSE {
		p.fail("if expression requires else branch")
		return nil
	}
	p.nextToken()
	elseBody := p.parseIfExprArmValue()
	if elseBody == nil {
		return nil
	}
	arms = append(arms, ast.IfArm{Cond: nil, Body: elseBody})

	return arena.Make(p.arena, ast.If{Pos: posOf(start), Arms: arena.MakeSlice(p.arena, arms)})
}

// parseIfExprArmValue parses one if-expression arm value: `:expr`, a
// braced single-expression block, or a bare expression.
func (p *Parser) parseIfExprArmValue() ast.Expr {
	if p.curTok.Kind == lexer.COLON {
		p.nextToken()
		return p.parseExpr(0)
	}
	if p.curTok.Kind == lexer.LBRACE {
		p.nextToken()
		expr := p.parseExpr(0)
		if expr == nil {
			return nil
		}
		if p.curTok.Kind != lexer.RBRACE {
			p.fail("if-expression block must contain a single expression")
			return nil
		}
		p.nextToken()
		return expr
	}
	return p.parseExpr(0)
}

func (p *Parser) parseMatch() *ast.Match {
	start := p.curTok
	p.nextToken() // 'match'
	scrut := p.parseExpr(0)
	if scrut == nil {
		return nil
	}

	if p.curTok.Kind == lexer.COLON {
		p.nextToken()
		var arms []ast.MatchArm
		for {
			arm, ok := p.parseMatchArm()
			if !ok {
				return nil
			}
			arms = append(arms, arm)
			if p.curTok.Kind != lexer.COMMA {
				break
			}
			p.nextToken()
		}
		return arena.Make(p.arena, ast.Match{Pos: posOf(start), Scrut: scrut, Arms: arena.MakeSlice(p.arena, arms)})
	}

	if !p.expect(lexer.LBRACE, "'{'") {
		return nil
	}
	var arms []ast.MatchArm
	p.skipSemis()
	for p.curTok.Kind != lexer.RBRACE && p.curTok.Kind != lexer.EOF {
		arm, ok := p.parseMatchArm()
		if !ok {
			return nil
		}
		arms = append(arms, arm)
		p.maybe(lexer.SEMI)
		p.skipSemis()
	}
	if !p.expect(lexer.RBRACE, "'}'") {
		return nil
	}
	return arena.Make(p.arena, ast.Match{Pos: posOf(start), Scrut: scrut, Arms: arena.MakeSlice(p.arena, arms)})
}

func (p *Parser) parseMatchArm() (ast.MatchArm, bool) {
	pat := p.parsePattern()
	if pat == nil {
		return ast.MatchArm{}, false
	}
	if !p.expect(lexer.FATARROW, "'=>'") {
		return ast.MatchArm{}, false
	}
	expr := p.parseExpr(0)
	if expr == nil {
		return ast.MatchArm{}, false
	}
	return ast.MatchArm{Pat: pat, Expr: expr}, true
}
