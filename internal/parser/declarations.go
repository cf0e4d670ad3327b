package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// parseTopLevelDecl dispatches on the current token to one of the
// top-level declaration productions. A leading `pub`/`lock` visibility
// marker or `seal` flag is consumed here before dispatch so that
// declarations.go stays the single place that interprets them.
func (p *Parser) parseTopLevelDecl() ast.Decl {
	vis := ast.VisPriv
	isSeal := false

	for {
		switch p.curTok.Kind {
		case lexer.KW_PUB:
			vis = ast.VisPub
			p.nextToken()
			continue
		case lexer.KW_LOCK:
			vis = ast.VisLock
			p.nextToken()
			continue
		case lexer.KW_SEAL:
			isSeal = true
			p.nextToken()
			continue
		}
		break
	}

	switch p.curTok.Kind {
	case lexer.KW_ENTRY:
		return p.parseEntryDecl()
	case lexer.KW_FUN:
		return p.parseFunDecl(vis == ast.VisPub)
	case lexer.KW_MACRO:
		return p.parseMacroDecl(vis == ast.VisPub)
	case lexer.KW_CONST:
		return p.parseConstDecl(vis == ast.VisPub)
	case lexer.KW_DEF:
		return p.parseDefDecl(vis == ast.VisPub)
	case lexer.KW_CLASS:
		return p.parseClassDecl(vis, isSeal)
	case lexer.KW_STRUCT:
		if isSeal {
			p.fail("seal is only valid on class declarations")
			return nil
		}
		return p.parseStructOrEnumDecl(vis, ast.KindStruct)
	case lexer.KW_ENUM:
		if isSeal {
			p.fail("seal is only valid on class declarations")
			return nil
		}
		return p.parseStructOrEnumDecl(vis, ast.KindEnum)
	}

	if isSeal || vis != ast.VisPriv {
		p.fail("unexpected token %s", tokenDisplay(p.curTok))
		return nil
	}
	return nil
}

func (p *Parser) parseEntryDecl() *ast.EntryDecl {
	start := p.curTok
	p.nextToken() // 'entry'
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}
	if !p.expect(lexer.RPAREN, "')'") {
		return nil
	}
	ret := p.parseRetSpec()
	if !p.ok() {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return arena.Make(p.arena, ast.EntryDecl{Pos: posOf(start), Ret: ret, Body: body})
}

func (p *Parser) parseFunDecl(isPub bool) *ast.FunDecl {
	start := p.curTok
	p.nextToken() // 'fun'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected function name, got %s", tokenDisplay(p.curTok))
		return nil
	}
	name := p.curTok.Text
	p.nextToken()
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}
	params := p.parseParams()
	if !p.ok() {
		return nil
	}
	if !p.expect(lexer.RPAREN, "')'") {
		return nil
	}
	ret := p.parseRetSpec()
	if !p.ok() {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return arena.Make(p.arena, ast.FunDecl{Pos: posOf(start), Name: name, IsPub: isPub, Params: params, Ret: ret, Body: body})
}

func (p *Parser) parseMacroDecl(isPub bool) *ast.MacroDecl {
	start := p.curTok
	p.nextToken() // 'macro'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected macro name, got %s", tokenDisplay(p.curTok))
		return nil
	}
	name := p.curTok.Text
	p.nextToken()
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}
	params := p.parseParams()
	if !p.ok() {
		return nil
	}
	for _, prm := range params {
		if prm.IsThis || prm.Name == "this" {
			p.fail("macro params cannot use this")
			return nil
		}
	}
	if !p.expect(lexer.RPAREN, "')'") {
		return nil
	}
	ret := p.parseRetSpec()
	if !p.ok() {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return arena.Make(p.arena, ast.MacroDecl{Pos: posOf(start), Name: name, IsPub: isPub, Params: params, Ret: ret, Body: body})
}

func (p *Parser) parseConstDecl(isPub bool) *ast.ConstDecl {
	start := p.curTok
	p.nextToken() // 'const'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected identifier after 'const'")
		return nil
	}
	name := p.curTok.Text
	p.nextToken()
	if !p.expect(lexer.ASSIGN, "'='") {
		return nil
	}
	expr := p.parseExpr(0)
	if expr == nil {
		return nil
	}
	p.maybe(lexer.SEMI)
	return arena.Make(p.arena, ast.ConstDecl{Pos: posOf(start), Name: name, IsPub: isPub, Expr: expr})
}

func (p *Parser) parseDefDecl(isPub bool) *ast.DefDecl {
	start := p.curTok
	p.nextToken() // 'def'
	isMut := p.maybe(lexer.QMARK)
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected identifier after 'def'")
		return nil
	}
	name := p.curTok.Text
	p.nextToken()
	if !p.expect(lexer.ASSIGN, "'='") {
		return nil
	}
	expr := p.parseExpr(0)
	if expr == nil {
		return nil
	}
	p.maybe(lexer.SEMI)
	return arena.Make(p.arena, ast.DefDecl{Pos: posOf(start), Name: name, IsPub: isPub, IsMut: isMut, Expr: expr})
}

// parseRetSpec parses `(( -- ))` or `(( Type (';'|',' Type)* ))`.
func (p *Parser) parseRetSpec() ast.RetSpec {
	if !p.expect(lexer.RET_L, "'(('") {
		return ast.RetSpec{}
	}
	if p.curTok.Kind == lexer.RET_VOID {
		p.nextToken()
		if !p.expect(lexer.RET_R, "'))'") {
			return ast.RetSpec{}
		}
		return ast.RetSpec{IsVoid: true}
	}

	var types []ast.TypeRef
	t := p.parseType()
	if t == nil {
		return ast.RetSpec{}
	}
	types = append(types, t)
	for p.curTok.Kind == lexer.SEMI || p.curTok.Kind == lexer.COMMA {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return ast.RetSpec{}
		}
		types = append(types, t)
	}
	if !p.expect(lexer.RET_R, "'))'") {
		return ast.RetSpec{}
	}
	return ast.RetSpec{Types: arena.MakeSlice(p.arena, types)}
}

// parseParams parses a comma-separated, possibly empty, parameter list.
// Does not consume the surrounding parens.
func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.curTok.Kind == lexer.RPAREN {
		return params
	}
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
	return arena.MakeSlice(p.arena, params)
}

// parseParam parses `?? IDENT (= Type)?`. A leading '?' marks mutability;
// a bare `this` with no type annotation becomes a self-receiver.
func (p *Parser) parseParam() *ast.Param {
	start := p.curTok
	isMut := p.maybe(lexer.QMARK)
	if p.curTok.Kind != lexer.IDENT && p.curTok.Kind != lexer.KW_NEW {
		p.fail("expected parameter name, got %s", tokenDisplay(p.curTok))
		return nil
	}
	name := p.curTok.Text
	p.nextToken()

	if name == "this" && p.curTok.Kind != lexer.ASSIGN {
		return arena.Make(p.arena, ast.Param{Pos: posOf(start), Name: name, IsMut: isMut, IsThis: true})
	}

	if !p.expect(lexer.ASSIGN, "'='") {
		return nil
	}
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	return arena.Make(p.arena, ast.Param{Pos: posOf(start), Name: name, Type: typ, IsMut: isMut})
}
