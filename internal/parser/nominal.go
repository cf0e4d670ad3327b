package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// parseClassDecl parses `class IDENT (: BaseType)? { body }`.
func (p *Parser) parseClassDecl(vis ast.Visibility, isSeal bool) *ast.ClassDecl {
	start := p.curTok
	p.nextToken() // 'class'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected class name, got %s", tokenDisplay(p.curTok))
		return nil
	}
	name := p.curTok.Text
	p.nextToken()

	decl := arena.Make(p.arena, ast.ClassDecl{Pos: posOf(start), Kind: ast.KindClass, Name: name, Vis: vis, IsSeal: isSeal})

	if p.curTok.Kind == lexer.COLON {
		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil
		}
		nt, ok := typ.(*ast.NameType)
		if !ok {
			p.fail("class base must be a nominal type name")
			return nil
		}
		decl.Base = nt.Name
		decl.HasBase = true
	}

	if !p.expect(lexer.LBRACE, "'{'") {
		return nil
	}
	if !p.parseNominalBody(decl) {
		return nil
	}
	if !p.expect(lexer.RBRACE, "'}'") {
		return nil
	}
	return decl
}

// parseStructOrEnumDecl parses `struct IDENT = [ body ]` and
// `enum IDENT = [ body ]`: bracket-delimited, no base type. The caller
// already rejects a leading `seal` before reaching here.
func (p *Parser) parseStructOrEnumDecl(vis ast.Visibility, kind ast.ClassKind) *ast.ClassDecl {
	start := p.curTok
	p.nextToken() // 'struct' | 'enum'
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected name, got %s", tokenDisplay(p.curTok))
		return nil
	}
	name := p.curTok.Text
	p.nextToken()

	if !p.expect(lexer.ASSIGN, "'='") {
		return nil
	}
	if !p.expect(lexer.LBRACKET, "'['") {
		return nil
	}

	decl := arena.Make(p.arena, ast.ClassDecl{Pos: posOf(start), Kind: kind, Name: name, Vis: vis})
	if !p.parseNominalBody(decl) {
		return nil
	}
	if !p.expect(lexer.RBRACKET, "']'") {
		return nil
	}
	return decl
}

// parseNominalBody parses the interleaved field/method list shared by
// class, struct, and enum bodies, stopping at (without consuming) the
// closing delimiter.
func (p *Parser) parseNominalBody(decl *ast.ClassDecl) bool {
	p.skipSemis()
	for p.ok() && p.curTok.Kind != lexer.RBRACE && p.curTok.Kind != lexer.RBRACKET && p.curTok.Kind != lexer.EOF {
		isPub := p.maybe(lexer.KW_PUB)

		if p.curTok.Kind == lexer.KW_FUN {
			m := p.parseFunDecl(isPub)
			if m == nil {
				return false
			}
			decl.Methods = append(decl.Methods, m)
			p.skipSemis()
			continue
		}

		if p.curTok.Kind != lexer.IDENT {
			p.fail("expected field or method, got %s", tokenDisplay(p.curTok))
			return false
		}
		fname := p.curTok.Text
		fpos := posOf(p.curTok)
		p.nextToken()
		if !p.expect(lexer.ASSIGN, "'='") {
			return false
		}
		typ := p.parseType()
		if typ == nil {
			return false
		}
		decl.Fields = append(decl.Fields, arena.Make(p.arena, ast.FieldDecl{Pos: fpos, Name: fname, Type: typ, IsPub: isPub}))
		p.maybe(lexer.SEMI)
		p.skipSemis()
	}
	if !p.ok() {
		return false
	}
	decl.Fields = arena.MakeSlice(p.arena, decl.Fields)
	decl.Methods = arena.MakeSlice(p.arena, decl.Methods)
	return true
}
