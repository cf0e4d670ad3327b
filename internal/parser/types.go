package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// parseType parses `IDENT ('.' IDENT)? | '[' Type ']' | '[' Type '=>' Type ']'`.
func (p *Parser) parseType() ast.TypeRef {
	switch p.curTok.Kind {
	case lexer.IDENT:
		start := p.curTok
		name := p.curTok.Text
		p.nextToken()
		if p.maybe(lexer.DOT) {
			if p.curTok.Kind != lexer.IDENT {
				p.fail("expected identifier after '.' in type name")
				return nil
			}
			name += "." + p.curTok.Text
			p.nextToken()
		}
		return arena.Make(p.arena, ast.NameType{Pos: posOf(start), Name: name})

	case lexer.LBRACKET:
		start := p.curTok
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if p.curTok.Kind == lexer.FATARROW {
			p.nextToken()
			val := p.parseType()
			if val == nil {
				return nil
			}
			if !p.expect(lexer.RBRACKET, "']'") {
				return nil
			}
			return arena.Make(p.arena, ast.DictType{Pos: posOf(start), Key: elem, Val: val})
		}
		if !p.expect(lexer.RBRACKET, "']'") {
			return nil
		}
		return arena.Make(p.arena, ast.ArrayType{Pos: posOf(start), Elem: elem})
	}

	p.fail("expected type, got %s", tokenDisplay(p.curTok))
	return nil
}
