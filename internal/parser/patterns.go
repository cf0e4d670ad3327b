package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// parsePattern parses one match-arm pattern: the wildcard `_`, an
// identifier bind, or an int/string/bool/null literal pattern.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curTok.Kind {
	case lexer.IDENT:
		t := p.curTok
		p.nextToken()
		if t.Text == "_" {
			return arena.Make(p.arena, ast.WildcardPat{Pos: posOf(t)})
		}
		return arena.Make(p.arena, ast.IdentPat{Pos: posOf(t), Name: t.Text})

	case lexer.INT:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.IntPat{Pos: posOf(t), Val: t.IntVal})

	case lexer.STR:
		t := p.curTok
		p.nextToken()
		lit := p.buildStringLit(t)
		if lit == nil {
			return nil
		}
		return arena.Make(p.arena, ast.StrPat{Pos: posOf(t), Parts: lit.Parts})

	case lexer.KW_TRUE:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.BoolPat{Pos: posOf(t), Val: true})

	case lexer.KW_FALSE:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.BoolPat{Pos: posOf(t), Val: false})

	case lexer.KW_NULL:
		t := p.curTok
		p.nextToken()
		return arena.Make(p.arena, ast.NullPat{Pos: posOf(t)})
	}

	p.fail("expected pattern, got %s", tokenDisplay(p.curTok))
	return nil
}
