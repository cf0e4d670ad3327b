// Package parser implements the recursive-descent, Pratt-style expression
// parser that turns a lexer.Token stream into an *ast.Module.
//
// Invariants this package maintains:
//   - Lookahead: the parser holds exactly two tokens of lookahead,
//     curTok and peekTok; nextToken is the single point of contact with
//     the token slice.
//   - Diagnostics: every parse helper that reports an error returns a
//     zero value (nil, or a false bool). Where a helper's zero value is
//     also a valid result (parseParams, parseRetSpec), the caller checks
//     p.ok() right after the call.
//   - Positions: every constructed node's Pos is taken from the token
//     that began its production (for infix and postfix forms, the
//     operator token), before any lookahead advances past it.
package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// Parser holds the state needed to walk a token slice into an AST. A
// Parser should be constructed with New and used for exactly one
// ParseModule call; speculative parses (arrow-lambda disambiguation,
// placeholder re-parsing) construct throwaway Parsers of their own.
type Parser struct {
	toks []lexer.Token
	pos  int

	curTok  lexer.Token
	peekTok lexer.Token

	path  string
	arena *arena.Arena
	diag  *diag.Sink
}

// New constructs a Parser positioned at the first token of toks.
func New(toks []lexer.Token, path string, a *arena.Arena, d *diag.Sink) *Parser {
	p := &Parser{toks: toks, path: path, arena: a, diag: d}
	// seed curTok/peekTok.
	p.pos = 0
	p.curTok = p.at(0)
	p.peekTok = p.at(1)
	return p
}

func (p *Parser) at(i int) lexer.Token {
	if i < 0 || i >= len(p.toks) {
		if len(p.toks) > 0 {
			return lexer.Token{Kind: lexer.EOF, Span: p.toks[len(p.toks)-1].Span}
		}
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curTok = p.peekTok
	p.peekTok = p.at(p.pos + 1)
}

func (p *Parser) ok() bool {
	return p.diag.OK()
}

func (p *Parser) pos_() ast.Pos {
	return ast.Pos{Line: p.curTok.Span.Line, Col: p.curTok.Span.Col}
}

func posOf(t lexer.Token) ast.Pos {
	return ast.Pos{Line: t.Span.Line, Col: t.Span.Col}
}

func (p *Parser) fail(format string, args ...any) {
	p.diag.Report(diag.StageParser, p.curTok.Span.Line, p.curTok.Span.Col, format, args...)
}

func (p *Parser) failAt(tok lexer.Token, format string, args ...any) {
	p.diag.Report(diag.StageParser, tok.Span.Line, tok.Span.Col, format, args...)
}

func tokenDisplay(t lexer.Token) string {
	if t.Kind == lexer.EOF {
		return "EOF"
	}
	if t.Text != "" {
		return t.Text
	}
	return string(t.Kind)
}

// expect consumes curTok if it has kind k, else reports an error and
// returns false. Callers should bail out of the current production on a
// false return.
func (p *Parser) expect(k lexer.TokenKind, what string) bool {
	if p.curTok.Kind != k {
		p.fail("expected %s, got %s", what, tokenDisplay(p.curTok))
		return false
	}
	p.nextToken()
	return true
}

// maybe consumes curTok and returns true if it has kind k, else leaves
// the cursor untouched and returns false.
func (p *Parser) maybe(k lexer.TokenKind) bool {
	if p.curTok.Kind == k {
		p.nextToken()
		return true
	}
	return false
}

// skipSemis consumes zero or more SEMI tokens.
func (p *Parser) skipSemis() {
	for p.curTok.Kind == lexer.SEMI {
		p.nextToken()
	}
}

// clone produces a checkpoint of the parser's cursor state for
// speculative parsing (used by the arrow-lambda disambiguation). The
// returned Parser shares the arena but has its own nulled diagnostic
// sink, so a failed speculative parse never freezes the caller's sink.
func (p *Parser) clone() *Parser {
	return &Parser{
		toks:    p.toks,
		pos:     p.pos,
		curTok:  p.curTok,
		peekTok: p.peekTok,
		path:    p.path,
		arena:   p.arena,
		diag:    diag.NewSink(p.path),
	}
}

// adopt copies cur's advanced cursor state back into p, while explicitly
// keeping p's own diagnostic sink. This mirrors the original
// implementation's "restore state but keep original diag pointer"
// pattern used after a successful speculative parse.
func (p *Parser) adopt(cur *Parser) {
	originalDiag := p.diag
	*p = *cur
	p.diag = originalDiag
}

// ParseModule is the parser's entry point: tokens in, one *ast.Module
// out. A false second result means diag has been frozen with an error.
func ParseModule(toks []lexer.Token, path string, a *arena.Arena, d *diag.Sink) (*ast.Module, bool) {
	p := New(toks, path, a, d)
	mod := p.parseModule()
	return mod, d.OK()
}

func (p *Parser) parseModule() *ast.Module {
	mod := arena.Make(p.arena, ast.Module{Path: p.path})

	p.skipSemis()

	if p.curTok.Kind == lexer.KW_CASK {
		p.nextToken()
		if p.curTok.Kind != lexer.IDENT {
			p.fail("expected module name after 'cask'")
			return nil
		}
		mod.DeclaredName = p.curTok.Text
		mod.HasDeclaredName = true
		p.nextToken()
		if !p.expect(lexer.SEMI, "';'") {
			return nil
		}
		p.skipSemis()
	}

	// Imports and declarations may interleave freely: `bring` is just one
	// more dispatch arm alongside `fun`/`const`/etc., not a separate
	// leading section.
	var imports []*ast.Import
	var decls []ast.Decl
	for p.ok() && p.curTok.Kind != lexer.EOF {
		if p.curTok.Kind == lexer.KW_BRING {
			imp := p.parseImport()
			if imp == nil {
				return nil
			}
			imports = append(imports, imp)
			p.skipSemis()
			continue
		}

		decl := p.parseTopLevelDecl()
		if decl == nil {
			if !p.ok() {
				return nil
			}
			p.fail("unexpected token %s", tokenDisplay(p.curTok))
			return nil
		}
		decls = append(decls, decl)
		p.skipSemis()
	}

	if !p.ok() {
		return nil
	}
	mod.Imports = arena.MakeSlice(p.arena, imports)
	mod.Decls = arena.MakeSlice(p.arena, decls)
	return mod
}

func (p *Parser) parseImport() *ast.Import {
	start := p.curTok
	if !p.expect(lexer.KW_BRING, "'bring'") {
		return nil
	}
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected identifier after 'bring'")
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
	if !p.expect(lexer.SEMI, "';'") {
		return nil
	}
	return arena.Make(p.arena, ast.Import{Pos: posOf(start), Name: name})
}
