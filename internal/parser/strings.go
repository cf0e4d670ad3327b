package parser

import (
	"fmt"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// buildStringLit converts a lexer.STR token into an ast.StringLit,
// resolving every PartExprRaw segment through the placeholder
// mini-parser so that no raw placeholder text survives past this point
// (§4.5's placeholder-closure invariant).
func (p *Parser) buildStringLit(tok lexer.Token) *ast.StringLit {
	var parts []ast.StrPart
	for _, part := range tok.Parts {
		switch part.Kind {
		case lexer.PartText:
			parts = append(parts, ast.StrPart{Text: part.Text})
		case lexer.PartExprRaw:
			exprSrc, formatSpec := splitPlaceholderFormat(part.Text)
			expr := p.parsePlaceholder(tok, part.Text, exprSrc)
			if expr == nil {
				return nil
			}
			parts = append(parts, ast.StrPart{IsExpr: true, Text: formatSpec, Expr: expr})
		}
	}
	return arena.Make(p.arena, ast.StringLit{Pos: posOf(tok), Parts: arena.MakeSlice(p.arena, parts)})
}

// splitPlaceholderFormat splits a placeholder's raw inner text at its
// top-level ':' (the format-spec separator, §4.3.3); text inside '[...]'
// index suffixes does not count. The format-spec tail, if any, is never
// fed through the expression lexer — it is opaque formatting text, not
// cask source.
func splitPlaceholderFormat(raw string) (exprSrc, formatSpec string) {
	depth := 0
	for i, r := range raw {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ':':
			if depth == 0 {
				return raw[:i], raw[i+1:]
			}
		}
	}
	return raw, ""
}

// interpFail reports "invalid interpolation '<raw>': reason", anchored
// at the owning string token's position rather than wherever the
// sub-parser's cursor happens to sit, matching parser.c's
// parser_set_error(p, owner, ...) convention.
func (p *Parser) interpFail(owner lexer.Token, raw string, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	p.failAt(owner, "invalid interpolation '<%s>': %s", raw, reason)
}

// placeholderOperators is the set of token kinds parser.c calls out by
// name as disallowed inside a placeholder body (arithmetic, comparison,
// boolean, assignment operators, the block-opening keywords, and the
// parens a call or grouped expression would need).
var placeholderOperators = map[lexer.TokenKind]bool{
	lexer.PLUS: true, lexer.MINUS: true, lexer.STAR: true, lexer.SLASH: true, lexer.PCT: true,
	lexer.EQ: true, lexer.NEQ: true, lexer.LT: true, lexer.LE: true, lexer.GT: true, lexer.GE: true,
	lexer.AND: true, lexer.OR: true,
	lexer.ASSIGN: true, lexer.PLUSEQ: true, lexer.MINUSEQ: true, lexer.STAREQ: true, lexer.SLASHEQ: true,
	lexer.KW_IF: true, lexer.KW_MATCH: true, lexer.KW_FOR: true,
	lexer.LPAREN: true, lexer.RPAREN: true,
}

// parsePlaceholder is the placeholder mini-parser (§4.5): an identifier
// followed by a chain of `.member` and `[index]` accesses only — no
// calls, no operators. raw is the placeholder's full original body (with
// any format-spec tail still attached), quoted verbatim in diagnostics;
// exprSrc has that tail already stripped and is what actually gets
// re-lexed. owner anchors the resulting expression's position at the
// owning string token, since the re-lexed text has no span of its own.
func (p *Parser) parsePlaceholder(owner lexer.Token, raw, exprSrc string) ast.Expr {
	subDiag := diag.NewSink(p.path)
	toks, ok := lexer.Lex(p.path, []byte(exprSrc), p.arena, subDiag)
	if !ok {
		dg, _ := subDiag.Diagnostic()
		p.interpFail(owner, raw, "%s", dg.Message)
		return nil
	}

	sub := New(toks, p.path, p.arena, subDiag)

	if sub.curTok.Kind != lexer.IDENT {
		p.interpFail(owner, raw, "expected identifier")
		return nil
	}
	var expr ast.Expr = arena.Make(p.arena, ast.Ident{Pos: posOf(owner), Name: sub.curTok.Text})
	sub.nextToken()

	for {
		switch sub.curTok.Kind {
		case lexer.DOT:
			sub.nextToken()
			if sub.curTok.Kind != lexer.IDENT {
				p.interpFail(owner, raw, "expected member name after '.'")
				return nil
			}
			name := sub.curTok.Text
			sub.nextToken()
			expr = arena.Make(p.arena, ast.Member{Pos: posOf(owner), X: expr, Name: name})

		case lexer.LBRACKET:
			sub.nextToken()
			if sub.curTok.Kind == lexer.RBRACKET {
				p.interpFail(owner, raw, "empty index")
				return nil
			}
			idx := sub.parseExpr(0)
			if idx == nil || !sub.ok() {
				p.interpFail(owner, raw, "invalid index expression")
				return nil
			}
			if sub.curTok.Kind != lexer.RBRACKET {
				p.interpFail(owner, raw, "unterminated '['")
				return nil
			}
			sub.nextToken()
			expr = arena.Make(p.arena, ast.Index{Pos: posOf(owner), X: expr, I: idx})

		case lexer.SEMI:
			// ASI may have inserted one at the end of the re-lexed body;
			// it carries no meaning here.
			sub.nextToken()

		case lexer.EOF:
			return expr

		default:
			if placeholderOperators[sub.curTok.Kind] {
				p.interpFail(owner, raw, "operators not allowed in placeholder")
			} else {
				p.interpFail(owner, raw, "unexpected token")
			}
			return nil
		}
	}
}
