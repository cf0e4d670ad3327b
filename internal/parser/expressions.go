package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

// precedence is the Pratt binding power table from §4.4.7. Assignment
// operators are right-associative (next_min = prec); everything else is
// left-associative (next_min = prec + 1).
var precedence = map[lexer.TokenKind]int{
	lexer.ASSIGN:  1,
	lexer.PLUSEQ:  1,
	lexer.MINUSEQ: 1,
	lexer.STAREQ:  1,
	lexer.SLASHEQ: 1,

	lexer.COALESCE: 2,
	lexer.OR:       3,
	lexer.AND:      4,
	lexer.EQ:       5,
	lexer.NEQ:      5,
	lexer.LT:       6,
	lexer.LE:       6,
	lexer.GT:       6,
	lexer.GE:       6,
	lexer.PLUS:     7,
	lexer.MINUS:    7,
	lexer.STAR:     8,
	lexer.SLASH:    8,
	lexer.PCT:      8,
}

var assignOps = map[lexer.TokenKind]bool{
	lexer.ASSIGN:  true,
	lexer.PLUSEQ:  true,
	lexer.MINUSEQ: true,
	lexer.STAREQ:  true,
	lexer.SLASHEQ: true,
}

func isAssignOp(k lexer.TokenKind) bool { return assignOps[k] }

// parseExpr climbs from minPrec, per the precedence table in §4.4.7.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}

	for {
		prec, ok := precedence[p.curTok.Kind]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.curTok
		nextMin := prec + 1
		if isAssignOp(opTok.Kind) {
			nextMin = prec
		}
		p.nextToken()
		rhs := p.parseExpr(nextMin)
		if rhs == nil {
			return nil
		}
		if isAssignOp(opTok.Kind) {
			lhs = arena.Make(p.arena, ast.Assign{Pos: posOf(opTok), Op: string(opTok.Kind), Target: lhs, Value: rhs})
		} else {
			lhs = arena.Make(p.arena, ast.Binary{Pos: posOf(opTok), Op: string(opTok.Kind), Lhs: lhs, Rhs: rhs})
		}
	}
	return lhs
}

// parseUnary handles the right-associative prefix operators `# ! -`
// before falling through to postfix parsing of a primary expression.
func (p *Parser) parseUnary() ast.Expr {
	switch p.curTok.Kind {
	case lexer.HASH, lexer.BANG, lexer.MINUS:
		opTok := p.curTok
		p.nextToken()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return arena.Make(p.arena, ast.Unary{Pos: posOf(opTok), Op: string(opTok.Kind), X: x})
	}
	return p.parsePostfix()
}

// statementBoundary is the set of tokens that end a bang-call sugar's
// trailing argument list (§4.4.8).
var statementBoundary = map[lexer.TokenKind]bool{
	lexer.SEMI: true, lexer.EOF: true, lexer.RBRACE: true,
	lexer.RPAREN: true, lexer.RBRACKET: true, lexer.COMMA: true, lexer.COLON: true,
}

// parsePostfix parses a primary expression followed by any chain of
// call, index, member, and bang-call-sugar postfix operators.
func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	if x == nil {
		return nil
	}

	for {
		switch p.curTok.Kind {
		case lexer.LPAREN:
			start := p.curTok
			p.nextToken()
			args, names, err := p.parseCallArgs()
			if err {
				return nil
			}
			if !p.expect(lexer.RPAREN, "')'") {
				return nil
			}
			x = p.buildCallOrNew(posOf(start), x, args, names)

		case lexer.LBRACKET:
			start := p.curTok
			p.nextToken()
			idx := p.parseExpr(0)
			if idx == nil {
				return nil
			}
			if !p.expect(lexer.RBRACKET, "']'") {
				return nil
			}
			x = arena.Make(p.arena, ast.Index{Pos: posOf(start), X: x, I: idx})

		case lexer.DOT:
			start := p.curTok
			p.nextToken()
			if p.curTok.Kind != lexer.IDENT {
				p.fail("expected identifier after '.'")
				return nil
			}
			name := p.curTok.Text
			p.nextToken()
			x = arena.Make(p.arena, ast.Member{Pos: posOf(start), X: x, Name: name})

		case lexer.BANG:
			start := p.curTok
			p.nextToken()
			if p.curTok.Kind != lexer.IDENT {
				p.fail("expected identifier after '!'")
				return nil
			}
			name := p.curTok.Text
			p.nextToken()
			member := arena.Make(p.arena, ast.Member{Pos: posOf(start), X: x, Name: name})

			var args []ast.Expr
			for !statementBoundary[p.curTok.Kind] {
				a := p.parseExpr(0)
				if a == nil {
					return nil
				}
				args = append(args, a)
				if p.curTok.Kind == lexer.COMMA {
					p.nextToken()
					continue
				}
				break
			}
			x = arena.Make(p.arena, ast.Call{Pos: posOf(start), Fn: member, Args: arena.MakeSlice(p.arena, args)})

		default:
			return x
		}
	}
}

// parseCallArgs parses a comma-separated argument list, already past the
// opening '(' and stopping before ')'. Each argument may be prefixed
// `IDENT :`. err is true only on a parse failure.
func (p *Parser) parseCallArgs() (args []ast.Expr, names []string, err bool) {
	if p.curTok.Kind == lexer.RPAREN {
		return nil, nil, false
	}
	anyNamed := false
	for {
		name := ""
		if p.curTok.Kind == lexer.IDENT && p.peekTok.Kind == lexer.COLON {
			name = p.curTok.Text
			p.nextToken()
			p.nextToken()
			anyNamed = true
		}
		a := p.parseExpr(0)
		if a == nil {
			return nil, nil, true
		}
		args = append(args, a)
		names = append(names, name)
		if p.curTok.Kind != lexer.COMMA {
			break
		}
		p.nextToken()
	}
	args = arena.MakeSlice(p.arena, args)
	if !anyNamed {
		return args, nil, false
	}
	return args, arena.MakeSlice(p.arena, names), false
}

// buildCallOrNew implements the named-argument → New rewrite from §4.4.9.
func (p *Parser) buildCallOrNew(pos ast.Pos, callee ast.Expr, args []ast.Expr, names []string) ast.Expr {
	if names == nil {
		return arena.Make(p.arena, ast.Call{Pos: pos, Fn: callee, Args: args})
	}

	qualified, ok := qualifiedCalleeName(callee)
	if !ok {
		p.fail("named args are only supported for constructors")
		return nil
	}
	return arena.Make(p.arena, ast.New{Pos: pos, Name: qualified, Args: args, ArgNames: names})
}

// qualifiedCalleeName reports the dotted name of callee if it is a bare
// identifier or a single `ident.ident` member access, per §4.4.9.
func qualifiedCalleeName(callee ast.Expr) (string, bool) {
	switch v := callee.(type) {
	case *ast.Ident:
		return v.Name, true
	case *ast.Member:
		if base, ok := v.X.(*ast.Ident); ok {
			return base.Name + "." + v.Name, true
		}
	}
	return "", false
}
