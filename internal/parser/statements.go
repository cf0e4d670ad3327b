package parser

import (
	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/lexer"
)

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.curTok
	if !p.expect(lexer.LBRACE, "'{'") {
		return nil
	}
	blk := arena.Make(p.arena, ast.BlockStmt{Pos: posOf(start)})
	p.skipSemis()
	for p.ok() && p.curTok.Kind != lexer.RBRACE && p.curTok.Kind != lexer.EOF {
		s := p.parseStmt()
		if s == nil {
			return nil
		}
		blk.Stmts = append(blk.Stmts, s)
		p.skipSemis()
	}
	if !p.expect(lexer.RBRACE, "'}'") {
		return nil
	}
	blk.Stmts = arena.MakeSlice(p.arena, blk.Stmts)
	return blk
}

// parseStmt parses one statement, per §4.4.6 of the grammar.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Kind {
	case lexer.KW_LET:
		return p.parseLetStmt()
	case lexer.KW_CONST:
		return p.parseConstStmt()
	case lexer.KW_IF:
		return p.parseIfStmt()
	case lexer.KW_FOR:
		return p.parseForStmt()
	case lexer.KW_RETURN:
		return p.parseReturnStmt()
	case lexer.KW_BREAK:
		start := p.curTok
		p.nextToken()
		p.maybe(lexer.SEMI)
		return arena.Make(p.arena, ast.BreakStmt{Pos: posOf(start)})
	case lexer.KW_CONTINUE:
		start := p.curTok
		p.nextToken()
		p.maybe(lexer.SEMI)
		return arena.Make(p.arena, ast.ContinueStmt{Pos: posOf(start)})
	case lexer.LBRACE:
		blk := p.parseBlock()
		if blk == nil {
			return nil
		}
		return blk
	default:
		start := p.curTok
		expr := p.parseExpr(0)
		if expr == nil {
			return nil
		}
		p.maybe(lexer.SEMI)
		return arena.Make(p.arena, ast.ExprStmt{Pos: posOf(start), Expr: expr})
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.curTok
	p.nextToken() // 'let'
	isMut := p.maybe(lexer.QMARK)
	if p.curTok.Kind != lexer.IDENT {
		p.fail("expected identifier after 'let'")
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
	return arena.Make(p.arena, ast.LetStmt{Pos: posOf(start), Name: name, IsMut: isMut, Expr: expr})
}

func (p *Parser) parseConstStmt() *ast.ConstStmt {
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
	return arena.Make(p.arena, ast.ConstStmt{Pos: posOf(start), Name: name, Expr: expr})
}

// parseIfArmBody parses either `: stmt` or a `{ ... }` block and returns
// it as a single ast.Stmt (an ast.BlockStmt for the block form);
// stmtAsExpr then gives both forms the ast.Block shape.
func (p *Parser) parseIfArmBody() ast.Stmt {
	if p.curTok.Kind == lexer.COLON {
		p.nextToken()
		return p.parseStmt()
	}
	return p.parseBlock()
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.curTok
	arms, ok := p.parseIfArms()
	if !ok {
		return nil
	}
	return arena.Make(p.arena, ast.IfStmt{Pos: posOf(start), Arms: arena.MakeSlice(p.arena, arms)})
}

// parseIfArms parses the if/elif/else arm list of the if-statement
// production. Each arm's Body is an ast.Expr; statement-form bodies are
// wrapped in an ast.Block so ast.IfStmt can share the ast.IfArm type with
// the if-expression, whose arms parseIfExpr parses with its own grammar.
func (p *Parser) parseIfArms() ([]ast.IfArm, bool) {
	var arms []ast.IfArm

	p.nextToken() // 'if'
	hasParen := p.maybe(lexer.LPAREN)
	cond := p.parseExpr(0)
	if cond == nil {
		return nil, false
	}
	if hasParen && !p.expect(lexer.RPAREN, "')'") {
		return nil, false
	}
	body := p.stmtAsExpr(p.parseIfArmBody())
	if body == nil {
		return nil, false
	}
	arms = append(arms, ast.IfArm{Cond: cond, Body: body})

	for p.curTok.Kind == lexer.KW_ELIF {
		p.nextToken()
		hasParen := p.maybe(lexer.LPAREN)
		cond := p.parseExpr(0)
		if cond == nil {
			return nil, false
		}
		if hasParen && !p.expect(lexer.RPAREN, "')'") {
			return nil, false
		}
		body := p.stmtAsExpr(p.parseIfArmBody())
		if body == nil {
			return nil, false
		}
		arms = append(arms, ast.IfArm{Cond: cond, Body: body})
	}

	if p.curTok.Kind == lexer.KW_ELSE {
		p.nextToken()
		body := p.stmtAsExpr(p.parseIfArmBody())
		if body == nil {
			return nil, false
		}
		arms = append(arms, ast.IfArm{Cond: nil, Body: body})
	}

	return arms, true
}

// stmtAsExpr wraps a statement as an ast.Expr so it can live in an
// ast.IfArm.Body: an ast.BlockStmt becomes an ast.Block, anything else is
// wrapped as a single-statement ast.Block.
func (p *Parser) stmtAsExpr(s ast.Stmt) ast.Expr {
	if s == nil {
		return nil
	}
	if blk, ok := s.(*ast.BlockStmt); ok {
		return arena.Make(p.arena, ast.Block{Pos: blk.Pos, Stmts: blk.Stmts})
	}
	return arena.Make(p.arena, ast.Block{Pos: s.Position(), Stmts: arena.MakeSlice(p.arena, []ast.Stmt{s})})
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.curTok
	p.nextToken() // 'for'
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}

	// foreach form: IDENT in expr
	if p.curTok.Kind == lexer.IDENT && p.peekTok.Kind == lexer.KW_IN {
		name := p.curTok.Text
		p.nextToken() // ident
		p.nextToken() // 'in'
		iter := p.parseExpr(0)
		if iter == nil {
			return nil
		}
		if !p.expect(lexer.RPAREN, "')'") {
			return nil
		}
		body := p.parseStmt()
		if body == nil {
			return nil
		}
		return arena.Make(p.arena, ast.ForEachStmt{Pos: posOf(start), Name: name, Iter: iter, Body: body})
	}

	// C-style form: init? ; cond? ; step? )
	var init ast.Stmt
	if p.curTok.Kind != lexer.SEMI {
		init = p.parseStmt()
		if init == nil {
			return nil
		}
	} else {
		p.nextToken()
	}

	var cond ast.Expr
	if p.curTok.Kind != lexer.SEMI {
		cond = p.parseExpr(0)
		if cond == nil {
			return nil
		}
	}
	if !p.expect(lexer.SEMI, "';'") {
		return nil
	}

	var step ast.Expr
	if p.curTok.Kind != lexer.RPAREN {
		step = p.parseExpr(0)
		if step == nil {
			return nil
		}
	}
	if !p.expect(lexer.RPAREN, "')'") {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}
	return arena.Make(p.arena, ast.ForStmt{Pos: posOf(start), Init: init, Cond: cond, Step: step, Body: body})
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.curTok
	p.nextToken() // 'return'
	if p.curTok.Kind == lexer.SEMI || p.curTok.Kind == lexer.RBRACE {
		p.maybe(lexer.SEMI)
		return arena.Make(p.arena, ast.ReturnStmt{Pos: posOf(start)})
	}
	expr := p.parseExpr(0)
	if expr == nil {
		return nil
	}
	p.maybe(lexer.SEMI)
	return arena.Make(p.arena, ast.ReturnStmt{Pos: posOf(start), Expr: expr})
}
