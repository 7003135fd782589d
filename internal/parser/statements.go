package parser

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

// parseBlock parses a `{ stmt* }` block, introducing a fresh scope at
// resolution time.
func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(lexer.LBRACE).Span
	p.skipNewlines()
	var stmts []ast.Stmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmts = append(stmts, p.parseStmt())
		p.skipNewlines()
	}
	end := p.expect(lexer.RBRACE).Span
	return ast.NewBlock(diag.Join(start, end), stmts)
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.at(lexer.LET):
		return p.parseLetStmt()
	case p.at(lexer.VAR):
		return p.parseVarStmt()
	case p.at(lexer.IF):
		return p.parseIfStmt()
	case p.at(lexer.FOR):
		return p.parseForStmt()
	case p.at(lexer.WHILE):
		return p.parseWhileStmt()
	case p.at(lexer.LOOP):
		return p.parseLoopStmt()
	case p.at(lexer.MATCH):
		return p.parseMatchStmt()
	case p.at(lexer.RETURN):
		return p.parseReturnStmt()
	case p.at(lexer.BREAK):
		return p.parseBreakStmt()
	case p.at(lexer.LBRACE):
		return p.parseBlock()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // let
	pat := p.parsePattern()
	var ty ast.TypeExpr
	if p.at(lexer.COLON) {
		p.advance()
		ty = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	init := p.parseExpr()
	return &ast.LetStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Pattern: pat, Type: ty, Init: init}
}

func (p *Parser) parseVarStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // var
	name := p.expect(lexer.IDENT).Lexeme
	var ty ast.TypeExpr
	if p.at(lexer.COLON) {
		p.advance()
		ty = p.parseType()
	}
	var init ast.Expr
	if p.at(lexer.ASSIGN) {
		p.advance()
		init = p.parseExpr()
	}
	return &ast.VarStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Type: ty, Init: init}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // if
	cond := p.parseExprNoRecordLit()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Cond: cond, Then: then}
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
		stmt.Base = ast.NewBase(diag.Join(start, p.prevSpan()))
	}
	return stmt
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // for
	pat := p.parsePattern()
	p.expect(lexer.IN)
	iterable := p.parseExprNoRecordLit()
	iterable = p.maybeRangeTail(iterable)
	body := p.parseBlock()
	return &ast.ForStmt{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Pattern: pat, Iterable: iterable, Body: body,
	}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // while
	cond := p.parseExprNoRecordLit()
	body := p.parseBlock()
	return &ast.WhileStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Cond: cond, Body: body}
}

func (p *Parser) parseLoopStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // loop
	body := p.parseBlock()
	return &ast.LoopStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Body: body}
}

func (p *Parser) parseMatchStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // match
	subject := p.parseExprNoRecordLit()
	arms := p.parseMatchArms()
	return &ast.MatchStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Subject: subject, Arms: arms}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // return
	var value ast.Expr
	if !p.at(lexer.NEWLINE) && !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		value = p.parseExpr()
	}
	return &ast.ReturnStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Value: value}
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	start := p.cur().Span
	p.advance() // break
	stmt := &ast.BreakStmt{Base: ast.NewBase(start)}
	if p.at(lexer.AT) {
		p.advance()
		stmt.Label = p.expect(lexer.IDENT).Lexeme
	}
	if !p.at(lexer.NEWLINE) && !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmt.Value = p.parseExpr()
	}
	stmt.Base = ast.NewBase(diag.Join(start, p.prevSpan()))
	return stmt
}

// parseExprOrAssignStmt parses either a plain expression statement or an
// assignment, disambiguated by a following `=`.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur().Span
	expr := p.parseExpr()
	if p.at(lexer.ASSIGN) {
		p.advance()
		value := p.parseExpr()
		return &ast.Assignment{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Target: expr, Value: value}
	}
	return &ast.ExprStmt{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Expr: expr}
}
