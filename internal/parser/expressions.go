package parser

import (
	"strings"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

// parseExpr is the entry point of the precedence-climbing expression
// parser: logical-or is the lowest-precedence level.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(lexer.OR) {
		start := left.Span()
		p.advance()
		right := p.parseAnd()
		left = &ast.Binary{Base: ast.NewBase(diag.Join(start, right.Span())), Op: "or", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(lexer.AND) {
		start := left.Span()
		p.advance()
		right := p.parseEquality()
		left = &ast.Binary{Base: ast.NewBase(diag.Join(start, right.Span())), Op: "and", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.at(lexer.EQ) || p.at(lexer.NEQ) {
		op := p.advance()
		right := p.parseComparison()
		left = &ast.Binary{Base: ast.NewBase(diag.Join(left.Span(), right.Span())), Op: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.at(lexer.LT) || p.at(lexer.LE) || p.at(lexer.GT) || p.at(lexer.GE) || p.at(lexer.IS) || p.at(lexer.IN) {
		op := p.advance()
		right := p.parseAdditive()
		opLex := op.Lexeme
		if opLex == "" {
			opLex = op.Kind.String()
		}
		left = &ast.Binary{Base: ast.NewBase(diag.Join(left.Span(), right.Span())), Op: opLex, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Base: ast.NewBase(diag.Join(left.Span(), right.Span())), Op: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Base: ast.NewBase(diag.Join(left.Span(), right.Span())), Op: op.Lexeme, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(lexer.MINUS) || p.at(lexer.NOT) {
		op := p.advance()
		operand := p.parseUnary()
		opLex := op.Lexeme
		if op.Kind == lexer.NOT {
			opLex = "not"
		}
		return &ast.Unary{Base: ast.NewBase(diag.Join(op.Span, operand.Span())), Op: opLex, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(lexer.DOT) && p.peekAt(1).Kind == lexer.INT:
			p.advance()
			tok := p.advance()
			expr = &ast.TupleAccess{Base: ast.NewBase(diag.Join(expr.Span(), tok.Span)), Target: expr, Index: int(tok.IntVal)}

		case p.at(lexer.DOT):
			p.advance()
			name := p.expect(lexer.IDENT).Lexeme
			typeArgs := p.parseTypeArgs()
			if p.at(lexer.LPAREN) {
				args := p.parseArgList()
				expr = &ast.MethodCall{
					Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Receiver: expr, Name: name,
					TypeArgs: typeArgs, Args: args,
				}
			} else {
				expr = &ast.FieldAccess{Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Target: expr, Name: name}
			}

		case p.at(lexer.LBRACKET):
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.RBRACKET)
			expr = &ast.IndexAccess{Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Target: expr, Index: idx}

		case p.at(lexer.LPAREN):
			args := p.parseArgList()
			expr = &ast.Call{Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Callee: expr, Args: args}

		case p.at(lexer.QUESTION):
			p.advance()
			expr = &ast.TryExpr{Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Value: expr}

		case p.at(lexer.QQ):
			p.advance()
			def := p.parseUnary()
			expr = &ast.CoalesceExpr{Base: ast.NewBase(diag.Join(expr.Span(), def.Span())), Value: expr, Default: def}

		case p.at(lexer.AS):
			p.advance()
			ty := p.parseType()
			expr = &ast.Cast{Base: ast.NewBase(diag.Join(expr.Span(), p.prevSpan())), Value: expr, Type: ty}

		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span

	switch {
	case p.at(lexer.INT):
		tok := p.advance()
		return &ast.IntLit{Base: ast.NewBase(tok.Span), Value: tok.IntVal, Suffix: tok.Suffix}

	case p.at(lexer.FLOAT):
		tok := p.advance()
		return &ast.FloatLit{Base: ast.NewBase(tok.Span), Value: tok.FloatVal, Suffix: tok.Suffix}

	case p.at(lexer.STRING):
		tok := p.advance()
		return p.parseStringLiteral(tok)

	case p.at(lexer.CHAR):
		tok := p.advance()
		return &ast.CharLit{Base: ast.NewBase(tok.Span), Value: rune(tok.IntVal)}

	case p.at(lexer.TRUE):
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(start), Value: true}

	case p.at(lexer.FALSE):
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(start), Value: false}

	case p.at(lexer.SELF):
		p.advance()
		return &ast.SelfExpr{Base: ast.NewBase(start)}

	case p.at(lexer.IDENT):
		name := p.advance().Lexeme
		typeArgs := p.parseTypeArgs()
		ident := &ast.Ident{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, TypeArgs: typeArgs}
		if startsUpper(name) && (p.at(lexer.LPAREN) || p.at(lexer.LBRACE)) {
			return p.parseVariantOrRecordLit(start, name)
		}
		return ident

	case p.at(lexer.LPAREN):
		return p.parseParenExpr(start)

	case p.at(lexer.LBRACKET):
		return p.parseArrayLit(start)

	case p.at(lexer.LBRACE):
		return p.parseUntypedRecordLit(start)

	case p.at(lexer.FN), p.at(lexer.EFFECT):
		return p.parseClosure(start)

	case p.at(lexer.MATCH):
		return p.parseMatchExpr(start)

	case p.at(lexer.DOTDOT), p.at(lexer.DOTDOTEQ):
		return p.parseRangeExprNoStart(start)

	default:
		p.errf(start, "expected an expression, found %s", describeFound(p.cur()))
		p.advance()
		return &ast.IntLit{Base: ast.NewBase(start)}
	}
}

func (p *Parser) parseRangeExprNoStart(start diag.Span) ast.Expr {
	inclusive := p.at(lexer.DOTDOTEQ)
	p.advance()
	var end ast.Expr
	if !p.atRangeEnd() {
		end = p.parseOr()
	}
	return &ast.RangeExpr{Base: ast.NewBase(diag.Join(start, p.prevSpan())), End: end, Inclusive: inclusive}
}

func (p *Parser) atRangeEnd() bool {
	return p.at(lexer.RPAREN) || p.at(lexer.RBRACKET) || p.at(lexer.RBRACE) ||
		p.at(lexer.NEWLINE) || p.at(lexer.SEMI) || p.at(lexer.EOF) || p.at(lexer.LBRACE)
}

// maybeRangeTail checks for a trailing `..`/`..=` after an already-parsed
// additive-level expression, producing a RangeExpr. Called from
// parseParenExpr / statement contexts where ranges appear (`for i in 0..n`).
func (p *Parser) maybeRangeTail(start ast.Expr) ast.Expr {
	if !p.at(lexer.DOTDOT) && !p.at(lexer.DOTDOTEQ) {
		return start
	}
	inclusive := p.at(lexer.DOTDOTEQ)
	p.advance()
	var end ast.Expr
	if !p.atRangeEnd() {
		end = p.parseOr()
	}
	return &ast.RangeExpr{
		Base: ast.NewBase(diag.Join(start.Span(), p.prevSpan())), Start: start, End: end, Inclusive: inclusive,
	}
}

func (p *Parser) parseParenExpr(start diag.Span) ast.Expr {
	p.advance() // (
	if p.at(lexer.RPAREN) {
		p.advance()
		return &ast.TupleLit{Base: ast.NewBase(diag.Join(start, p.prevSpan()))}
	}
	first := p.parseExpr()
	first = p.maybeRangeTail(first)
	if p.at(lexer.COMMA) {
		elems := []ast.Expr{first}
		for p.at(lexer.COMMA) {
			p.advance()
			if p.at(lexer.RPAREN) {
				break
			}
			elems = append(elems, p.maybeRangeTail(p.parseExpr()))
		}
		p.expect(lexer.RPAREN)
		return &ast.TupleLit{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Elems: elems}
	}
	p.expect(lexer.RPAREN)
	return &ast.Grouped{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Inner: first}
}

func (p *Parser) parseArrayLit(start diag.Span) ast.Expr {
	p.advance() // [
	var elems []ast.Expr
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		elems = append(elems, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayLit{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Elems: elems}
}

func (p *Parser) parseRecordFields() []ast.RecordFieldInit {
	p.expect(lexer.LBRACE)
	var fields []ast.RecordFieldInit
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.skipNewlines()
		if p.at(lexer.RBRACE) {
			break
		}
		name := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		value := p.parseExpr()
		fields = append(fields, ast.RecordFieldInit{Name: name, Value: value})
		p.skipNewlines()
		if p.at(lexer.COMMA) {
			p.advance()
			p.skipNewlines()
		} else {
			break
		}
	}
	p.skipNewlines()
	p.expect(lexer.RBRACE)
	return fields
}

func (p *Parser) parseUntypedRecordLit(start diag.Span) ast.Expr {
	fields := p.parseRecordFields()
	return &ast.RecordLit{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Fields: fields}
}

func (p *Parser) parseVariantOrRecordLit(start diag.Span, name string) ast.Expr {
	if p.at(lexer.LBRACE) {
		fields := p.parseRecordFields()
		typ := &ast.NamedType{Base: ast.NewBase(start), Name: name}
		return &ast.RecordLit{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Type: typ, Fields: fields}
	}
	args := p.parseArgList()
	return &ast.VariantCtor{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Args: args}
}

func (p *Parser) parseClosure(start diag.Span) ast.Expr {
	effect := false
	if p.at(lexer.EFFECT) {
		effect = true
		p.advance()
	}
	p.expect(lexer.FN)
	p.expect(lexer.LPAREN)
	var params []ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		pname := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		ptype := p.parseType()
		params = append(params, ast.Param{Name: pname, Type: ptype})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	var ret ast.TypeExpr = &ast.PrimitiveType{Base: ast.NewBase(p.cur().Span), Name: "void"}
	if p.at(lexer.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.Closure{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Params: params, ReturnType: ret, Effect: effect, Body: body,
	}
}

func (p *Parser) parseMatchArms() []ast.MatchArm {
	p.expect(lexer.LBRACE)
	p.skipNewlines()
	var arms []ast.MatchArm
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.at(lexer.IF) {
			p.advance()
			guard = p.parseExpr()
		}
		p.expect(lexer.FATARROW)
		p.skipNewlines()
		var body ast.MatchArmBody
		if p.at(lexer.LBRACE) {
			body.Block = p.parseBlock()
		} else {
			body.Expr = p.parseExpr()
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		p.skipNewlines()
		if p.at(lexer.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.expect(lexer.RBRACE)
	return arms
}

func (p *Parser) parseMatchExpr(start diag.Span) ast.Expr {
	p.advance() // match
	subject := p.parseExprNoRecordLit()
	arms := p.parseMatchArms()
	return &ast.MatchExpr{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Subject: subject, Arms: arms}
}

// parseExprNoRecordLit parses an expression in a position (match subject,
// if/while condition, for iterable) that a block follows. It parses exactly
// as parseExpr does: a `{` after a lowercase name, a literal or a closing
// bracket ends the expression, because no postfix form consumes `{`; an
// expression that starts with `{`, or an uppercase name directly followed
// by `{`, is still read as a record literal.
func (p *Parser) parseExprNoRecordLit() ast.Expr {
	return p.parseExpr()
}

// parseStringLiteral splits a scanned string's raw lexeme on `${...}`
// interpolation markers. The lexer hands back the literal text verbatim
// (escapes already decoded); interpolation markers survive lexing because
// `$`/`{`/`}` are ordinary characters inside a string, so splitting here
// keeps the lexer free of string-parsing-within-parsing.
func (p *Parser) parseStringLiteral(tok lexer.Token) ast.Expr {
	if !strings.Contains(tok.Lexeme, "${") {
		return &ast.StringLit{Base: ast.NewBase(tok.Span), Value: tok.Lexeme}
	}

	var parts []ast.InterpPart
	rest := tok.Lexeme
	for {
		i := strings.Index(rest, "${")
		if i < 0 {
			if rest != "" {
				parts = append(parts, ast.InterpPart{Literal: rest})
			}
			break
		}
		if i > 0 {
			parts = append(parts, ast.InterpPart{Literal: rest[:i]})
		}
		rest = rest[i+2:]
		j := strings.Index(rest, "}")
		if j < 0 {
			p.errf(tok.Span, "unterminated interpolation in string literal")
			break
		}
		exprSrc := rest[:j]
		rest = rest[j+1:]

		sub := New(exprSrc, p.bag)
		sub.arena = p.arena
		e := sub.parseExpr()
		parts = append(parts, ast.InterpPart{Expr: e})
	}

	return &ast.InterpString{Base: ast.NewBase(tok.Span), Parts: parts}
}
