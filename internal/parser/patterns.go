package parser

import (
	"unicode"

	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

// parsePattern parses a full pattern, including trailing `| alt` or-pattern
// chains and a trailing `: Type` annotation.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePrimaryPattern()

	if p.at(lexer.PIPE) {
		alts := []ast.Pattern{first}
		for p.at(lexer.PIPE) {
			p.advance()
			alts = append(alts, p.parsePrimaryPattern())
		}
		first = &ast.OrPattern{Base: ast.NewBase(diag.Join(first.Span(), p.prevSpan())), Alternatives: alts}
	}

	if p.at(lexer.COLON) {
		p.advance()
		ty := p.parseType()
		first = &ast.TypedPattern{Base: ast.NewBase(diag.Join(first.Span(), p.prevSpan())), Inner: first, Type: ty}
	}

	return first
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	start := p.cur().Span

	switch {
	case p.at(lexer.IDENT) && p.cur().Lexeme == "_":
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(start)}

	case p.at(lexer.VAR):
		p.advance()
		name := p.expect(lexer.IDENT).Lexeme
		return &ast.IdentPattern{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Mutable: true}

	case p.at(lexer.MINUS), p.at(lexer.INT), p.at(lexer.FLOAT), p.at(lexer.STRING), p.at(lexer.CHAR), p.at(lexer.TRUE), p.at(lexer.FALSE):
		return p.parseLiteralOrRangePattern(start)

	case p.at(lexer.LPAREN):
		return p.parseTuplePattern(start)

	case p.at(lexer.DOTDOT):
		p.advance()
		return &ast.RestPattern{Base: ast.NewBase(diag.Join(start, p.prevSpan()))}

	case p.at(lexer.IDENT):
		name := p.cur().Lexeme
		if startsUpper(name) {
			return p.parseConstructorOrRecordPattern(start)
		}
		p.advance()
		return &ast.IdentPattern{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name}

	default:
		p.errf(start, "expected a pattern, found %s", describeFound(p.cur()))
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(start)}
	}
}

func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsUpper([]rune(s)[0])
}

func (p *Parser) parseLiteralOrRangePattern(start diag.Span) ast.Pattern {
	lit := p.parseLiteralExpr()
	if p.at(lexer.DOTDOT) || p.at(lexer.DOTDOTEQ) {
		inclusive := p.at(lexer.DOTDOTEQ)
		p.advance()
		end := p.parseLiteralExpr()
		return &ast.RangePattern{
			Base: ast.NewBase(diag.Join(start, p.prevSpan())), Start: lit, End: end, Inclusive: inclusive,
		}
	}
	return &ast.LiteralPattern{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Value: lit}
}

// parseLiteralExpr parses one literal token (with an optional leading
// unary minus) into an Expr, for use inside LiteralPattern/RangePattern.
func (p *Parser) parseLiteralExpr() ast.Expr {
	start := p.cur().Span
	neg := false
	if p.at(lexer.MINUS) {
		neg = true
		p.advance()
	}
	tok := p.advance()
	span := diag.Join(start, p.prevSpan())
	switch tok.Kind {
	case lexer.INT:
		v := tok.IntVal
		if neg {
			v = -v
		}
		return &ast.IntLit{Base: ast.NewBase(span), Value: v, Suffix: tok.Suffix}
	case lexer.FLOAT:
		v := tok.FloatVal
		if neg {
			v = -v
		}
		return &ast.FloatLit{Base: ast.NewBase(span), Value: v, Suffix: tok.Suffix}
	case lexer.STRING:
		return &ast.StringLit{Base: ast.NewBase(span), Value: tok.Lexeme}
	case lexer.CHAR:
		return &ast.CharLit{Base: ast.NewBase(span), Value: rune(tok.IntVal)}
	case lexer.TRUE:
		return &ast.BoolLit{Base: ast.NewBase(span), Value: true}
	case lexer.FALSE:
		return &ast.BoolLit{Base: ast.NewBase(span), Value: false}
	default:
		p.errf(span, "expected a literal, found %s", describeFound(tok))
		return &ast.IntLit{Base: ast.NewBase(span)}
	}
}

func (p *Parser) parseTuplePattern(start diag.Span) ast.Pattern {
	p.advance() // (
	var elems []ast.Pattern
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		elems = append(elems, p.parsePattern())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return &ast.TuplePattern{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Elems: elems}
}

func (p *Parser) parseConstructorOrRecordPattern(start diag.Span) ast.Pattern {
	name := p.advance().Lexeme

	if p.at(lexer.LPAREN) {
		p.advance()
		var positional []ast.Pattern
		var named []ast.FieldPattern
		isNamed := p.at(lexer.IDENT) && p.peekAt(1).Kind == lexer.COLON
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			if isNamed {
				fname := p.expect(lexer.IDENT).Lexeme
				p.expect(lexer.COLON)
				named = append(named, ast.FieldPattern{Name: fname, Pattern: p.parsePattern()})
			} else {
				positional = append(positional, p.parsePattern())
			}
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
		return &ast.ConstructorPattern{
			Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Positional: positional, Named: named,
		}
	}

	if p.at(lexer.LBRACE) {
		p.advance()
		var fields []ast.FieldPattern
		rest := false
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			if p.at(lexer.DOTDOT) {
				p.advance()
				rest = true
				break
			}
			fname := p.expect(lexer.IDENT).Lexeme
			var fpat ast.Pattern = &ast.IdentPattern{Base: ast.NewBase(p.prevSpan()), Name: fname}
			if p.at(lexer.COLON) {
				p.advance()
				fpat = p.parsePattern()
			}
			fields = append(fields, ast.FieldPattern{Name: fname, Pattern: fpat})
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACE)
		return &ast.RecordPattern{
			Base: ast.NewBase(diag.Join(start, p.prevSpan())), TypeName: name, Fields: fields, Rest: rest,
		}
	}

	// Nullary variant constructor, e.g. `Nil`, `None`.
	return &ast.ConstructorPattern{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name}
}
