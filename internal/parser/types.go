package parser

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"f32": true, "f64": true, "bool": true, "char": true, "string": true, "void": true,
}

// parseType parses a full type expression.
func (p *Parser) parseType() ast.TypeExpr {
	start := p.cur().Span

	if p.at(lexer.IDENT) && p.cur().Lexeme == "_" {
		p.advance()
		return &ast.InferredType{Base: ast.NewBase(start)}
	}

	if p.at(lexer.SELF_TYPE) {
		p.advance()
		return &ast.SelfType{Base: ast.NewBase(start)}
	}

	if p.at(lexer.EFFECT) || p.at(lexer.FN) {
		return p.parseFuncType()
	}

	if p.at(lexer.LPAREN) {
		return p.parseTupleType()
	}

	if p.at(lexer.LBRACKET) {
		return p.parseArrayType()
	}

	if p.at(lexer.IDENT) {
		name := p.cur().Lexeme
		switch name {
		case "IO":
			p.advance()
			p.expect(lexer.LBRACKET)
			inner := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.IOType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Inner: inner}
		case "Option":
			p.advance()
			p.expect(lexer.LBRACKET)
			inner := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.OptionType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Inner: inner}
		case "Result":
			p.advance()
			p.expect(lexer.LBRACKET)
			ok := p.parseType()
			p.expect(lexer.COMMA)
			errT := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.ResultType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Ok: ok, Err: errT}
		}
		return p.parseNamedOrPathType(start)
	}

	p.errf(start, "expected a type, found %s", describeFound(p.cur()))
	p.advance()
	return &ast.InferredType{Base: ast.NewBase(start)}
}

func (p *Parser) parseNamedOrPathType(start diag.Span) ast.TypeExpr {
	segs := []string{p.expect(lexer.IDENT).Lexeme}
	for p.at(lexer.DOT) && p.peekAt(1).Kind == lexer.IDENT {
		p.advance()
		segs = append(segs, p.expect(lexer.IDENT).Lexeme)
	}

	var args []ast.TypeExpr
	if p.at(lexer.LBRACKET) {
		p.advance()
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			args = append(args, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACKET)
	}

	span := diag.Join(start, p.prevSpan())
	if len(segs) == 1 {
		if primitiveNames[segs[0]] && args == nil {
			return &ast.PrimitiveType{Base: ast.NewBase(span), Name: segs[0]}
		}
		if args != nil {
			return &ast.GenericType{Base: ast.NewBase(span), BaseName: segs[0], Args: args}
		}
		return &ast.NamedType{Base: ast.NewBase(span), Name: segs[0]}
	}
	return &ast.PathType{Base: ast.NewBase(span), Segments: segs, Args: args}
}

func (p *Parser) parseFuncType() ast.TypeExpr {
	start := p.cur().Span
	effect := false
	if p.at(lexer.EFFECT) {
		effect = true
		p.advance()
	}
	p.expect(lexer.FN)
	p.expect(lexer.LPAREN)
	var params []ast.TypeExpr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		params = append(params, p.parseType())
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
	return &ast.FuncType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Params: params, Return: ret, Effect: effect}
}

func (p *Parser) parseTupleType() ast.TypeExpr {
	start := p.cur().Span
	p.expect(lexer.LPAREN)
	var elems []ast.TypeExpr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		elems = append(elems, p.parseType())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return &ast.TupleType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Elems: elems}
}

func (p *Parser) parseArrayType() ast.TypeExpr {
	start := p.cur().Span
	p.expect(lexer.LBRACKET)
	elem := p.parseType()
	var size *int
	if p.at(lexer.SEMI) {
		p.advance()
		tok := p.expect(lexer.INT)
		n := int(tok.IntVal)
		size = &n
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Elem: elem, Size: size}
}

// parseGenericParams parses an optional `[T: Bound + Bound, U]` list.
func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.at(lexer.LBRACKET) {
		return nil
	}
	p.advance()
	var params []ast.GenericParam
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		name := p.expect(lexer.IDENT).Lexeme
		var bounds []string
		if p.at(lexer.COLON) {
			p.advance()
			bounds = append(bounds, p.expect(lexer.IDENT).Lexeme)
			for p.at(lexer.PLUS) {
				p.advance()
				bounds = append(bounds, p.expect(lexer.IDENT).Lexeme)
			}
		}
		params = append(params, ast.GenericParam{Name: name, Bounds: bounds})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return params
}

// parseTypeArgs parses an optional `[T, U]` explicit generic-argument list
// used at call sites and identifier references.
func (p *Parser) parseTypeArgs() []ast.TypeExpr {
	if !p.at(lexer.LBRACKET) {
		return nil
	}
	p.advance()
	var args []ast.TypeExpr
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		args = append(args, p.parseType())
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return args
}

// parseWhereClauses parses an optional `where T: Bound, U: Bound` suffix.
func (p *Parser) parseWhereClauses() []ast.WhereClause {
	if !p.at(lexer.WHERE) {
		return nil
	}
	p.advance()
	var clauses []ast.WhereClause
	for {
		tp := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		bound := p.expect(lexer.IDENT).Lexeme
		clauses = append(clauses, ast.WhereClause{TypeParam: tp, Bound: bound})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return clauses
}
