package parser

import (
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

// parseImportDecl parses `import a.b.c` or `import a.b.{Foo, Bar as Baz}`.
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	start := p.cur().Span
	p.advance() // import
	var segs []string
	segs = append(segs, p.expect(lexer.IDENT).Lexeme)
	for p.at(lexer.DOT) {
		if p.peekAt(1).Kind == lexer.LBRACE {
			p.advance()
			break
		}
		p.advance()
		segs = append(segs, p.expect(lexer.IDENT).Lexeme)
	}

	var items []ast.ImportItem
	if p.at(lexer.LBRACE) {
		p.advance()
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			name := p.expect(lexer.IDENT).Lexeme
			alias := ""
			if p.at(lexer.AS) {
				p.advance()
				alias = p.expect(lexer.IDENT).Lexeme
			}
			items = append(items, ast.ImportItem{Name: name, Alias: alias})
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACE)
	}

	return &ast.ImportDecl{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Path: segs, Items: items}
}

// parseDecl parses one top-level declaration, consuming a leading `pub`
// where the declaration kind supports it.
func (p *Parser) parseDecl() ast.Decl {
	start := p.cur().Span
	public := false
	if p.at(lexer.PUB) {
		public = true
		p.advance()
	}

	switch {
	case p.at(lexer.FN), p.at(lexer.EFFECT):
		return p.parseFuncDecl(start, public)
	case p.at(lexer.TYPE):
		return p.parseTypeDecl(start, public)
	case p.at(lexer.TRAIT):
		return p.parseTraitDecl(start, public)
	case p.at(lexer.IMPL):
		return p.parseImplDecl(start)
	case p.at(lexer.CONST):
		return p.parseConstDecl(start, public)
	case p.at(lexer.LET):
		return p.parseTopLevelLet(start, public)
	case p.at(lexer.TEST):
		return p.parseTestDecl(start)
	default:
		p.errf(start, "expected a declaration, found %s", describeFound(p.cur()))
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(lexer.LPAREN)
	var params []ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		if p.at(lexer.SELF) {
			p.advance()
			params = append(params, ast.Param{Name: "self", Type: &ast.SelfType{Base: ast.NewBase(p.prevSpan())}})
		} else {
			name := p.expect(lexer.IDENT).Lexeme
			p.expect(lexer.COLON)
			ty := p.parseType()
			params = append(params, ast.Param{Name: name, Type: ty})
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseFuncDecl(start diag.Span, public bool) *ast.FuncDecl {
	doc := p.takeDoc()
	effect := false
	if p.at(lexer.EFFECT) {
		effect = true
		p.advance()
	}
	p.expect(lexer.FN)
	name := p.expect(lexer.IDENT).Lexeme
	generics := p.parseGenericParams()
	params := p.parseParams()
	var ret ast.TypeExpr = &ast.PrimitiveType{Base: ast.NewBase(p.cur().Span), Name: "void"}
	if p.at(lexer.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	where := p.parseWhereClauses()

	var body *ast.Block
	if p.at(lexer.LBRACE) {
		body = p.parseBlock()
	}

	return &ast.FuncDecl{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Doc: doc, Generics: generics, Params: params,
		ReturnType: ret, Effect: effect, Public: public, Body: body, Where: where,
	}
}

func (p *Parser) parseTypeDecl(start diag.Span, public bool) *ast.TypeDecl {
	p.advance() // type
	name := p.expect(lexer.IDENT).Lexeme
	generics := p.parseGenericParams()
	p.expect(lexer.ASSIGN)
	p.skipNewlines()

	decl := &ast.TypeDecl{Base: ast.NewBase(start), Name: name, Generics: generics, Public: public}

	switch {
	case p.at(lexer.PIPE) || (p.at(lexer.IDENT) && startsUpper(p.cur().Lexeme) && p.isVariantStart()):
		decl.Kind = ast.SumType
		decl.Variants = p.parseVariantList()
	case p.at(lexer.LBRACE):
		decl.Kind = ast.ProductType
		decl.Fields = p.parseFieldDefList()
	default:
		decl.Kind = ast.AliasType
		decl.Alias = p.parseType()
	}

	decl.Base = ast.NewBase(diag.Join(start, p.prevSpan()))
	return decl
}

// isVariantStart reports whether the current IDENT token begins a sum-type
// variant list rather than a bare alias to a named type: a variant is
// followed by `(`, `{`, `|`, a NEWLINE, or EOF; an alias is not.
func (p *Parser) isVariantStart() bool {
	switch p.peekAt(1).Kind {
	case lexer.LPAREN, lexer.LBRACE, lexer.PIPE, lexer.NEWLINE, lexer.EOF, lexer.SEMI:
		return true
	default:
		return false
	}
}

func (p *Parser) parseVariantList() []ast.VariantDef {
	var variants []ast.VariantDef
	if p.at(lexer.PIPE) {
		p.advance()
	}
	for {
		p.skipNewlines()
		variants = append(variants, p.parseVariantDef())
		p.skipNewlines()
		if p.at(lexer.PIPE) {
			p.advance()
			continue
		}
		break
	}
	return variants
}

func (p *Parser) parseVariantDef() ast.VariantDef {
	name := p.expect(lexer.IDENT).Lexeme
	v := ast.VariantDef{Name: name}
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			v.Positional = append(v.Positional, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
	} else if p.at(lexer.LBRACE) {
		v.Named = p.parseFieldDefList()
	}
	return v
}

func (p *Parser) parseFieldDefList() []ast.FieldDef {
	p.expect(lexer.LBRACE)
	p.skipNewlines()
	var fields []ast.FieldDef
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		name := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		ty := p.parseType()
		fields = append(fields, ast.FieldDef{Name: name, Type: ty})
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

func (p *Parser) parseTraitDecl(start diag.Span, public bool) *ast.TraitDecl {
	p.advance() // trait
	name := p.expect(lexer.IDENT).Lexeme
	var supers []string
	if p.at(lexer.COLON) {
		p.advance()
		supers = append(supers, p.expect(lexer.IDENT).Lexeme)
		for p.at(lexer.PLUS) {
			p.advance()
			supers = append(supers, p.expect(lexer.IDENT).Lexeme)
		}
	}
	p.expect(lexer.LBRACE)
	p.skipNewlines()
	var methods []*ast.FuncDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		mStart := p.cur().Span
		methods = append(methods, p.parseFuncDecl(mStart, false))
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)
	return &ast.TraitDecl{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Supers: supers, Methods: methods, Public: public,
	}
}

func (p *Parser) parseImplDecl(start diag.Span) *ast.ImplDecl {
	p.advance() // impl
	first := p.expect(lexer.IDENT).Lexeme

	var trait string
	var target ast.TypeExpr
	if p.at(lexer.FOR) {
		p.advance()
		trait = first
		target = p.parseType()
	} else {
		target = ast.NewNamedType(p.prevSpan(), first)
		if p.at(lexer.LBRACKET) {
			args := p.parseTypeArgs()
			target = &ast.GenericType{Base: ast.NewBase(diag.Join(start, p.prevSpan())), BaseName: first, Args: args}
		}
	}
	where := p.parseWhereClauses()

	p.expect(lexer.LBRACE)
	p.skipNewlines()
	var methods []*ast.FuncDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		mStart := p.cur().Span
		methods = append(methods, p.parseFuncDecl(mStart, false))
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)

	return &ast.ImplDecl{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Trait: trait, Target: target, Methods: methods, Where: where,
	}
}

func (p *Parser) parseConstDecl(start diag.Span, public bool) *ast.ConstDecl {
	p.advance() // const
	name := p.expect(lexer.IDENT).Lexeme
	var ty ast.TypeExpr
	if p.at(lexer.COLON) {
		p.advance()
		ty = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpr()
	return &ast.ConstDecl{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Type: ty, Value: value, Public: public,
	}
}

func (p *Parser) parseTopLevelLet(start diag.Span, public bool) *ast.TopLevelLet {
	p.advance() // let
	pat := p.parsePattern()
	var ty ast.TypeExpr
	if p.at(lexer.COLON) {
		p.advance()
		ty = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpr()
	return &ast.TopLevelLet{
		Base: ast.NewBase(diag.Join(start, p.prevSpan())), Pattern: pat, Type: ty, Value: value, Public: public,
	}
}

func (p *Parser) parseTestDecl(start diag.Span) *ast.TestDecl {
	p.advance() // test
	name := p.expect(lexer.STRING).Lexeme
	body := p.parseBlock()
	return &ast.TestDecl{Base: ast.NewBase(diag.Join(start, p.prevSpan())), Name: name, Body: body}
}
