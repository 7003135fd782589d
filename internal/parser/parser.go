// Package parser implements a recursive-descent parser that turns a ki
// token stream into an *ast.Program. The Program carries the parser's arena
// (see internal/arena), but AST nodes are built with ordinary Go allocation
// rather than through it.
package parser

import (
	"fmt"

	"github.com/cwbudde/ki/internal/arena"
	"github.com/cwbudde/ki/internal/ast"
	"github.com/cwbudde/ki/internal/diag"
	"github.com/cwbudde/ki/internal/lexer"
)

// Parser consumes a flat token slice (newlines included) and builds a
// Program. Errors are collected into Bag rather than returned eagerly, so
// parsing can resynchronize and keep reporting after the first mistake.
type Parser struct {
	toks  []lexer.Token
	pos   int
	bag   *diag.Bag
	arena *arena.Arena

	// pendingDoc accumulates `///` comment text seen since the last
	// declaration, so the next declaration parsed can claim it as its
	// documentation comment (spec §4.1).
	pendingDoc string
}

// New creates a Parser over source, tokenizing it first. Diagnostics from
// both the lexer and the parser accumulate into bag.
func New(source string, bag *diag.Bag) *Parser {
	toks := lexer.Tokenize(source, bag)
	return &Parser{toks: toks, bag: bag, arena: arena.New()}
}

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.cur().Kind == k
}

// skipNewlines consumes NEWLINE tokens, used between declarations and
// freely inside blocks where a newline is just whitespace, not a
// terminator.
func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) || p.at(lexer.COMMENT) || p.at(lexer.DOC_COMMENT) {
		if p.at(lexer.DOC_COMMENT) {
			if p.pendingDoc == "" {
				p.pendingDoc = p.cur().Lexeme
			} else {
				p.pendingDoc += "\n" + p.cur().Lexeme
			}
		}
		p.advance()
	}
}

// takeDoc returns and clears any `///` comment text accumulated since the
// last declaration, for a declaration to claim as its own.
func (p *Parser) takeDoc() string {
	d := p.pendingDoc
	p.pendingDoc = ""
	return d
}

func (p *Parser) errf(span diag.Span, format string, args ...any) {
	p.bag.Errorf("parser", span, format, args...)
}

// expect consumes a token of kind k, reporting a diagnostic naming both
// the expected and found token if it doesn't match, then resynchronizing
// is left to the caller.
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errf(p.cur().Span, "expected %s, found %s", k, describeFound(p.cur()))
	return p.cur()
}

func describeFound(t lexer.Token) string {
	if t.Kind == lexer.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// synchronize skips tokens until a likely declaration or statement
// boundary: a NEWLINE, SEMI, RBRACE, or EOF.
func (p *Parser) synchronize() {
	for !p.at(lexer.EOF) {
		if p.at(lexer.NEWLINE) || p.at(lexer.SEMI) {
			p.advance()
			return
		}
		if p.at(lexer.RBRACE) {
			return
		}
		p.advance()
	}
}

// ParseProgram parses the full token stream into a Program. It always
// returns a non-nil Program; callers must check bag.HasErrors() to decide
// whether the result should feed the resolver.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Arena: p.arena}

	p.skipNewlines()
	if p.at(lexer.MODULE) {
		prog.Module = p.parseModuleDecl()
		p.skipNewlines()
	}
	for p.at(lexer.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImportDecl())
		p.skipNewlines()
	}

	for !p.at(lexer.EOF) {
		p.skipNewlines()
		if p.at(lexer.EOF) {
			break
		}
		decl := p.parseDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		p.skipNewlines()
	}

	return prog
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.cur().Span
	p.advance() // 'module'
	path := p.parseDottedPath()
	span := diag.Join(start, p.prevSpan())
	return &ast.ModuleDecl{Base: ast.NewBase(span), Path: path}
}

func (p *Parser) parseDottedPath() []string {
	var segs []string
	segs = append(segs, p.expect(lexer.IDENT).Lexeme)
	for p.at(lexer.DOT) {
		p.advance()
		segs = append(segs, p.expect(lexer.IDENT).Lexeme)
	}
	return segs
}

func (p *Parser) prevSpan() diag.Span {
	if p.pos == 0 {
		return p.toks[0].Span
	}
	return p.toks[p.pos-1].Span
}
