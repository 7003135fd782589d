package lexer

import (
	"testing"

	"github.com/cwbudde/ki/internal/diag"
)

func TestNextTokenKinds(t *testing.T) {
	input := `let x: i32 = 42`

	tests := []struct {
		kind   Kind
		lexeme string
	}{
		{LET, "let"},
		{IDENT, "x"},
		{COLON, ":"},
		{IDENT, "i32"},
		{ASSIGN, "="},
		{INT, "42"},
		{EOF, ""},
	}

	bag := diag.NewBag("test.ki")
	l := New(input, bag)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%s, got=%s (lexeme=%q)", i, tt.kind, tok.Kind, tok.Lexeme)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.lexeme, tok.Lexeme)
		}
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", bag.Items)
	}
}

func TestKeywords(t *testing.T) {
	input := "fn effect type trait impl pub module import as if else match for while loop in return break where true false and or not is test Self self"

	expected := []Kind{
		FN, EFFECT, TYPE, TRAIT, IMPL, PUB, MODULE, IMPORT, AS, IF, ELSE, MATCH,
		FOR, WHILE, LOOP, IN, RETURN, BREAK, WHERE, TRUE, FALSE, AND, OR, NOT,
		IS, TEST, SELF_TYPE, SELF, EOF,
	}

	bag := diag.NewBag("test.ki")
	l := New(input, bag)
	for i, want := range expected {
		tok := l.Next()
		if tok.Kind != want {
			t.Fatalf("tests[%d] - kind wrong. expected=%s, got=%s", i, want, tok.Kind)
		}
	}
}

func TestNumberSuffixAndBase(t *testing.T) {
	tests := []struct {
		input  string
		base   NumberBase
		suffix string
	}{
		{"42", Base10, ""},
		{"42i64", Base10, "i64"},
		{"0x2A", Base16, ""},
		{"0b101010", Base2, ""},
	}

	for _, tt := range tests {
		bag := diag.NewBag("test.ki")
		l := New(tt.input, bag)
		tok := l.Next()
		if tok.Kind != INT {
			t.Fatalf("input %q: expected INT, got %s", tt.input, tok.Kind)
		}
		if tok.Base != tt.base {
			t.Fatalf("input %q: expected base %v, got %v", tt.input, tt.base, tok.Base)
		}
		if tok.Suffix != tt.suffix {
			t.Fatalf("input %q: expected suffix %q, got %q", tt.input, tt.suffix, tok.Suffix)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	bag := diag.NewBag("test.ki")
	l := New(`"a\nb\t\"c\""`, bag)
	tok := l.Next()
	if tok.Kind != STRING {
		t.Fatalf("expected STRING, got %s", tok.Kind)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items)
	}
}

func TestIllegalCharacterReportsDiagnostic(t *testing.T) {
	bag := diag.NewBag("test.ki")
	toks := Tokenize("let x = `", bag)
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for the stray backtick")
	}
	if toks[len(toks)-1].Kind != EOF {
		t.Fatalf("Tokenize must always end in EOF, got %s", toks[len(toks)-1].Kind)
	}
}

func TestDocCommentVsRegularComment(t *testing.T) {
	bag := diag.NewBag("test.ki")
	l := New("// plain\n/// doc\n", bag)
	first := l.Next()
	if first.Kind != COMMENT {
		t.Fatalf("expected COMMENT, got %s", first.Kind)
	}
	if nl := l.Next(); nl.Kind != NEWLINE {
		t.Fatalf("expected NEWLINE, got %s", nl.Kind)
	}
	second := l.Next()
	if second.Kind != DOC_COMMENT {
		t.Fatalf("expected DOC_COMMENT, got %s", second.Kind)
	}
}

func TestTokenizeNewlinesPreserved(t *testing.T) {
	bag := diag.NewBag("test.ki")
	toks := Tokenize("let x = 1\nlet y = 2", bag)
	var newlines int
	for _, tok := range toks {
		if tok.Kind == NEWLINE {
			newlines++
		}
	}
	if newlines != 1 {
		t.Fatalf("expected exactly 1 NEWLINE token, got %d", newlines)
	}
}
