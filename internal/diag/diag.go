// Package diag provides the diagnostic and source-span types shared by every
// stage of the ki front end: lexer, parser, resolver, type checker, and
// interpreter all report through the same Diagnostic shape so a caller can
// collect, sort, and render errors from any stage identically.
package diag

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// Location is a single point in a source file: line and column are
// 1-indexed, Offset is the 0-indexed byte offset from the start of the
// file. All three are kept because the lexer advances by byte while
// diagnostics are reported by line/column.
type Location struct {
	Line   int
	Column int
	Offset int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is a half-open range [Start, End) of source. Every token, AST node,
// symbol, and diagnostic carries one.
type Span struct {
	Start Location
	End   Location
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	if b.End.Offset > end.Offset {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Related attaches a secondary span and message to a Diagnostic, e.g.
// pointing at a prior declaration of a duplicate symbol.
type Related struct {
	Span    Span
	Message string
}

// Diagnostic is a single structured report produced by a pipeline stage.
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string
	Span     Span
	Stage    string // "lexer", "parser", "resolver", "checker", "interpreter"
	Related  []Related
}

func New(stage string, sev Severity, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Stage:    stage,
	}
}

func (d *Diagnostic) Error() string {
	return d.Format(false, "")
}

// Format renders the diagnostic with a source line and a caret pointing at
// the start column, matching the style of a carat-annotated compiler error.
// If source is empty, only the header and message are printed.
func (d *Diagnostic) Format(color bool, source string) string {
	var sb strings.Builder

	file := d.File
	if file == "" {
		file = "<input>"
	}
	fmt.Fprintf(&sb, "%s: %s:%d:%d: %s\n", d.Severity, file, d.Span.Start.Line, d.Span.Start.Column, d.Message)

	if line := sourceLine(source, d.Span.Start.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Span.Start.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+max(d.Span.Start.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	for _, r := range d.Related {
		fmt.Fprintf(&sb, "  note: %s:%d:%d: %s\n", file, r.Span.Start.Line, r.Span.Start.Column, r.Message)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func sourceLine(source string, n int) string {
	if source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Bag accumulates diagnostics across a pass and reports whether any of
// them are severity Error. One Bag is shared by every stage of a single
// front-end run (lexer, parser, loader, resolver, checker).
type Bag struct {
	File  string
	Items []*Diagnostic
}

func NewBag(file string) *Bag {
	return &Bag{File: file}
}

func (b *Bag) Add(d *Diagnostic) {
	d.File = b.File
	b.Items = append(b.Items, d)
}

func (b *Bag) Errorf(stage string, span Span, format string, args ...any) {
	b.Add(New(stage, Error, span, format, args...))
}

func (b *Bag) Warnf(stage string, span Span, format string, args ...any) {
	b.Add(New(stage, Warning, span, format, args...))
}

// HasErrors reports whether any collected diagnostic is of Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.Items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity diagnostics.
func (b *Bag) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.Items {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// JSON renders the bag as a JSON array for `ki check --json` and similar
// machine-readable output, built incrementally with sjson rather than
// through a mirrored struct tree.
func (b *Bag) JSON() (string, error) {
	doc := "[]"
	var err error
	for i, d := range b.Items {
		prefix := fmt.Sprintf("%d.", i)
		if doc, err = sjson.Set(doc, prefix+"severity", d.Severity.String()); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"stage", d.Stage); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"message", d.Message); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"file", d.File); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"line", d.Span.Start.Line); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, prefix+"column", d.Span.Start.Column); err != nil {
			return "", err
		}
		for j, r := range d.Related {
			rp := fmt.Sprintf("%snotes.%d.", prefix, j)
			if doc, err = sjson.Set(doc, rp+"message", r.Message); err != nil {
				return "", err
			}
			if doc, err = sjson.Set(doc, rp+"line", r.Span.Start.Line); err != nil {
				return "", err
			}
		}
	}
	return doc, nil
}
