// errors.go: structured error types and caret-snippet rendering.
//
// The lexer, parser, and evaluator produce raw structured errors; nothing is
// formatted until the host asks for a report. Render turns any of the error
// types below into the fixed textual shape:
//
//	[ERROR] Parsing error at 3:9...
//	   ...while parsing print statement...
//	        3| print 1 print 2;
//	         |         ^^^^^
//	   expected ';', found 'print'
//
// with a second source/caret block appended for each secondary frame (for
// example the declaration site of the called function on an arity mismatch).
package forge

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LexError is an invalid character or unterminated literal. Fatal to the
// current scan; carries the offending position.
type LexError struct {
	Line       int
	Col        int
	Pos        int // byte offset
	Msg        string
	Incomplete bool // hit end of input mid-literal
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LexError at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError is a grammar violation. Multiple may surface from one parse pass;
// Trail holds the nested context labels, innermost first.
type ParseError struct {
	Span       Span
	Msg        string
	Trail      []string
	Incomplete bool // failed only because input ended early
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError at %d:%d: %s", e.Span.Line, e.Span.Col, e.Msg)
}

// ErrKind classifies runtime errors.
type ErrKind int

const (
	ErrType ErrKind = iota
	ErrArity
	ErrIndex
	ErrUndefinedVariable
	ErrHost
)

func (k ErrKind) String() string {
	switch k {
	case ErrType:
		return "TypeError"
	case ErrArity:
		return "ArityError"
	case ErrIndex:
		return "IndexError"
	case ErrUndefinedVariable:
		return "UndefinedVariableError"
	default:
		return "HostError"
	}
}

// Frame is a secondary diagnostic location, rendered as its own snippet block
// below the primary one.
type Frame struct {
	Label string
	Span  Span
}

// RuntimeError aborts the current top-level evaluation unit.
type RuntimeError struct {
	Kind   ErrKind
	Msg    string
	Span   Span
	Frames []Frame
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Span.Line, e.Span.Col, e.Msg)
}

// ParseFailure bundles every diagnostic collected in one parse pass so the
// Eval entry points can surface them as a single Go error.
type ParseFailure struct {
	Errs []error
}

func (e *ParseFailure) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e.Errs[0].Error(), len(e.Errs)-1)
}

// IsIncomplete reports whether a failed parse stopped only because the input
// ended early. The REPL uses this to keep reading continuation lines.
func IsIncomplete(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		switch e := err.(type) {
		case *ParseError:
			if !e.Incomplete {
				return false
			}
		case *LexError:
			if !e.Incomplete {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Render formats any forge error as a caret-snippet report against the source
// it came from. Unknown error types render as their plain message.
func Render(err error, src string) string {
	switch e := err.(type) {
	case *ParseFailure:
		return RenderAll(e.Errs, src)
	case *LexError:
		var b strings.Builder
		fmt.Fprintf(&b, "[ERROR] Parsing error at %d:%d...\n", e.Line, e.Col)
		writeSnippet(&b, src, Span{Line: e.Line, Col: e.Col, Start: e.Pos, End: e.Pos})
		fmt.Fprintf(&b, "   %s\n", e.Msg)
		return b.String()
	case *ParseError:
		var b strings.Builder
		fmt.Fprintf(&b, "[ERROR] Parsing error at %d:%d...\n", e.Span.Line, e.Span.Col)
		for _, label := range e.Trail {
			fmt.Fprintf(&b, "   ...while parsing %s...\n", label)
		}
		writeSnippet(&b, src, e.Span)
		fmt.Fprintf(&b, "   %s\n", e.Msg)
		return b.String()
	case *RuntimeError:
		var b strings.Builder
		fmt.Fprintf(&b, "[ERROR] Runtime error at %d:%d...\n", e.Span.Line, e.Span.Col)
		writeSnippet(&b, src, e.Span)
		fmt.Fprintf(&b, "   %s\n", e.Msg)
		for _, fr := range e.Frames {
			fmt.Fprintf(&b, "   ...%s...\n", fr.Label)
			writeSnippet(&b, src, fr.Span)
		}
		return b.String()
	default:
		return err.Error()
	}
}

// RenderAll formats a batch of accumulated errors (one parse pass may yield
// several) in order, one report per error.
func RenderAll(errs []error, src string) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(Render(err, src))
	}
	return b.String()
}

// writeSnippet emits the source line and a caret underline for the span.
// Coordinates are clamped so a stale or out-of-range span never breaks
// rendering.
func writeSnippet(b *strings.Builder, src string, sp Span) {
	lines := strings.Split(src, "\n")
	line := sp.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	text := ""
	if len(lines) > 0 {
		text = lines[line-1]
	}
	col := sp.Col
	if col < 1 {
		col = 1
	}
	lineRunes := utf8.RuneCountInString(text)
	if col > lineRunes+1 {
		col = lineRunes + 1
	}
	width := caretWidth(src, sp)
	if col-1+width > lineRunes {
		width = lineRunes - (col - 1)
	}
	if width < 1 {
		width = 1
	}

	num := fmt.Sprintf("%d", line)
	fmt.Fprintf(b, "%s%s| %s\n", strings.Repeat(" ", 8), num, text)
	fmt.Fprintf(b, "%s| %s%s\n",
		strings.Repeat(" ", 8+len(num)),
		strings.Repeat(" ", col-1),
		strings.Repeat("^", width))
}

// caretWidth is the rune length of the span on its first line, at least 1.
func caretWidth(src string, sp Span) int {
	if sp.Start < 0 || sp.End <= sp.Start || sp.End > len(src) {
		return 1
	}
	s := src[sp.Start:sp.End]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	n := utf8.RuneCountInString(s)
	if n < 1 {
		return 1
	}
	return n
}
