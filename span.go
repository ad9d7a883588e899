package forge

// Span locates a token or AST node in the source text. Line and Col are
// 1-based; Col counts unicode scalars, not bytes, so caret rendering lines up
// for non-ASCII source. Start and End are byte offsets into the source.
type Span struct {
	Line  int
	Col   int
	Start int
	End   int
}

// Union merges two spans into the smallest span covering both.
// A zero-width span is treated as absent.
func (s Span) Union(o Span) Span {
	if s.End == s.Start && s.Line == 0 {
		return o
	}
	if o.End == o.Start && o.Line == 0 {
		return s
	}
	out := s
	if o.Start < s.Start {
		out.Line, out.Col, out.Start = o.Line, o.Col, o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}
