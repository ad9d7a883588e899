package forge

import (
	"strings"
	"testing"
)

func Test_Render_Parse_Error_Report(t *testing.T) {
	src := "print 1 print 2;"
	_, errs := Parse(src)
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	want := strings.Join([]string{
		"[ERROR] Parsing error at 1:9...",
		"   ...while parsing print statement...",
		"        1| print 1 print 2;",
		"         |         ^^^^^",
		"   expected ';', found 'print'",
		"",
	}, "\n")
	if got := Render(errs[0], src); got != want {
		t.Fatalf("report mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func Test_Render_Nested_Context_Trail(t *testing.T) {
	src := "print [1, ;"
	_, errs := Parse(src)
	if len(errs) == 0 {
		t.Fatalf("expected errors")
	}
	got := Render(errs[0], src)
	listLine := strings.Index(got, "...while parsing list...")
	printLine := strings.Index(got, "...while parsing print statement...")
	if listLine < 0 || printLine < 0 || listLine > printLine {
		t.Fatalf("trail should list the innermost context first:\n%s", got)
	}
}

func Test_Render_Runtime_Error_With_Declaration_Frame(t *testing.T) {
	src := "var f = || { print \"hi\"; };\nf(1);"
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected an arity error")
	}
	want := strings.Join([]string{
		"[ERROR] Runtime error at 2:1...",
		"        2| f(1);",
		"         | ^^^^",
		"   expected 0 arguments, found 1",
		"   ...function was declared here...",
		"        1| var f = || { print \"hi\"; };",
		"         |         ^^",
		"",
	}, "\n")
	if got := Render(err, src); got != want {
		t.Fatalf("report mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func Test_Render_Lex_Error_Report(t *testing.T) {
	src := "var x = 1 @ 2;"
	_, errs := Parse(src)
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	got := Render(errs[0], src)
	if !strings.Contains(got, "[ERROR] Parsing error at 1:11...") {
		t.Fatalf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "1| var x = 1 @ 2;") {
		t.Fatalf("missing source line:\n%s", got)
	}
}

func Test_Render_Condition_Span_Is_Underlined(t *testing.T) {
	src := "while [1] { break; }"
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected a truthiness error")
	}
	got := Render(err, src)
	if !strings.Contains(got, "[ERROR] Runtime error at 1:7...") {
		t.Fatalf("error should point at the condition:\n%s", got)
	}
	if !strings.Contains(got, "| "+strings.Repeat(" ", 6)+"^^^") {
		t.Fatalf("carets should cover the list literal:\n%s", got)
	}
}

func Test_RenderAll_Concatenates_Reports(t *testing.T) {
	src := "print 1\nprint 2\nprint 3;"
	_, errs := Parse(src)
	got := RenderAll(errs, src)
	if strings.Count(got, "[ERROR]") != 2 {
		t.Fatalf("want 2 reports:\n%s", got)
	}
}

func Test_Render_Caret_Width_Counts_Runes(t *testing.T) {
	src := `"héllo"(1);`
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected a type error")
	}
	got := Render(err, src)
	// `"héllo"(1)` is 10 columns even though é is 2 bytes.
	if !strings.Contains(got, strings.Repeat("^", 10)+"\n") {
		t.Fatalf("caret width should count runes:\n%s", got)
	}
}

func Test_IsIncomplete_Mixed_Errors(t *testing.T) {
	_, errs := Parse("print 1 print 2")
	// The first error is complete, the trailing one is not; together they are not.
	if len(errs) != 2 || IsIncomplete(errs) {
		t.Fatalf("a mix of complete and incomplete errors must not read as incomplete: %v", errs)
	}
}
