package forge

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func parseOK(t *testing.T, src string) []Stmt {
	t.Helper()
	stmts, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v\nsource:\n%s", errs, src)
	}
	return stmts
}

func parseErrs(t *testing.T, src string) []error {
	t.Helper()
	_, errs := Parse(src)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors, got none\nsource:\n%s", src)
	}
	return errs
}

func asParseError(t *testing.T, err error) *ParseError {
	t.Helper()
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return pe
}

// --- tests -----------------------------------------------------------------

func Test_Parser_Statement_Kinds(t *testing.T) {
	stmts := parseOK(t, `
var x = 1;
print x;
x + 1;
if x == 1 { print "one"; } else { print "other"; }
while false { break; }
for i in 0..3 { continue; }
`)
	if len(stmts) != 6 {
		t.Fatalf("want 6 statements, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*VarDeclStmt); !ok {
		t.Fatalf("stmt 0: want *VarDeclStmt, got %T", stmts[0])
	}
	if _, ok := stmts[1].(*PrintStmt); !ok {
		t.Fatalf("stmt 1: want *PrintStmt, got %T", stmts[1])
	}
	if _, ok := stmts[2].(*ExprStmt); !ok {
		t.Fatalf("stmt 2: want *ExprStmt, got %T", stmts[2])
	}
	if _, ok := stmts[3].(*IfStmt); !ok {
		t.Fatalf("stmt 3: want *IfStmt, got %T", stmts[3])
	}
	if _, ok := stmts[4].(*WhileStmt); !ok {
		t.Fatalf("stmt 4: want *WhileStmt, got %T", stmts[4])
	}
	if _, ok := stmts[5].(*ForStmt); !ok {
		t.Fatalf("stmt 5: want *ForStmt, got %T", stmts[5])
	}
}

func Test_Parser_Precedence_Shapes(t *testing.T) {
	stmts := parseOK(t, "1 + 2 * 3;")
	bin, ok := stmts[0].(*ExprStmt).E.(*BinaryExpr)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("want '+' at the root, got %#v", stmts[0].(*ExprStmt).E)
	}
	inner, ok := bin.Right.(*BinaryExpr)
	if !ok || inner.Op != OpMul {
		t.Fatalf("want '*' under '+', got %#v", bin.Right)
	}

	// Comparison binds tighter than assignment.
	stmts = parseOK(t, "var x = 0; x = 1 < 2;")
	asn := stmts[1].(*ExprStmt).E.(*AssignExpr)
	if cmp, ok := asn.Value.(*BinaryExpr); !ok || cmp.Op != OpLess {
		t.Fatalf("want '<' on the assignment right side, got %#v", asn.Value)
	}

	// Range binds tighter than mid-level unary, looser than addition.
	stmts = parseOK(t, "clone 1 + 2 .. 5;")
	un := stmts[0].(*ExprStmt).E.(*UnaryExpr)
	if un.Op != OpClone {
		t.Fatalf("want clone at the root, got %#v", stmts[0].(*ExprStmt).E)
	}
	rng, ok := un.Operand.(*BinaryExpr)
	if !ok || rng.Op != OpRange {
		t.Fatalf("want '..' under clone, got %#v", un.Operand)
	}
	if add, ok := rng.Left.(*BinaryExpr); !ok || add.Op != OpAdd {
		t.Fatalf("want '+' on the range low bound, got %#v", rng.Left)
	}
}

func Test_Parser_Postfix_Chain(t *testing.T) {
	stmts := parseOK(t, "f(1)(2)[3];")
	idx, ok := stmts[0].(*ExprStmt).E.(*IndexExpr)
	if !ok {
		t.Fatalf("want index at the root, got %#v", stmts[0].(*ExprStmt).E)
	}
	if _, ok := idx.Target.(*CallExpr); !ok {
		t.Fatalf("want a call under the index, got %#v", idx.Target)
	}
}

func Test_Parser_Bracket_Literals(t *testing.T) {
	stmts := parseOK(t, `[]; [1, 2]; [0; 4]; ["a": 1, "b": 2];`)
	if lst := stmts[0].(*ExprStmt).E.(*ListLit); len(lst.Elems) != 0 {
		t.Fatalf("want empty list, got %#v", lst)
	}
	if lst := stmts[1].(*ExprStmt).E.(*ListLit); len(lst.Elems) != 2 {
		t.Fatalf("want 2 elements, got %#v", lst)
	}
	if _, ok := stmts[2].(*ExprStmt).E.(*ListFill); !ok {
		t.Fatalf("want a fill literal, got %#v", stmts[2].(*ExprStmt).E)
	}
	if m := stmts[3].(*ExprStmt).E.(*MapLit); len(m.Pairs) != 2 {
		t.Fatalf("want 2 pairs, got %#v", m)
	}
}

func Test_Parser_Fn_Literal_Declaration_Span(t *testing.T) {
	stmts := parseOK(t, "var f = |a, b| { return a; };")
	fn := stmts[0].(*VarDeclStmt).Init.(*FnLit)
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Fatalf("unexpected params: %#v", fn.Params)
	}
	// Decl covers the |a, b| header.
	if fn.Decl.Col != 9 || fn.Decl.End-fn.Decl.Start != len("|a, b|") {
		t.Fatalf("unexpected declaration span: %#v", fn.Decl)
	}
}

func Test_Parser_Assignment_Targets(t *testing.T) {
	stmts := parseOK(t, "var L = []; L[0] = 1; L[0..1] = []; L[0] += 2;")
	asn := stmts[1].(*ExprStmt).E.(*AssignExpr)
	if _, ok := asn.Target.(*IndexLVal); !ok {
		t.Fatalf("want an indexed l-value, got %#v", asn.Target)
	}
	if stmts[3].(*ExprStmt).E.(*AssignExpr).Op != AsnAdd {
		t.Fatalf("want '+=', got %#v", stmts[3].(*ExprStmt).E)
	}
}

func Test_Parser_Rejects_Non_Assignable_Left_Side(t *testing.T) {
	errs := parseErrs(t, "1 + 2 = 3;")
	pe := asParseError(t, errs[0])
	if !strings.Contains(pe.Msg, "not assignable") {
		t.Fatalf("unexpected message: %q", pe.Msg)
	}
}

func Test_Parser_Recovery_Reports_Each_Missing_Semicolon(t *testing.T) {
	stmts, errs := Parse("print 1\nprint 2\nprint 3;")
	if len(errs) != 2 {
		t.Fatalf("want exactly 2 errors, got %d: %v", len(errs), errs)
	}
	// The well-formed trailing statement still parses.
	if len(stmts) != 1 {
		t.Fatalf("want 1 recovered statement, got %d", len(stmts))
	}
	first := asParseError(t, errs[0])
	if first.Span.Line != 2 {
		t.Fatalf("first error should point at the stray 'print' on line 2, got line %d", first.Span.Line)
	}
	if first.Incomplete {
		t.Fatalf("a mid-stream error must not be marked incomplete")
	}
}

func Test_Parser_Recovery_Across_Statement_Kinds(t *testing.T) {
	_, errs := Parse("var a = ;\nvar b = 2;\nprint b +;\nvar c = 3;")
	if len(errs) != 2 {
		t.Fatalf("want exactly 2 errors, got %d: %v", len(errs), errs)
	}
}

func Test_Parser_Context_Trail_Is_Innermost_First(t *testing.T) {
	errs := parseErrs(t, "print [1, ;")
	pe := asParseError(t, errs[0])
	if len(pe.Trail) < 2 || pe.Trail[0] != "list" || pe.Trail[1] != "print statement" {
		t.Fatalf("unexpected trail: %#v", pe.Trail)
	}
}

func Test_Parser_Map_Error_Reports_Map_Context(t *testing.T) {
	errs := parseErrs(t, "print [1: ;")
	pe := asParseError(t, errs[0])
	if len(pe.Trail) < 2 || pe.Trail[0] != "map" || pe.Trail[1] != "print statement" {
		t.Fatalf("a malformed map value should report the map context: %#v", pe.Trail)
	}
}

func Test_Parser_First_Bracket_Element_Has_No_Container_Label(t *testing.T) {
	// Before the first element parses, the bracket could still be a list,
	// a fill, or a map, so no container context is claimed.
	errs := parseErrs(t, "print [;")
	pe := asParseError(t, errs[0])
	if len(pe.Trail) != 1 || pe.Trail[0] != "print statement" {
		t.Fatalf("unexpected trail: %#v", pe.Trail)
	}
}

func Test_Parser_Incomplete_At_End_Of_Input(t *testing.T) {
	for _, src := range []string{
		"var x = [1,",
		"if true {",
		"print 1",
		"var f = |a| {",
	} {
		_, errs := Parse(src)
		if len(errs) == 0 {
			t.Fatalf("%q: expected errors", src)
		}
		if !IsIncomplete(errs) {
			t.Fatalf("%q: expected every error to be incomplete: %v", src, errs)
		}
	}
}

func Test_Parser_Complete_Error_Is_Not_Incomplete(t *testing.T) {
	_, errs := Parse("var = 1;")
	if len(errs) == 0 || IsIncomplete(errs) {
		t.Fatalf("a malformed but complete input must not read as incomplete: %v", errs)
	}
}

func Test_Parser_Else_Requires_Block(t *testing.T) {
	stmts := parseOK(t, "if a == 1 { print 1; } else { print 2; }")
	ifs := stmts[0].(*IfStmt)
	if ifs.Else == nil || len(ifs.Else.Stmts) != 1 {
		t.Fatalf("unexpected else branch: %#v", ifs.Else)
	}

	// There is no `else if` sugar; the else branch must be braced.
	errs := parseErrs(t, "if a { print 1; } else if b { print 2; }")
	pe := asParseError(t, errs[0])
	if !strings.Contains(pe.Msg, "'{'") {
		t.Fatalf("unexpected message: %q", pe.Msg)
	}
}
