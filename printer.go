// printer.go: value rendering and the AST dump used by `forge --ast`.
package forge

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// displayString renders a value for print and str: strings and chars appear
// bare, containers render their elements in literal form.
func displayString(v Value) string {
	switch v.Tag {
	case VTStr:
		return v.Data.(string)
	case VTChar:
		return string(v.Data.(rune))
	default:
		return FormatValue(v)
	}
}

// FormatValue renders a value the way the REPL echoes results: strings and
// chars quoted, lists and maps in literal syntax.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTChar:
		return "'" + string(v.Data.(rune)) + "'"
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTRange:
		r := v.Data.(*RangeValue)
		return fmt.Sprintf("%d..%d", r.Lo, r.Hi)
	case VTList:
		lst := v.Data.(*ListObject)
		parts := make([]string, len(lst.Elems))
		for i, e := range lst.Elems {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTMap:
		m := v.Data.(*MapObject)
		if len(m.Keys) == 0 {
			return "[:]"
		}
		parts := make([]string, len(m.Keys))
		for i := range m.Keys {
			parts[i] = FormatValue(m.Keys[i]) + ": " + FormatValue(m.Vals[i])
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTFn:
		fn := v.Data.(*Fn)
		if fn.Native != "" {
			return "<native " + fn.Native + ">"
		}
		return "|" + strings.Join(fn.Params, ", ") + "| { ... }"
	case VTCustom:
		c := v.Data.(*Custom)
		if c.Ops != nil && c.Ops.Display != nil {
			return c.Ops.Display(c.Payload)
		}
		return "<" + typeName(v) + ">"
	}
	return "<unknown>"
}

// ----- AST dump -----

// DumpAST writes an indented tree of the parsed program, one node per line.
func DumpAST(w io.Writer, stmts []Stmt) {
	d := &dumper{w: w}
	d.line(0, "Block")
	for _, s := range stmts {
		d.stmt(s, 1)
	}
}

type dumper struct {
	w io.Writer
}

func (d *dumper) line(depth int, format string, args ...interface{}) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) stmt(s Stmt, depth int) {
	switch st := s.(type) {
	case *VarDeclStmt:
		d.line(depth, "Declaration statement '%s'", st.Name)
		d.expr(st.Init, depth+1)
	case *ExprStmt:
		d.line(depth, "Expression statement")
		d.expr(st.E, depth+1)
	case *PrintStmt:
		d.line(depth, "Print statement")
		d.expr(st.E, depth+1)
	case *IfStmt:
		if st.Else != nil {
			d.line(depth, "If-else statement")
		} else {
			d.line(depth, "If statement")
		}
		d.expr(st.Cond, depth+1)
		d.block(st.Then, depth+1)
		if st.Else != nil {
			d.block(st.Else, depth+1)
		}
	case *WhileStmt:
		d.line(depth, "While statement")
		d.expr(st.Cond, depth+1)
		d.block(st.Body, depth+1)
	case *ForStmt:
		d.line(depth, "For statement '%s'", st.Name)
		d.expr(st.Iter, depth+1)
		d.block(st.Body, depth+1)
	case *ReturnStmt:
		d.line(depth, "Return statement")
		if st.E != nil {
			d.expr(st.E, depth+1)
		}
	case *BreakStmt:
		d.line(depth, "Break statement")
	case *ContinueStmt:
		d.line(depth, "Continue statement")
	case *BlockStmt:
		d.block(st, depth)
	}
}

func (d *dumper) block(b *BlockStmt, depth int) {
	d.line(depth, "Block")
	for _, s := range b.Stmts {
		d.stmt(s, depth+1)
	}
}

func (d *dumper) expr(e Expr, depth int) {
	switch ex := e.(type) {
	case *NumberLit:
		d.line(depth, "Number literal '%s'", strconv.FormatFloat(ex.Value, 'g', -1, 64))
	case *StringLit:
		d.line(depth, "String literal '%s'", ex.Value)
	case *CharLit:
		d.line(depth, "Character literal '%c'", ex.Value)
	case *BoolLit:
		d.line(depth, "Boolean literal '%v'", ex.Value)
	case *NullLit:
		d.line(depth, "Null literal")
	case *IdentExpr:
		d.line(depth, "Identifier '%s'", ex.Name)
	case *ListLit:
		d.line(depth, "List")
		for _, el := range ex.Elems {
			d.line(depth+1, "Item")
			d.expr(el, depth+2)
		}
	case *ListFill:
		d.line(depth, "List fill")
		d.expr(ex.Elem, depth+1)
		d.expr(ex.Count, depth+1)
	case *MapLit:
		d.line(depth, "Map")
		for _, pair := range ex.Pairs {
			d.line(depth+1, "Key")
			d.expr(pair.Key, depth+2)
			d.line(depth+1, "Value")
			d.expr(pair.Val, depth+2)
		}
	case *FnLit:
		d.line(depth, "Function")
		d.line(depth+1, "Args")
		for _, p := range ex.Params {
			d.line(depth+2, "Argument '%s'", p)
		}
		d.block(ex.Body, depth+1)
	case *UnaryExpr:
		d.line(depth, "Unary '%s'", ex.Op)
		d.expr(ex.Operand, depth+1)
	case *BinaryExpr:
		d.line(depth, "Binary '%s'", ex.Op)
		d.expr(ex.Left, depth+1)
		d.expr(ex.Right, depth+1)
	case *CallExpr:
		d.line(depth, "Call")
		d.expr(ex.Callee, depth+1)
		for _, a := range ex.Args {
			d.line(depth+1, "Parameter")
			d.expr(a, depth+2)
		}
	case *IndexExpr:
		d.line(depth, "Index access")
		d.expr(ex.Target, depth+1)
		d.expr(ex.Index, depth+1)
	case *AssignExpr:
		d.line(depth, "Assign '%s'", ex.Op)
		d.lval(ex.Target, depth+1)
		d.expr(ex.Value, depth+1)
	}
}

func (d *dumper) lval(lv LVal, depth int) {
	switch t := lv.(type) {
	case *LocalLVal:
		d.line(depth, "Local l-value '%s'", t.Name)
	case *IndexLVal:
		d.line(depth, "Indexed l-value")
		d.expr(t.Target, depth+1)
		d.expr(t.Index, depth+1)
	}
}
