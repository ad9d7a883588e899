// eval.go: the tree-walking evaluator.
//
// Runtime failures and the non-error control transfers (return, break,
// continue) travel as panics. The signals are recovered exactly where the
// language says they stop: returnSig at the enclosing call frame, break and
// continue at the loop head, and *RuntimeError at the top-level unit in
// EvalProgram. Evaluation is single-threaded and depth-first; mutation of
// shared list/map storage is in place and immediately visible to all
// aliases.
package forge

import (
	"fmt"
	"math"
	"strings"
)

type returnSig struct {
	v  Value
	sp Span
}

type breakSig struct{ sp Span }

type continueSig struct{ sp Span }

func (ip *Interpreter) fail(kind ErrKind, sp Span, format string, args ...interface{}) {
	panic(&RuntimeError{Kind: kind, Span: sp, Msg: fmt.Sprintf(format, args...)})
}

// ----- statements -----

// execStmt runs one statement and returns its value: the expression value
// for an expression statement, Null for everything else. The last such value
// becomes the unit result echoed by the REPL.
func (ip *Interpreter) execStmt(s Stmt, env *Env) Value {
	switch st := s.(type) {
	case *VarDeclStmt:
		env.Define(st.Name, ip.eval(st.Init, env))
		return Null

	case *ExprStmt:
		return ip.eval(st.E, env)

	case *PrintStmt:
		fmt.Fprintln(ip.Stdout, displayString(ip.eval(st.E, env)))
		return Null

	case *IfStmt:
		if ip.truthiness(st.Cond, env) {
			ip.execBlock(st.Then, env)
		} else if st.Else != nil {
			ip.execBlock(st.Else, env)
		}
		return Null

	case *WhileStmt:
		for ip.truthiness(st.Cond, env) {
			if ip.runLoopBody(st.Body, env) {
				break
			}
		}
		return Null

	case *ForStmt:
		ip.execFor(st, env)
		return Null

	case *ReturnStmt:
		v := Null
		if st.E != nil {
			v = ip.eval(st.E, env)
		}
		panic(returnSig{v: v, sp: st.Pos})

	case *BreakStmt:
		panic(breakSig{sp: st.Pos})

	case *ContinueStmt:
		panic(continueSig{sp: st.Pos})

	case *BlockStmt:
		ip.execBlock(st, env)
		return Null

	default:
		ip.fail(ErrType, s.Span(), "unknown statement")
		return Null
	}
}

// execBlock runs a block in a fresh child scope, discarded on exit.
func (ip *Interpreter) execBlock(b *BlockStmt, env *Env) {
	child := NewEnv(env)
	for _, s := range b.Stmts {
		ip.execStmt(s, child)
	}
}

// truthiness evaluates a condition, requiring a Bool.
func (ip *Interpreter) truthiness(cond Expr, env *Env) bool {
	v := ip.eval(cond, env)
	if v.Tag != VTBool {
		ip.fail(ErrType, cond.Span(), "cannot determine truthiness of value of type '%s'", typeName(v))
	}
	return v.Data.(bool)
}

// runLoopBody executes one loop iteration in a fresh scope, recovering
// break and continue. It reports whether the loop should stop.
func (ip *Interpreter) runLoopBody(body *BlockStmt, env *Env) (brk bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case breakSig:
			brk = true
		case continueSig:
		default:
			panic(r)
		}
	}()
	ip.execBlock(body, env)
	return false
}

func (ip *Interpreter) execFor(st *ForStmt, env *Env) {
	iter := ip.eval(st.Iter, env)

	runOnce := func(v Value) bool {
		scope := NewEnv(env)
		scope.Define(st.Name, v)
		return ip.runLoopBody(st.Body, scope)
	}

	switch iter.Tag {
	case VTRange:
		r := iter.Data.(*RangeValue)
		for i := r.Lo; i < r.Hi; i++ {
			if runOnce(Number(float64(i))) {
				return
			}
		}
	case VTList:
		lst := iter.Data.(*ListObject)
		for i := 0; i < len(lst.Elems); i++ {
			if runOnce(lst.Elems[i]) {
				return
			}
		}
	case VTCustom:
		c := iter.Data.(*Custom)
		if c.Ops == nil || c.Ops.Iter == nil {
			ip.fail(ErrType, st.Iter.Span(), "cannot iterate over value of type '%s'", typeName(iter))
		}
		next := c.Ops.Iter(c.Payload)
		for {
			v, ok := next()
			if !ok {
				return
			}
			if runOnce(v) {
				return
			}
		}
	default:
		ip.fail(ErrType, st.Iter.Span(), "cannot iterate over value of type '%s'", typeName(iter))
	}
}

// ----- expressions -----

func (ip *Interpreter) eval(e Expr, env *Env) Value {
	switch ex := e.(type) {
	case *NumberLit:
		return Number(ex.Value)
	case *StringLit:
		return Str(ex.Value)
	case *CharLit:
		return Char(ex.Value)
	case *BoolLit:
		return Bool(ex.Value)
	case *NullLit:
		return Null

	case *IdentExpr:
		v, ok := env.Get(ex.Name)
		if !ok {
			ip.fail(ErrUndefinedVariable, ex.Pos, "variable '%s' is not defined", ex.Name)
		}
		return v

	case *ListLit:
		elems := make([]Value, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = ip.eval(el, env)
		}
		return List(elems)

	case *ListFill:
		elem := ip.eval(ex.Elem, env)
		n := ip.intIndex(ip.eval(ex.Count, env), ex.Count.Span(), "fill count")
		if n < 0 {
			ip.fail(ErrIndex, ex.Count.Span(), "fill count %d is negative", n)
		}
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = deepClone(elem)
		}
		return List(elems)

	case *MapLit:
		m := NewMap()
		mo := m.Data.(*MapObject)
		for _, pair := range ex.Pairs {
			k := ip.eval(pair.Key, env)
			v := ip.eval(pair.Val, env)
			mo.Set(k, v)
		}
		return m

	case *FnLit:
		return FnVal(&Fn{
			Params: ex.Params,
			Body:   ex.Body,
			Env:    env,
			Decl:   ex.Decl,
		})

	case *UnaryExpr:
		return ip.evalUnary(ex, env)

	case *BinaryExpr:
		return ip.evalBinaryExpr(ex, env)

	case *AssignExpr:
		return ip.evalAssign(ex, env)

	case *CallExpr:
		callee := ip.eval(ex.Callee, env)
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = ip.eval(a, env)
		}
		return ip.callValue(callee, args, ex.Pos)

	case *IndexExpr:
		target := ip.eval(ex.Target, env)
		index := ip.eval(ex.Index, env)
		return ip.indexRead(target, index, ex.Pos)

	default:
		ip.fail(ErrType, e.Span(), "unknown expression")
		return Null
	}
}

func (ip *Interpreter) evalUnary(ex *UnaryExpr, env *Env) Value {
	switch ex.Op {
	case OpNot:
		v := ip.eval(ex.Operand, env)
		if v.Tag != VTBool {
			ip.fail(ErrType, ex.Operand.Span(), "cannot apply '!' to value of type '%s'", typeName(v))
		}
		return Bool(!v.Data.(bool))

	case OpNeg:
		v := ip.eval(ex.Operand, env)
		if v.Tag != VTNumber {
			ip.fail(ErrType, ex.Operand.Span(), "cannot negate value of type '%s'", typeName(v))
		}
		return Number(-v.Data.(float64))

	case OpInput:
		prompt := ip.eval(ex.Operand, env)
		fmt.Fprint(ip.Stdout, displayString(prompt))
		line, err := ip.ReadLine()
		if err != nil && line == "" {
			return Null
		}
		return Str(strings.TrimRight(line, "\r\n"))

	case OpClone:
		return deepClone(ip.eval(ex.Operand, env))

	case OpMirror:
		// A mirror is a new binding over the same storage handle, which is
		// exactly what copying the Value produces.
		return ip.eval(ex.Operand, env)
	}
	ip.fail(ErrType, ex.Pos, "unknown unary operator")
	return Null
}

func (ip *Interpreter) evalBinaryExpr(ex *BinaryExpr, env *Env) Value {
	switch ex.Op {
	case OpAnd:
		l := ip.boolOperand(ex.Left, "and", env)
		if !l {
			return Bool(false)
		}
		return Bool(ip.boolOperand(ex.Right, "and", env))
	case OpOr:
		l := ip.boolOperand(ex.Left, "or", env)
		if l {
			return Bool(true)
		}
		return Bool(ip.boolOperand(ex.Right, "or", env))
	case OpXor:
		l := ip.boolOperand(ex.Left, "xor", env)
		r := ip.boolOperand(ex.Right, "xor", env)
		return Bool(l != r)

	case OpRange:
		lo := ip.rangeBound(ex.Left, env)
		hi := ip.rangeBound(ex.Right, env)
		return Range(lo, hi)

	case OpAs:
		left := ip.eval(ex.Left, env)
		conv := ip.eval(ex.Right, env)
		if conv.Tag != VTFn && !(conv.Tag == VTCustom && conv.Data.(*Custom).Ops != nil && conv.Data.(*Custom).Ops.Call != nil) {
			ip.fail(ErrType, ex.Right.Span(), "right operand of 'as' must be callable, got '%s'", typeName(conv))
		}
		return ip.callValue(conv, []Value{left}, ex.Pos)
	}

	left := ip.eval(ex.Left, env)
	right := ip.eval(ex.Right, env)
	return ip.applyBinary(ex.Op, left, right, ex.OpSpan)
}

func (ip *Interpreter) boolOperand(e Expr, op string, env *Env) bool {
	v := ip.eval(e, env)
	if v.Tag != VTBool {
		ip.fail(ErrType, e.Span(), "cannot apply '%s' to value of type '%s'", op, typeName(v))
	}
	return v.Data.(bool)
}

func (ip *Interpreter) rangeBound(e Expr, env *Env) int64 {
	v := ip.eval(e, env)
	if v.Tag != VTNumber {
		ip.fail(ErrType, e.Span(), "range bounds must be numbers, got '%s'", typeName(v))
	}
	f := v.Data.(float64)
	if f != math.Trunc(f) {
		ip.fail(ErrType, e.Span(), "range bounds must be integers")
	}
	return int64(f)
}

// applyBinary evaluates an arithmetic, comparison, or equality operator on
// already-evaluated operands. A Custom operand with a Coerce capability is
// converted before the operator rules apply.
func (ip *Interpreter) applyBinary(op BinOp, left, right Value, sp Span) Value {
	left = coerceCustom(left)
	right = coerceCustom(right)

	switch op {
	case OpEq:
		return Bool(deepEqual(left, right))
	case OpNotEq:
		return Bool(!deepEqual(left, right))
	}

	switch op {
	case OpAdd:
		switch {
		case left.Tag == VTNumber && right.Tag == VTNumber:
			return Number(left.Data.(float64) + right.Data.(float64))
		case isTextual(left) && isTextual(right):
			return Str(textOf(left) + textOf(right))
		}
	case OpSub, OpMul, OpDiv, OpRem:
		if left.Tag == VTNumber && right.Tag == VTNumber {
			a, b := left.Data.(float64), right.Data.(float64)
			switch op {
			case OpSub:
				return Number(a - b)
			case OpMul:
				return Number(a * b)
			case OpDiv:
				return Number(a / b)
			default:
				return Number(math.Mod(a, b))
			}
		}
	case OpLess, OpLessEq, OpGreater, OpGreaterEq:
		if cmp, ok := compareValues(left, right); ok {
			switch op {
			case OpLess:
				return Bool(cmp < 0)
			case OpLessEq:
				return Bool(cmp <= 0)
			case OpGreater:
				return Bool(cmp > 0)
			default:
				return Bool(cmp >= 0)
			}
		}
	}

	ip.fail(ErrType, sp, "cannot apply '%s' to values of type '%s' and '%s'",
		op, typeName(left), typeName(right))
	return Null
}

func coerceCustom(v Value) Value {
	if v.Tag != VTCustom {
		return v
	}
	c := v.Data.(*Custom)
	if c.Ops != nil && c.Ops.Coerce != nil {
		if out, ok := c.Ops.Coerce(c.Payload); ok {
			return out
		}
	}
	return v
}

func isTextual(v Value) bool { return v.Tag == VTStr || v.Tag == VTChar }

func textOf(v Value) string {
	if v.Tag == VTChar {
		return string(v.Data.(rune))
	}
	return v.Data.(string)
}

// compareValues orders numbers, chars, and strings; mixed or unordered tags
// report false.
func compareValues(a, b Value) (int, bool) {
	if a.Tag != b.Tag {
		return 0, false
	}
	switch a.Tag {
	case VTNumber:
		x, y := a.Data.(float64), b.Data.(float64)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case VTChar:
		x, y := a.Data.(rune), b.Data.(rune)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case VTStr:
		return strings.Compare(a.Data.(string), b.Data.(string)), true
	}
	return 0, false
}

// ----- assignment -----

func (ip *Interpreter) evalAssign(ex *AssignExpr, env *Env) Value {
	loc := ip.resolveLVal(ex.Target, env)
	var v Value
	if ex.Op == AsnSet {
		v = ip.eval(ex.Value, env)
	} else {
		cur := loc.load(ip)
		rhs := ip.eval(ex.Value, env)
		v = ip.applyBinary(ex.Op.binOp(), cur, rhs, ex.OpSpan)
	}
	loc.store(ip, v)
	return v
}

// ----- calls -----

// callValue applies the uniform call protocol: exact arity, new child scope
// of the captured environment, body executed until a return signal or normal
// completion.
func (ip *Interpreter) callValue(callee Value, args []Value, sp Span) Value {
	switch callee.Tag {
	case VTFn:
		fn := callee.Data.(*Fn)
		if len(args) != fn.arity() {
			err := &RuntimeError{
				Kind: ErrArity,
				Span: sp,
				Msg:  fmt.Sprintf("expected %d arguments, found %d", fn.arity(), len(args)),
			}
			if fn.Native == "" {
				err.Frames = []Frame{{Label: "function was declared here", Span: fn.Decl}}
			}
			panic(err)
		}
		if fn.Native != "" {
			v, err := fn.Impl(ip, args)
			if err != nil {
				if re, ok := err.(*RuntimeError); ok {
					if re.Span.Line == 0 {
						re.Span = sp
					}
					panic(re)
				}
				ip.fail(ErrHost, sp, "'%s': %s", fn.Native, err.Error())
			}
			return v
		}
		return ip.invoke(fn, args)

	case VTCustom:
		c := callee.Data.(*Custom)
		if c.Ops != nil && c.Ops.Call != nil {
			if len(args) != c.Ops.Arity {
				ip.fail(ErrArity, sp, "expected %d arguments, found %d", c.Ops.Arity, len(args))
			}
			v, err := c.Ops.Call(ip, c.Payload, args)
			if err != nil {
				if re, ok := err.(*RuntimeError); ok {
					panic(re)
				}
				ip.fail(ErrHost, sp, "%s", err.Error())
			}
			return v
		}
	}

	ip.fail(ErrType, sp, "cannot call value of type '%s'", typeName(callee))
	return Null
}

func (ip *Interpreter) invoke(fn *Fn, args []Value) (result Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case returnSig:
			result = sig.v
		case breakSig:
			// Loop signals do not cross a call frame.
			panic(&RuntimeError{Kind: ErrType, Span: sig.sp, Msg: "'break' outside of a loop"})
		case continueSig:
			panic(&RuntimeError{Kind: ErrType, Span: sig.sp, Msg: "'continue' outside of a loop"})
		default:
			panic(r)
		}
	}()
	frame := NewEnv(fn.Env)
	for i, p := range fn.Params {
		frame.Define(p, args[i])
	}
	ip.execBlock(fn.Body, frame)
	return Null
}

// ----- index reads -----

func (ip *Interpreter) intIndex(v Value, sp Span, what string) int {
	if v.Tag != VTNumber {
		ip.fail(ErrType, sp, "%s must be a number, got '%s'", what, typeName(v))
	}
	f := v.Data.(float64)
	if f != math.Trunc(f) {
		ip.fail(ErrType, sp, "%s must be an integer", what)
	}
	return int(f)
}

func (ip *Interpreter) indexRead(target, index Value, sp Span) Value {
	switch target.Tag {
	case VTList:
		lst := target.Data.(*ListObject)
		if index.Tag == VTRange {
			lo, hi := clampRange(index.Data.(*RangeValue), len(lst.Elems))
			out := make([]Value, hi-lo)
			copy(out, lst.Elems[lo:hi])
			return List(out)
		}
		i := ip.intIndex(index, sp, "list index")
		if i < 0 || i >= len(lst.Elems) {
			ip.fail(ErrIndex, sp, "index %d out of bounds for list of length %d", i, len(lst.Elems))
		}
		return lst.Elems[i]

	case VTStr:
		runes := []rune(target.Data.(string))
		if index.Tag == VTRange {
			lo, hi := clampRange(index.Data.(*RangeValue), len(runes))
			return Str(string(runes[lo:hi]))
		}
		i := ip.intIndex(index, sp, "string index")
		if i < 0 || i >= len(runes) {
			ip.fail(ErrIndex, sp, "index %d out of bounds for string of length %d", i, len(runes))
		}
		return Char(runes[i])

	case VTMap:
		v, _ := target.Data.(*MapObject).Get(index)
		return v
	}

	ip.fail(ErrType, sp, "cannot index into value of type '%s'", typeName(target))
	return Null
}

// clampRange clamps half-open range bounds into [0, n]; an out-of-range hi
// is not an error for slices.
func clampRange(r *RangeValue, n int) (lo, hi int) {
	lo = int(r.Lo)
	hi = int(r.Hi)
	if lo < 0 {
		lo = 0
	}
	if lo > n {
		lo = n
	}
	if hi < lo {
		hi = lo
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}
