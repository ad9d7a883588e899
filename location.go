// location.go: lvalue resolution, shared by plain and compound assignment.
//
// A location is a settable storage slot: a variable, a list element, a map
// key (upsert), a single character of a string, or a half-open range slice
// of a list or string. Splice stores replace the [lo,hi) sub-run with the
// replacement sequence, growing or shrinking the container; list splices
// mutate the shared ListObject in place so every alias observes the change,
// while string stores rebuild the string and write it back through the
// parent location.
package forge

type location interface {
	load(ip *Interpreter) Value
	store(ip *Interpreter, v Value)
}

// resolveLVal turns a parse-time lvalue into a runtime location.
func (ip *Interpreter) resolveLVal(lv LVal, env *Env) location {
	switch t := lv.(type) {
	case *LocalLVal:
		return &varLoc{env: env, name: t.Name, sp: t.Pos}

	case *IndexLVal:
		// Resolve the inner target as a location when it is itself
		// lvalue-shaped, so string stores have somewhere to write back.
		var parent location
		var target Value
		switch inner := t.Target.(type) {
		case *IdentExpr:
			parent = &varLoc{env: env, name: inner.Name, sp: inner.Pos}
			target = parent.load(ip)
		case *IndexExpr:
			parent = ip.resolveLVal(&IndexLVal{Target: inner.Target, Index: inner.Index, Pos: inner.Pos}, env)
			target = parent.load(ip)
		default:
			target = ip.eval(t.Target, env)
		}
		index := ip.eval(t.Index, env)

		switch target.Tag {
		case VTList:
			lst := target.Data.(*ListObject)
			if index.Tag == VTRange {
				lo, hi := clampRange(index.Data.(*RangeValue), len(lst.Elems))
				return &listSpliceLoc{lst: lst, lo: lo, hi: hi, sp: t.Pos}
			}
			i := ip.intIndex(index, t.Index.Span(), "list index")
			if i < 0 || i >= len(lst.Elems) {
				ip.fail(ErrIndex, t.Index.Span(), "index %d out of bounds for list of length %d", i, len(lst.Elems))
			}
			return &listElemLoc{lst: lst, idx: i, sp: t.Index.Span()}

		case VTStr:
			if parent == nil {
				ip.fail(ErrType, t.Pos, "cannot assign into a temporary string")
			}
			n := len([]rune(target.Data.(string)))
			if index.Tag == VTRange {
				lo, hi := clampRange(index.Data.(*RangeValue), n)
				return &strSpliceLoc{parent: parent, lo: lo, hi: hi, sp: t.Pos}
			}
			i := ip.intIndex(index, t.Index.Span(), "string index")
			if i < 0 || i >= n {
				ip.fail(ErrIndex, t.Index.Span(), "index %d out of bounds for string of length %d", i, n)
			}
			return &strIndexLoc{parent: parent, idx: i, sp: t.Pos}

		case VTMap:
			return &mapKeyLoc{m: target.Data.(*MapObject), key: index}
		}

		ip.fail(ErrType, t.Pos, "cannot index into value of type '%s'", typeName(target))
		return nil
	}
	ip.fail(ErrType, lv.Span(), "unknown lvalue")
	return nil
}

type varLoc struct {
	env  *Env
	name string
	sp   Span
}

func (l *varLoc) load(ip *Interpreter) Value {
	v, ok := l.env.Get(l.name)
	if !ok {
		ip.fail(ErrUndefinedVariable, l.sp, "variable '%s' is not defined", l.name)
	}
	return v
}

func (l *varLoc) store(ip *Interpreter, v Value) {
	if !l.env.Set(l.name, v) {
		ip.fail(ErrUndefinedVariable, l.sp, "variable '%s' is not defined", l.name)
	}
}

type listElemLoc struct {
	lst *ListObject
	idx int
	sp  Span
}

func (l *listElemLoc) load(*Interpreter) Value { return l.lst.Elems[l.idx] }

// The right side of the assignment may have shrunk the target since the
// index was bounds-checked, so check again before writing.
func (l *listElemLoc) store(ip *Interpreter, v Value) {
	if l.idx >= len(l.lst.Elems) {
		ip.fail(ErrIndex, l.sp, "index %d out of bounds for list of length %d", l.idx, len(l.lst.Elems))
	}
	l.lst.Elems[l.idx] = v
}

type mapKeyLoc struct {
	m   *MapObject
	key Value
}

func (l *mapKeyLoc) load(*Interpreter) Value {
	v, _ := l.m.Get(l.key)
	return v
}

func (l *mapKeyLoc) store(_ *Interpreter, v Value) { l.m.Set(l.key, v) }

type listSpliceLoc struct {
	lst    *ListObject
	lo, hi int
	sp     Span
}

func (l *listSpliceLoc) load(*Interpreter) Value {
	out := make([]Value, l.hi-l.lo)
	copy(out, l.lst.Elems[l.lo:l.hi])
	return List(out)
}

func (l *listSpliceLoc) store(ip *Interpreter, v Value) {
	if v.Tag != VTList {
		ip.fail(ErrType, l.sp, "cannot assign a value of type '%s' to a list slice", typeName(v))
	}
	repl := v.Data.(*ListObject).Elems
	// Copy the replacement first: it may alias the target list.
	r := make([]Value, len(repl))
	copy(r, repl)

	// The right side may have resized the target since resolution, so the
	// bounds are re-clamped against its current length.
	old := l.lst.Elems
	lo, hi := reclamp(l.lo, l.hi, len(old))
	out := make([]Value, 0, len(old)-(hi-lo)+len(r))
	out = append(out, old[:lo]...)
	out = append(out, r...)
	out = append(out, old[hi:]...)
	l.lst.Elems = out
}

// reclamp re-applies splice clamping against a container's current length.
func reclamp(lo, hi, n int) (int, int) {
	if lo > n {
		lo = n
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

type strIndexLoc struct {
	parent location
	idx    int
	sp     Span
}

func (l *strIndexLoc) load(ip *Interpreter) Value {
	runes := []rune(l.parent.load(ip).Data.(string))
	return Char(runes[l.idx])
}

func (l *strIndexLoc) store(ip *Interpreter, v Value) {
	var r rune
	switch v.Tag {
	case VTChar:
		r = v.Data.(rune)
	case VTStr:
		runes := []rune(v.Data.(string))
		if len(runes) != 1 {
			ip.fail(ErrType, l.sp, "cannot assign a string of length %d to a single character", len(runes))
		}
		r = runes[0]
	default:
		ip.fail(ErrType, l.sp, "cannot assign a value of type '%s' to a string character", typeName(v))
	}
	runes := []rune(l.parent.load(ip).Data.(string))
	if l.idx >= len(runes) {
		ip.fail(ErrIndex, l.sp, "index %d out of bounds for string of length %d", l.idx, len(runes))
	}
	runes[l.idx] = r
	l.parent.store(ip, Str(string(runes)))
}

type strSpliceLoc struct {
	parent location
	lo, hi int
	sp     Span
}

func (l *strSpliceLoc) load(ip *Interpreter) Value {
	runes := []rune(l.parent.load(ip).Data.(string))
	return Str(string(runes[l.lo:l.hi]))
}

func (l *strSpliceLoc) store(ip *Interpreter, v Value) {
	if !isTextual(v) {
		ip.fail(ErrType, l.sp, "cannot assign a value of type '%s' to a string slice", typeName(v))
	}
	runes := []rune(l.parent.load(ip).Data.(string))
	lo, hi := reclamp(l.lo, l.hi, len(runes))
	out := make([]rune, 0, len(runes)-(hi-lo)+len(textOf(v)))
	out = append(out, runes[:lo]...)
	out = append(out, []rune(textOf(v))...)
	out = append(out, runes[hi:]...)
	l.parent.store(ip, Str(string(out)))
}
