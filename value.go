// value.go: the closed runtime value model.
//
// Value is a tagged union; the tag determines which Go type Data holds.
// Lists and maps are held behind pointers so bindings alias the same storage
// and mutation through one binding is visible through all. `clone` is the
// only operation that breaks aliasing; `mirror` re-binds the same storage.
// Reclamation, including reference cycles through closures, is left to the
// Go garbage collector.
package forge

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull   ValueTag = iota // null (no payload)
	VTNumber                 // float64
	VTStr                    // string, indexed by unicode scalar
	VTChar                   // rune
	VTBool                   // bool
	VTRange                  // *RangeValue, half-open
	VTList                   // *ListObject (reference semantics)
	VTMap                    // *MapObject (insertion-ordered, reference semantics)
	VTFn                     // *Fn (closure; native or user-defined)
	VTCustom                 // *Custom (opaque host payload + ops table)
)

// Value is the universal runtime carrier.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Number(f float64) Value { return Value{Tag: VTNumber, Data: f} }
func Str(s string) Value     { return Value{Tag: VTStr, Data: s} }
func Char(r rune) Value      { return Value{Tag: VTChar, Data: r} }
func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }

// RangeValue is a half-open integer range: Lo, Lo+1, ..., Hi-1.
type RangeValue struct {
	Lo, Hi int64
}

func Range(lo, hi int64) Value { return Value{Tag: VTRange, Data: &RangeValue{Lo: lo, Hi: hi}} }

// ListObject is the shared storage behind a list value. Splices replace
// Elems in place so every alias observes the change.
type ListObject struct {
	Elems []Value
}

func List(elems []Value) Value { return Value{Tag: VTList, Data: &ListObject{Elems: elems}} }

// MapObject preserves insertion order and compares keys by deep value
// equality, so lookups are a linear scan over the ordered entries.
type MapObject struct {
	Keys []Value
	Vals []Value
}

func NewMap() Value { return Value{Tag: VTMap, Data: &MapObject{}} }

// Get returns the value for key, or (Null, false) when absent.
func (m *MapObject) Get(key Value) (Value, bool) {
	for i, k := range m.Keys {
		if deepEqual(k, key) {
			return m.Vals[i], true
		}
	}
	return Null, false
}

// Set upserts: an existing key keeps its position, a new key appends.
func (m *MapObject) Set(key, v Value) {
	for i, k := range m.Keys {
		if deepEqual(k, key) {
			m.Vals[i] = v
			return
		}
	}
	m.Keys = append(m.Keys, key)
	m.Vals = append(m.Vals, v)
}

// Fn is a function value. User functions carry parameter names, a body block,
// and the environment captured at the literal; natives carry a registered
// name, a fixed arity, and a host implementation. Decl is the declaration
// span, immutable once created, and is the sole source for declaration-site
// diagnostic frames.
type Fn struct {
	Params []string
	Body   *BlockStmt
	Env    *Env
	Decl   Span

	Native string // non-empty for registered natives
	Arity  int    // declared arity for natives
	Impl   NativeImpl
}

// FnVal wraps *Fn into a Value.
func FnVal(f *Fn) Value { return Value{Tag: VTFn, Data: f} }

func (f *Fn) arity() int {
	if f.Native != "" {
		return f.Arity
	}
	return len(f.Params)
}

// Custom is an opaque host-supplied value with its capability table.
type Custom struct {
	Ops     *CustomOps
	Payload interface{}
}

func CustomVal(ops *CustomOps, payload interface{}) Value {
	return Value{Tag: VTCustom, Data: &Custom{Ops: ops, Payload: payload}}
}

// typeName is the user-facing name of a value's type, as quoted in
// diagnostics.
func typeName(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTNumber:
		return "number"
	case VTStr:
		return "string"
	case VTChar:
		return "char"
	case VTBool:
		return "bool"
	case VTRange:
		return "range"
	case VTList:
		return "list"
	case VTMap:
		return "map"
	case VTFn:
		return "function"
	case VTCustom:
		c := v.Data.(*Custom)
		if c.Ops != nil && c.Ops.Name != "" {
			return c.Ops.Name
		}
		return "custom"
	}
	return "unknown"
}

// deepEqual compares by value, descending into lists and maps. Values of
// different tags are unequal, never an error. Custom values defer to the
// host's Eq when both sides share an ops table.
func deepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTChar:
		return a.Data.(rune) == b.Data.(rune)
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTRange:
		ar, br := a.Data.(*RangeValue), b.Data.(*RangeValue)
		return ar.Lo == br.Lo && ar.Hi == br.Hi
	case VTList:
		al, bl := a.Data.(*ListObject), b.Data.(*ListObject)
		if al == bl {
			return true
		}
		if len(al.Elems) != len(bl.Elems) {
			return false
		}
		for i := range al.Elems {
			if !deepEqual(al.Elems[i], bl.Elems[i]) {
				return false
			}
		}
		return true
	case VTMap:
		am, bm := a.Data.(*MapObject), b.Data.(*MapObject)
		if am == bm {
			return true
		}
		if len(am.Keys) != len(bm.Keys) {
			return false
		}
		for i, k := range am.Keys {
			bv, ok := bm.Get(k)
			if !ok || !deepEqual(am.Vals[i], bv) {
				return false
			}
		}
		return true
	case VTFn:
		return a.Data.(*Fn) == b.Data.(*Fn)
	case VTCustom:
		ac, bc := a.Data.(*Custom), b.Data.(*Custom)
		if ac.Ops != nil && ac.Ops == bc.Ops && ac.Ops.Eq != nil {
			return ac.Ops.Eq(ac.Payload, bc.Payload)
		}
		return ac == bc
	}
	return false
}

// deepClone produces a fully independent copy: containers are rebuilt with
// fresh storage transitively, scalars and functions copy naturally.
func deepClone(v Value) Value {
	switch v.Tag {
	case VTList:
		src := v.Data.(*ListObject)
		elems := make([]Value, len(src.Elems))
		for i, e := range src.Elems {
			elems[i] = deepClone(e)
		}
		return List(elems)
	case VTMap:
		src := v.Data.(*MapObject)
		out := &MapObject{
			Keys: make([]Value, len(src.Keys)),
			Vals: make([]Value, len(src.Vals)),
		}
		for i := range src.Keys {
			out.Keys[i] = deepClone(src.Keys[i])
			out.Vals[i] = deepClone(src.Vals[i])
		}
		return Value{Tag: VTMap, Data: out}
	default:
		return v
	}
}
