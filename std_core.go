// std_core.go: the natives installed into Core at interpreter construction.
// They go through the same call protocol (including arity checking) as
// user-defined functions; `num` and `str` double as conversion targets for
// the `as` operator.
package forge

import (
	"fmt"
	"strconv"
	"strings"
)

func typeErrf(format string, args ...interface{}) error {
	return &RuntimeError{Kind: ErrType, Msg: fmt.Sprintf(format, args...)}
}

func installCoreNatives(ip *Interpreter) {
	ip.RegisterNative("len", 1, func(_ *Interpreter, args []Value) (Value, error) {
		v := args[0]
		switch v.Tag {
		case VTStr:
			return Number(float64(len([]rune(v.Data.(string))))), nil
		case VTList:
			return Number(float64(len(v.Data.(*ListObject).Elems))), nil
		case VTMap:
			return Number(float64(len(v.Data.(*MapObject).Keys))), nil
		case VTRange:
			r := v.Data.(*RangeValue)
			if r.Hi <= r.Lo {
				return Number(0), nil
			}
			return Number(float64(r.Hi - r.Lo)), nil
		}
		return Null, typeErrf("cannot take the length of value of type '%s'", typeName(v))
	})

	ip.RegisterNative("str", 1, func(_ *Interpreter, args []Value) (Value, error) {
		return Str(displayString(args[0])), nil
	})

	ip.RegisterNative("num", 1, func(_ *Interpreter, args []Value) (Value, error) {
		v := args[0]
		switch v.Tag {
		case VTNumber:
			return v, nil
		case VTStr:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Data.(string)), 64)
			if err != nil {
				return Null, typeErrf("cannot convert %q to a number", v.Data.(string))
			}
			return Number(f), nil
		case VTChar:
			f, err := strconv.ParseFloat(string(v.Data.(rune)), 64)
			if err != nil {
				return Null, typeErrf("cannot convert '%c' to a number", v.Data.(rune))
			}
			return Number(f), nil
		case VTBool:
			if v.Data.(bool) {
				return Number(1), nil
			}
			return Number(0), nil
		}
		return Null, typeErrf("cannot convert value of type '%s' to a number", typeName(v))
	})

	ip.RegisterNative("push", 2, func(_ *Interpreter, args []Value) (Value, error) {
		if args[0].Tag != VTList {
			return Null, typeErrf("push expects a list, got '%s'", typeName(args[0]))
		}
		lst := args[0].Data.(*ListObject)
		lst.Elems = append(lst.Elems, args[1])
		return args[0], nil
	})

	ip.RegisterNative("pop", 1, func(_ *Interpreter, args []Value) (Value, error) {
		if args[0].Tag != VTList {
			return Null, typeErrf("pop expects a list, got '%s'", typeName(args[0]))
		}
		lst := args[0].Data.(*ListObject)
		if len(lst.Elems) == 0 {
			return Null, &RuntimeError{Kind: ErrIndex, Msg: "pop from an empty list"}
		}
		v := lst.Elems[len(lst.Elems)-1]
		lst.Elems = lst.Elems[:len(lst.Elems)-1]
		return v, nil
	})

	ip.RegisterNative("keys", 1, func(_ *Interpreter, args []Value) (Value, error) {
		if args[0].Tag != VTMap {
			return Null, typeErrf("keys expects a map, got '%s'", typeName(args[0]))
		}
		m := args[0].Data.(*MapObject)
		out := make([]Value, len(m.Keys))
		copy(out, m.Keys)
		return List(out), nil
	})

	// There is no empty map literal; map() is how programs get one.
	ip.RegisterNative("map", 0, func(_ *Interpreter, _ []Value) (Value, error) {
		return NewMap(), nil
	})
}
