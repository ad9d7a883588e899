package forge

import "testing"

func Test_Value_DeepEqual_Scalars(t *testing.T) {
	if !deepEqual(Number(1), Number(1)) || deepEqual(Number(1), Number(2)) {
		t.Fatalf("number equality broken")
	}
	if deepEqual(Number(1), Str("1")) {
		t.Fatalf("values of different tags are never equal")
	}
	if !deepEqual(Null, Null) {
		t.Fatalf("null equals null")
	}
	if !deepEqual(Char('a'), Char('a')) || deepEqual(Char('a'), Str("a")) {
		t.Fatalf("char equality broken")
	}
	if !deepEqual(Range(1, 4), Range(1, 4)) || deepEqual(Range(1, 4), Range(1, 5)) {
		t.Fatalf("range equality broken")
	}
}

func Test_Value_DeepEqual_Containers(t *testing.T) {
	a := List([]Value{Number(1), Str("x")})
	b := List([]Value{Number(1), Str("x")})
	c := List([]Value{Number(1)})
	if !deepEqual(a, b) || deepEqual(a, c) {
		t.Fatalf("list equality broken")
	}

	m1 := NewMap()
	m1.Data.(*MapObject).Set(Str("k"), Number(1))
	m2 := NewMap()
	m2.Data.(*MapObject).Set(Str("k"), Number(1))
	if !deepEqual(m1, m2) {
		t.Fatalf("maps with equal entries should compare equal")
	}
	m2.Data.(*MapObject).Set(Str("j"), Number(2))
	if deepEqual(m1, m2) {
		t.Fatalf("maps with different sizes should not compare equal")
	}
}

func Test_Value_DeepEqual_Map_Ignores_Insertion_Order(t *testing.T) {
	m1 := &MapObject{}
	m1.Set(Number(1), Str("a"))
	m1.Set(Number(2), Str("b"))
	m2 := &MapObject{}
	m2.Set(Number(2), Str("b"))
	m2.Set(Number(1), Str("a"))
	if !deepEqual(Value{Tag: VTMap, Data: m1}, Value{Tag: VTMap, Data: m2}) {
		t.Fatalf("entry order should not affect map equality")
	}
}

func Test_Value_Fn_Equality_Is_Identity(t *testing.T) {
	f := &Fn{Params: []string{"a"}}
	g := &Fn{Params: []string{"a"}}
	if !deepEqual(FnVal(f), FnVal(f)) || deepEqual(FnVal(f), FnVal(g)) {
		t.Fatalf("functions compare by identity")
	}
}

func Test_Value_DeepClone_Breaks_Aliasing(t *testing.T) {
	inner := List([]Value{Number(1)})
	outer := List([]Value{inner})
	cp := deepClone(outer)

	cp.Data.(*ListObject).Elems[0].Data.(*ListObject).Elems[0] = Number(99)
	if inner.Data.(*ListObject).Elems[0].Data.(float64) != 1 {
		t.Fatalf("clone should not share nested storage")
	}
}

func Test_Value_DeepClone_Copies_Map_Entries(t *testing.T) {
	m := NewMap()
	m.Data.(*MapObject).Set(Str("k"), List([]Value{Number(1)}))
	cp := deepClone(m)

	v, _ := cp.Data.(*MapObject).Get(Str("k"))
	v.Data.(*ListObject).Elems[0] = Number(2)

	orig, _ := m.Data.(*MapObject).Get(Str("k"))
	if orig.Data.(*ListObject).Elems[0].Data.(float64) != 1 {
		t.Fatalf("clone should not share map values")
	}
}

func Test_Value_Map_Set_Preserves_Position(t *testing.T) {
	m := &MapObject{}
	m.Set(Str("a"), Number(1))
	m.Set(Str("b"), Number(2))
	m.Set(Str("a"), Number(9))
	if len(m.Keys) != 2 || m.Keys[0].Data.(string) != "a" || m.Vals[0].Data.(float64) != 9 {
		t.Fatalf("upsert should keep the original slot: %#v", m)
	}
}

func Test_Value_TypeName(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "null"},
		{Number(1), "number"},
		{Str(""), "string"},
		{Char('x'), "char"},
		{Bool(true), "bool"},
		{Range(0, 1), "range"},
		{List(nil), "list"},
		{NewMap(), "map"},
		{FnVal(&Fn{}), "function"},
		{CustomVal(&CustomOps{Name: "handle"}, nil), "handle"},
	}
	for _, c := range cases {
		if got := typeName(c.v); got != c.want {
			t.Fatalf("typeName(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}
