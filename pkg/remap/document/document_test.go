package document

import (
	"testing"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("zebra", &Integer{Value: 1})
	m.Set("apple", &Integer{Value: 2})
	m.Set("mango", &Integer{Value: 3})

	want := []string{"zebra", "apple", "mango"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i, key := range want {
		if got[i] != key {
			t.Errorf("key %d: expected %q, got %q", i, key, got[i])
		}
	}
}

func TestMapOverwriteKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", &Integer{Value: 1})
	m.Set("b", &Integer{Value: 2})
	m.Set("a", &Integer{Value: 99})

	if m.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", m.Len())
	}
	if m.Keys()[0] != "a" {
		t.Errorf("overwritten key should keep its slot, got order %v", m.Keys())
	}
	v, _ := m.Get("a")
	if v.(*Integer).Value != 99 {
		t.Errorf("expected overwritten value 99, got %s", v.Inspect())
	}
}

func TestMapDelete(t *testing.T) {
	m := NewMap()
	m.Set("a", &Integer{Value: 1})
	m.Set("b", &Integer{Value: 2})
	m.Set("c", &Integer{Value: 3})
	m.Delete("b")

	if m.Len() != 2 {
		t.Fatalf("expected 2 keys after delete, got %d", m.Len())
	}
	if _, ok := m.Get("b"); ok {
		t.Error("deleted key should be gone")
	}
	keys := m.Keys()
	if keys[0] != "a" || keys[1] != "c" {
		t.Errorf("expected [a c], got %v", keys)
	}
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewMap()
	inner.Set("x", &Integer{Value: 1})
	m := NewMap()
	m.Set("nested", inner)
	m.Set("list", &Array{Elements: []Value{&Integer{Value: 1}}})

	c := Clone(m).(*Map)

	inner.Set("x", &Integer{Value: 42})
	inner.Set("y", &Integer{Value: 2})

	cloned, _ := c.Get("nested")
	cm := cloned.(*Map)
	if cm.Len() != 1 {
		t.Errorf("clone picked up mutation of the original, keys %v", cm.Keys())
	}
	x, _ := cm.Get("x")
	if x.(*Integer).Value != 1 {
		t.Errorf("expected cloned x=1, got %s", x.Inspect())
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"ints", &Integer{Value: 3}, &Integer{Value: 3}, true},
		{"int float cross", &Integer{Value: 3}, &Float{Value: 3.0}, true},
		{"int float unequal", &Integer{Value: 3}, &Float{Value: 3.5}, false},
		{"strings", &String{Value: "a"}, &String{Value: "a"}, true},
		{"string vs int", &String{Value: "3"}, &Integer{Value: 3}, false},
		{"nulls", NULL, NULL, true},
		{"bools", TRUE, FALSE, false},
		{
			"arrays",
			&Array{Elements: []Value{&Integer{Value: 1}, &String{Value: "x"}}},
			&Array{Elements: []Value{&Integer{Value: 1}, &String{Value: "x"}}},
			true,
		},
		{
			"arrays different length",
			&Array{Elements: []Value{&Integer{Value: 1}}},
			&Array{Elements: []Value{}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
			}
		})
	}
}

func TestEqualMapsOrderInsensitive(t *testing.T) {
	a := NewMap()
	a.Set("x", &Integer{Value: 1})
	a.Set("y", &Integer{Value: 2})
	b := NewMap()
	b.Set("y", &Integer{Value: 2})
	b.Set("x", &Integer{Value: 1})

	if !Equal(a, b) {
		t.Error("maps with the same pairs should be equal regardless of order")
	}
}

func TestMergeRecursesIntoMaps(t *testing.T) {
	base := NewMap()
	baseInner := NewMap()
	baseInner.Set("keep", &Integer{Value: 1})
	baseInner.Set("replace", &Integer{Value: 2})
	base.Set("nested", baseInner)
	base.Set("top", &String{Value: "old"})

	other := NewMap()
	otherInner := NewMap()
	otherInner.Set("replace", &Integer{Value: 99})
	otherInner.Set("new", &Integer{Value: 3})
	other.Set("nested", otherInner)

	merged := Merge(base, other).(*Map)

	nested, _ := merged.Get("nested")
	nm := nested.(*Map)
	if v, _ := nm.Get("keep"); v.(*Integer).Value != 1 {
		t.Error("merge dropped an untouched nested key")
	}
	if v, _ := nm.Get("replace"); v.(*Integer).Value != 99 {
		t.Error("merge did not overwrite a nested key")
	}
	if v, _ := nm.Get("new"); v.(*Integer).Value != 3 {
		t.Error("merge did not add a new nested key")
	}
	if v, _ := merged.Get("top"); v.(*String).Value != "old" {
		t.Error("merge dropped a key missing from other")
	}
}

func TestMergeNonMapOverwrites(t *testing.T) {
	m := NewMap()
	m.Set("a", &Integer{Value: 1})
	merged := Merge(m, &Integer{Value: 5})
	if merged.(*Integer).Value != 5 {
		t.Errorf("non-map merge should overwrite, got %s", merged.Inspect())
	}
}

func TestFloatInspectKeepsDecimalPoint(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3.14, "3.14"},
		{3.0, "3.0"},
		{-2.0, "-2.0"},
	}
	for _, tt := range tests {
		f := &Float{Value: tt.in}
		if got := f.Inspect(); got != tt.want {
			t.Errorf("Float(%v).Inspect() = %q, want %q", tt.in, got, tt.want)
		}
	}
}
