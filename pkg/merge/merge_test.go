package merge

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMergeRules(t *testing.T) {
	tests := []struct {
		name     string
		base     Value
		override Value
		want     Value
	}{
		{
			name:     "lists concatenate base first",
			base:     Map{"a": List{Number(1), Number(2)}},
			override: Map{"a": List{Number(3)}},
			want:     Map{"a": List{Number(1), Number(2), Number(3)}},
		},
		{
			name:     "disjoint keys union",
			base:     Map{"a": String("x")},
			override: Map{"b": String("y")},
			want:     Map{"a": String("x"), "b": String("y")},
		},
		{
			name:     "scalar override wins",
			base:     Map{"a": String("x")},
			override: Map{"a": String("y")},
			want:     Map{"a": String("y")},
		},
		{
			name:     "nested maps recurse",
			base:     Map{"heading": Map{"1": String("h1")}},
			override: Map{"heading": Map{"2": String("h2")}},
			want:     Map{"heading": Map{"1": String("h1"), "2": String("h2")}},
		},
		{
			name:     "type conflict override wins",
			base:     Map{"a": Map{"x": Bool(true)}},
			override: Map{"a": String("flat")},
			want:     Map{"a": String("flat")},
		},
		{
			name:     "list against scalar override wins",
			base:     Map{"a": List{String("x")}},
			override: Map{"a": Number(4)},
			want:     Map{"a": Number(4)},
		},
		{
			name:     "null override wins",
			base:     Map{"a": String("x")},
			override: Map{"a": Null{}},
			want:     Map{"a": Null{}},
		},
		{
			name:     "nil override keeps base",
			base:     Map{"a": String("x")},
			override: nil,
			want:     Map{"a": String("x")},
		},
		{
			name:     "nil base takes override",
			base:     nil,
			override: List{String("z")},
			want:     List{String("z")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.override)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMergeIdentity(t *testing.T) {
	base := Map{
		"paragraph":  String("prose"),
		"heading":    Map{"1": String("a"), "2": String("b")},
		"components": Map{"teaser": String("card")},
		"list":       List{Number(1)},
	}

	got := Merge(base, Map{})
	if !reflect.DeepEqual(got, base) {
		t.Errorf("Merge(base, {}) = %#v, want %#v", got, base)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := Map{
		"heading": Map{"1": String("a")},
		"list":    List{Number(1)},
	}
	override := Map{
		"heading": Map{"2": String("b")},
		"list":    List{Number(2)},
	}

	got := Merge(base, override).(Map)

	if _, ok := base["heading"].(Map)["2"]; ok {
		t.Error("base heading map was mutated")
	}
	if len(base["list"].(List)) != 1 {
		t.Error("base list was mutated")
	}
	if len(override["heading"].(Map)) != 1 {
		t.Error("override heading map was mutated")
	}

	// The result must not alias either input.
	got["heading"].(Map)["3"] = String("c")
	if _, ok := base["heading"].(Map)["3"]; ok {
		t.Error("result aliases base map")
	}
	if _, ok := override["heading"].(Map)["3"]; ok {
		t.Error("result aliases override map")
	}
}

func TestMergeDeterministic(t *testing.T) {
	base := Map{"a": List{String("x")}, "b": Map{"c": Number(1)}}
	override := Map{"a": List{String("y")}, "b": Map{"d": Number(2)}}

	first := Merge(base, override)
	for i := 0; i < 10; i++ {
		if got := Merge(base, override); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %#v vs %#v", i, got, first)
		}
	}
}

func TestOverlay(t *testing.T) {
	base := map[string]int{"a": 1, "b": 2}
	override := map[string]int{"b": 3, "c": 4}

	got := Overlay(base, override)
	want := map[string]int{"a": 1, "b": 3, "c": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Overlay() = %v, want %v", got, want)
	}
	if base["b"] != 2 {
		t.Error("Overlay mutated base")
	}
}

func TestMapLookupAndStringAt(t *testing.T) {
	m := Map{
		"paragraph": String("prose"),
		"heading":   Map{"2": String("h2"), "3": Number(3)},
	}

	if s, ok := m.StringAt("paragraph"); !ok || s != "prose" {
		t.Errorf("StringAt(paragraph) = %q, %v", s, ok)
	}
	if s, ok := m.StringAt("heading", "2"); !ok || s != "h2" {
		t.Errorf("StringAt(heading, 2) = %q, %v", s, ok)
	}
	if s, ok := m.StringAt("heading", "3"); !ok || s != "3" {
		t.Errorf("StringAt(heading, 3) = %q, %v", s, ok)
	}
	if _, ok := m.StringAt("heading", "4"); ok {
		t.Error("StringAt(heading, 4) should not be found")
	}
	if _, ok := m.StringAt("heading"); ok {
		t.Error("StringAt(heading) should not resolve a map")
	}
	if _, ok := m.Lookup("paragraph", "x"); ok {
		t.Error("Lookup through a scalar should fail")
	}
}

func TestFromAny(t *testing.T) {
	var decoded map[string]any
	input := `{"paragraph":"p","heading":{"1":"h1"},"list":[1,"two",true,null]}`
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		t.Fatal(err)
	}

	got, err := MapFromAny(decoded)
	if err != nil {
		t.Fatalf("MapFromAny() error = %v", err)
	}
	want := Map{
		"paragraph": String("p"),
		"heading":   Map{"1": String("h1")},
		"list":      List{Number(1), String("two"), Bool(true), Null{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MapFromAny() = %#v, want %#v", got, want)
	}

	// TOML decoders produce int64 and []map[string]any.
	tomlish := map[string]any{
		"n":      int64(2),
		"tables": []map[string]any{{"a": "b"}},
	}
	got, err = MapFromAny(tomlish)
	if err != nil {
		t.Fatalf("MapFromAny(toml) error = %v", err)
	}
	if got["n"] != Number(2) {
		t.Errorf("n = %#v", got["n"])
	}
	if !reflect.DeepEqual(got["tables"], List{Map{"a": String("b")}}) {
		t.Errorf("tables = %#v", got["tables"])
	}

	if _, err := FromAny(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestMapJSONRoundTrip(t *testing.T) {
	m := Map{"heading": Map{"1": String("a")}, "paragraph": String("p")}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back Map
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, m) {
		t.Errorf("round trip = %#v, want %#v", back, m)
	}
}
