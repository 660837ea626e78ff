package richtext

import (
	"encoding/json"
	"testing"

	"github.com/vango-dev/richtext/pkg/merge"
)

func TestConfigMergeFlags(t *testing.T) {
	tests := []struct {
		name     string
		base     *bool
		override *bool
		want     bool
	}{
		{name: "both unset", want: false},
		{name: "base only", base: Bool(true), want: true},
		{name: "override wins", base: Bool(true), override: Bool(false), want: false},
		{name: "override only", override: Bool(true), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Config[string]{OmitParagraphInListItems: tt.base}.Merge(Config[string]{OmitParagraphInListItems: tt.override})
			if flag(got.OmitParagraphInListItems) != tt.want {
				t.Errorf("flag = %v, want %v", flag(got.OmitParagraphInListItems), tt.want)
			}
		})
	}
}

func TestDefaultConfigCoversBuiltins(t *testing.T) {
	cfg := DefaultConfig[string]()

	types := []string{
		string(TypeDoc), string(TypeParagraph), string(TypeQuote), string(TypeBulletList),
		string(TypeOrderedList), string(TypeListItem), string(TypeHeading), string(TypeCodeBlock),
		string(TypeHorizontalRule), string(TypeHardBreak), string(TypeImage), string(TypeBlok),
		string(MarkBold), string(MarkStrong), string(MarkStrike), string(MarkUnderline),
		string(MarkItalic), string(MarkCode), string(MarkLink), string(MarkStyled),
	}
	for _, typ := range types {
		if !cfg.Resolvers.Nodes[typ].IsSet() {
			t.Errorf("no default resolver for %s", typ)
		}
	}
}

func TestOptionsDecodeAndConvert(t *testing.T) {
	input := `{
		"resolvers": {"paragraph": "prose-paragraph"},
		"components": {"teaser": "teaser-card", "empty": ""},
		"classes": {"heading": {"1": "big"}},
		"omitParagraphInListItems": true
	}`
	var opts Options
	if err := json.Unmarshal([]byte(input), &opts); err != nil {
		t.Fatal(err)
	}

	cfg := ConfigFrom[string](opts)
	if r := cfg.Resolvers.Nodes["paragraph"]; r.Kind() != ResolverNamed || r.Name() != "prose-paragraph" {
		t.Errorf("paragraph resolver = %v %q", r.Kind(), r.Name())
	}
	if _, ok := cfg.Resolvers.Components["empty"]; ok {
		t.Error("empty name produced a resolver")
	}
	if s, _ := cfg.Classes.StringAt("heading", "1"); s != "big" {
		t.Errorf("heading class = %q", s)
	}
	if !flag(cfg.OmitParagraphInListItems) || cfg.Editable != nil {
		t.Errorf("flags = %v %v", cfg.OmitParagraphInListItems, cfg.Editable)
	}
}

func TestOptionsMerge(t *testing.T) {
	base := Options{
		Components: map[string]string{"teaser": "a"},
		Classes:    merge.Map{"tags": merge.List{merge.String("x")}},
	}
	override := Options{
		Components: map[string]string{"teaser": "b", "grid": "g"},
		Classes:    merge.Map{"tags": merge.List{merge.String("y")}},
		Editable:   Bool(true),
	}

	got := base.Merge(override)
	if got.Components["teaser"] != "b" || got.Components["grid"] != "g" {
		t.Errorf("components = %v", got.Components)
	}
	if tags, _ := got.Classes.Lookup("tags"); len(tags.(merge.List)) != 2 {
		t.Errorf("tags = %v", tags)
	}
	if !flag(got.Editable) {
		t.Error("editable not set")
	}
	if base.Components["teaser"] != "a" {
		t.Error("base mutated")
	}
}
