package richtext

import (
	"github.com/vango-dev/richtext/pkg/merge"
)

// Config is a render configuration. The base configuration given to New and
// the per-call override share this type; the renderer merges them for each
// call.
type Config[O any] struct {
	// Resolvers overrides render rules per node, mark and component type.
	Resolvers Resolvers[O]

	// Classes maps a node or mark type to a class name. The "heading" entry
	// is keyed by level ("1" to "6") and the "components" entry by
	// component type.
	Classes merge.Map

	// OmitParagraphInListItems renders the children of a list item's only
	// paragraph directly under the list item. Nil means unset.
	OmitParagraphInListItems *bool

	// Editable adds the visual editor attributes to component bindings.
	// Nil means unset.
	Editable *bool
}

// Bool returns a pointer to v, for the optional flags of Config.
func Bool(v bool) *bool { return &v }

// DefaultConfig returns the configuration every render starts from.
func DefaultConfig[O any]() Config[O] {
	return Config[O]{
		Resolvers:                DefaultResolvers[O](),
		Classes:                  merge.Map{},
		OmitParagraphInListItems: Bool(false),
		Editable:                 Bool(false),
	}
}

// Merge returns c with override applied. Resolver entries are replaced per
// key, classes are deep merged and flags take the override when it is set.
// Neither input is modified.
func (c Config[O]) Merge(override Config[O]) Config[O] {
	out := Config[O]{
		Resolvers:                c.Resolvers.Merge(override.Resolvers),
		Classes:                  merge.Maps(c.Classes, override.Classes),
		OmitParagraphInListItems: pickFlag(c.OmitParagraphInListItems, override.OmitParagraphInListItems),
		Editable:                 pickFlag(c.Editable, override.Editable),
	}
	return out
}

func pickFlag(base, override *bool) *bool {
	if override != nil {
		return Bool(*override)
	}
	if base != nil {
		return Bool(*base)
	}
	return nil
}

func flag(v *bool) bool {
	return v != nil && *v
}

// Options is the serialisable form of a configuration, as read from config
// files and HTTP requests. Resolvers can only be named here; callbacks and
// primitives require Go code.
type Options struct {
	// Resolvers maps node and mark types to backend names.
	Resolvers map[string]string `json:"resolvers,omitempty" toml:"resolvers"`

	// Components maps component types to backend names.
	Components map[string]string `json:"components,omitempty" toml:"components"`

	Classes                  merge.Map `json:"classes,omitempty" toml:"classes"`
	OmitParagraphInListItems *bool     `json:"omitParagraphInListItems,omitempty" toml:"omit_paragraph_in_list_items"`
	Editable                 *bool     `json:"editable,omitempty" toml:"editable"`
}

// Merge returns o with override applied, using the same rules as
// Config.Merge.
func (o Options) Merge(override Options) Options {
	return Options{
		Resolvers:                merge.Overlay(o.Resolvers, override.Resolvers),
		Components:               merge.Overlay(o.Components, override.Components),
		Classes:                  merge.Maps(o.Classes, override.Classes),
		OmitParagraphInListItems: pickFlag(o.OmitParagraphInListItems, override.OmitParagraphInListItems),
		Editable:                 pickFlag(o.Editable, override.Editable),
	}
}

// ConfigFrom converts options into a configuration with Named resolvers.
func ConfigFrom[O any](opts Options) Config[O] {
	cfg := Config[O]{
		Resolvers: Resolvers[O]{
			Nodes:      make(map[string]Resolver[O], len(opts.Resolvers)),
			Components: make(map[string]Resolver[O], len(opts.Components)),
		},
		Classes:                  merge.Maps(nil, opts.Classes),
		OmitParagraphInListItems: pickFlag(nil, opts.OmitParagraphInListItems),
		Editable:                 pickFlag(nil, opts.Editable),
	}
	for t, name := range opts.Resolvers {
		if r := Named[O](name); r.IsSet() {
			cfg.Resolvers.Nodes[t] = r
		}
	}
	for t, name := range opts.Components {
		if r := Named[O](name); r.IsSet() {
			cfg.Resolvers.Components[t] = r
		}
	}
	return cfg
}
