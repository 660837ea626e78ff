package merge

// Merge deep-merges override onto base and returns a new value.
//
// Two Lists concatenate (base then override), two Maps merge key by key,
// and in every other case the override wins. A nil override keeps base.
func Merge(base, override Value) Value {
	if override == nil {
		return Clone(base)
	}
	if base == nil {
		return Clone(override)
	}

	switch o := override.(type) {
	case List:
		if b, ok := base.(List); ok {
			out := make(List, 0, len(b)+len(o))
			for _, item := range b {
				out = append(out, Clone(item))
			}
			for _, item := range o {
				out = append(out, Clone(item))
			}
			return out
		}
	case Map:
		if b, ok := base.(Map); ok {
			return Maps(b, o)
		}
	}

	return Clone(override)
}

// Maps merges two maps. Keys present on one side only are copied; keys
// present on both sides are combined with Merge.
func Maps(base, override Map) Map {
	out := make(Map, len(base)+len(override))
	for k, v := range base {
		out[k] = Clone(v)
	}
	for k, v := range override {
		if existing, ok := out[k]; ok {
			out[k] = Merge(existing, v)
			continue
		}
		out[k] = Clone(v)
	}
	return out
}

// Overlay merges two maps whose values are opaque leaves: every key of
// override replaces the key in base. It is the Merge rule applied to
// values that cannot be Lists or Maps.
func Overlay[K comparable, V any](base, override map[K]V) map[K]V {
	out := make(map[K]V, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
