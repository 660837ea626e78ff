package render

// isInlineElement reports whether tag stays on its parent's line when
// pretty-printing. Covers the elements mark resolvers produce.
func isInlineElement(tag string) bool {
	switch tag {
	case "a", "abbr", "b", "br", "cite", "code", "del", "em", "i", "img",
		"ins", "kbd", "mark", "q", "s", "small", "span", "strong", "sub",
		"sup", "u":
		return true
	}
	return false
}

// isBooleanAttr reports whether name is written without a value when true,
// e.g. <ol reversed> or <details open>.
func isBooleanAttr(name string) bool {
	switch name {
	case "allowfullscreen", "async", "controls", "defer", "disabled",
		"hidden", "loop", "muted", "open", "playsinline", "reversed":
		return true
	}
	return false
}
