package richtext

import (
	"strconv"
	"strings"
)

// DefaultResolvers returns the resolver table that renders every built-in
// node and mark type as plain HTML elements. The component fallback (blok)
// renders a placeholder.
func DefaultResolvers[O any]() Resolvers[O] {
	return Resolvers[O]{
		Nodes: map[string]Resolver[O]{
			string(TypeDoc):            Prim[O](Tag("div")),
			string(TypeParagraph):      Prim[O](Tag("p")),
			string(TypeQuote):          Prim[O](Tag("blockquote")),
			string(TypeBulletList):     Prim[O](Tag("ul")),
			string(TypeListItem):       Prim[O](Tag("li")),
			string(TypeOrderedList):    Callback(orderedList[O]),
			string(TypeHeading):        Callback(heading[O]),
			string(TypeCodeBlock):      Callback(codeBlock[O]),
			string(TypeHorizontalRule): Prim[O](Tag("hr")),
			string(TypeHardBreak):      Prim[O](Tag("br")),
			string(TypeImage):          Callback(image[O]),

			string(MarkBold):      Prim[O](Tag("b")),
			string(MarkStrong):    Prim[O](Tag("strong")),
			string(MarkStrike):    Prim[O](Tag("s")),
			string(MarkUnderline): Prim[O](Tag("u")),
			string(MarkItalic):    Prim[O](Tag("i")),
			string(MarkCode):      Prim[O](Tag("code")),
			string(MarkLink):      Callback(link[O]),
			string(MarkStyled):    Callback(styled[O]),

			string(TypeBlok): Callback(missingComponent[O]),
		},
		Components: map[string]Resolver[O]{},
	}
}

func heading[O any](c RenderContext[O]) O {
	level := c.Attrs.Int("level", 1)
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return c.Element("h"+strconv.Itoa(level), c.Attrs.Without("level"), c.Children...)
}

func orderedList[O any](c RenderContext[O]) O {
	attrs := c.Attrs.Without("order")
	if order := c.Attrs.Int("order", 1); order > 1 {
		attrs["start"] = order
	}
	return c.Element("ol", attrs, c.Children...)
}

func codeBlock[O any](c RenderContext[O]) O {
	var code Attrs
	if lang := c.Attrs.String("class"); lang != "" {
		code = Attrs{"class": lang}
	}
	return c.Element("pre", c.Attrs.Without("class"), c.Element("code", code, c.Children...))
}

func image[O any](c RenderContext[O]) O {
	attrs := Attrs{}
	for _, key := range []string{"src", "alt", "title", ClassesAttr} {
		if v := c.Attrs.String(key); v != "" {
			attrs[key] = v
		}
	}
	return c.Element("img", attrs)
}

func link[O any](c RenderContext[O]) O {
	attrs := Attrs{}
	if href := LinkHref(c.Attrs); href != "" {
		attrs["href"] = href
	}
	if target := c.Attrs.String("target"); target != "" {
		attrs["target"] = target
	}
	if cls := c.Attrs.String(ClassesAttr); cls != "" {
		attrs[ClassesAttr] = cls
	}
	// Custom link attributes (rel, title, ...) set in the editor.
	if custom, ok := c.Attrs["custom"].(map[string]any); ok {
		for k, v := range custom {
			if _, taken := attrs[k]; !taken {
				attrs[k] = stringOf(v)
			}
		}
	}
	return c.Element("a", attrs, c.Text)
}

// LinkHref builds the href of a link mark from its attributes: email links
// get a mailto: scheme and an anchor is appended as a fragment. Script URLs
// are dropped (see SafeURL).
func LinkHref(attrs Attrs) string {
	href := SafeURL(attrs.String("href"))
	switch attrs.String("linktype") {
	case "email":
		if href != "" {
			href = "mailto:" + href
		}
	}
	if anchor := attrs.String("anchor"); anchor != "" {
		href += "#" + anchor
	}
	return href
}

// SafeURL returns u, or "" when its scheme runs script (javascript:,
// vbscript:) or carries a non-image data: payload. Browsers ignore ASCII
// whitespace and control characters inside a scheme, so they are stripped
// before the check.
func SafeURL(u string) string {
	var scheme strings.Builder
	for _, r := range u {
		if r <= ' ' || r == 0x7f {
			continue
		}
		if r == ':' || r == '/' || r == '?' || r == '#' || scheme.Len() >= 16 {
			if r != ':' {
				return u
			}
			break
		}
		scheme.WriteRune(r)
	}

	switch strings.ToLower(scheme.String()) {
	case "javascript", "vbscript":
		return ""
	case "data":
		rest := strings.ToLower(strings.TrimSpace(u[strings.IndexByte(u, ':')+1:]))
		if !strings.HasPrefix(rest, "image/") || strings.HasPrefix(rest, "image/svg") {
			return ""
		}
	}
	return u
}

func styled[O any](c RenderContext[O]) O {
	attrs := Attrs{}
	if cls := c.Attrs.String("class"); cls != "" {
		attrs["class"] = cls
	}
	if cls := c.Attrs.String(ClassesAttr); cls != "" {
		attrs[ClassesAttr] = cls
	}
	return c.Element("span", attrs, c.Text)
}

func missingComponent[O any](c RenderContext[O]) O {
	return c.Placeholder(PlaceholderComponent)
}
