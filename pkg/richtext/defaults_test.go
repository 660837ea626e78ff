package richtext

import "testing"

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "/docs", want: "/docs"},
		{in: "#top", want: "#top"},
		{in: "https://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{in: "mailto:a@b.c", want: "mailto:a@b.c"},
		{in: "a@b.c", want: "a@b.c"},
		{in: "relative/path/with:colon", want: "relative/path/with:colon"},
		{in: "javascript:alert(1)", want: ""},
		{in: "  JavaScript:alert(1)", want: ""},
		{in: "java\tscript:alert(1)", want: ""},
		{in: "java\x00script:alert(1)", want: ""},
		{in: "vbscript:msgbox", want: ""},
		{in: "data:text/html,<script>", want: ""},
		{in: "data:image/svg+xml,<svg onload=x>", want: ""},
		{in: "data:image/png;base64,AAAA", want: "data:image/png;base64,AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeURL(tt.in); got != tt.want {
				t.Errorf("SafeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinkHref(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attrs
		want  string
	}{
		{name: "url", attrs: Attrs{"href": "/x", "linktype": "url"}, want: "/x"},
		{name: "email", attrs: Attrs{"href": "a@b.c", "linktype": "email"}, want: "mailto:a@b.c"},
		{name: "anchor only", attrs: Attrs{"anchor": "top"}, want: "#top"},
		{name: "script", attrs: Attrs{"href": "javascript:alert(1)", "linktype": "url"}, want: ""},
		{name: "script keeps anchor", attrs: Attrs{"href": "javascript:x", "anchor": "top"}, want: "#top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkHref(tt.attrs); got != tt.want {
				t.Errorf("LinkHref() = %q, want %q", got, tt.want)
			}
		})
	}
}
