package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello  ", "hello"},
		{"<b>bold</b> move", "bold move"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "alert(1)"},
		{"line one\n  line   two ", "line one\nline two"},
		{"fish &amp; chips", "fish & chips"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLineCollapsesNewlines(t *testing.T) {
	if got := Line("Morning\n<i>circle</i>  time"); got != "Morning circle time" {
		t.Fatalf("unexpected line %q", got)
	}
	if LinePtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}
