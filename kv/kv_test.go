package kv

import "testing"

func TestPrefixEnd(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"a", "b"},
		{"file:", "file;"},
		{"a\xff", "b"},
		{"\xff\xff", ""},
	}
	for _, c := range cases {
		if got := PrefixEnd(c.in); got != c.want {
			t.Errorf("PrefixEnd(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBounds(t *testing.T) {
	r := Range{Prefix: "p:", Start: "p:b", Stop: "p:d"}
	if !r.Contains("p:b") || !r.Contains("p:c:1") {
		t.Error("range excludes keys inside it")
	}
	if r.Contains("p:a") || r.Contains("p:d") || r.Contains("q:c") {
		t.Error("range includes keys outside it")
	}

	// Start below the prefix and Stop beyond it are clamped.
	r = Range{Prefix: "p:", Start: "a", Stop: "z"}
	lo, hi := r.Bounds()
	if lo != "p:" || hi != "p;" {
		t.Errorf("got [%q, %q), want [\"p:\", \"p;\")", lo, hi)
	}
}
