package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  hello  ", "hello"},
		{"internal runs", "room  is \t ready", "room is ready"},
		{"newlines", "line one\nline two", "line one line two"},
		{"control chars", "bad\x00input\x07here", "badinputhere"},
		{"unicode kept", "квартира в центре", "квартира в центре"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := TrimAndNormalize(c.in); got != c.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("short strings should pass through, got %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("zero length should return empty, got %q", got)
	}
	// rune-aware, not byte-aware
	if got := Truncate("привет", 4); got != "прив" {
		t.Errorf("expected прив, got %q", got)
	}
}

func TestFreeText(t *testing.T) {
	got := FreeText("  please   rent me \n this room  ", 14)
	if got != "please rent me" {
		t.Errorf("unexpected result: %q", got)
	}
}
