package charclass

import "testing"

func TestIsWhitespace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\n', '\r', 0x00A0, 0x2028} {
		if !IsWhitespace(r) {
			t.Errorf("expected %q to be whitespace", r)
		}
	}
	for _, r := range []rune{'a', '0', '!', 0x4E2D} {
		if IsWhitespace(r) {
			t.Errorf("expected %q not to be whitespace", r)
		}
	}
}

func TestIsPunctOrCJKASCII(t *testing.T) {
	for _, r := range []rune{'!', '/', ':', '@', '[', '`', '{', '~', '+', '<', '$'} {
		if !IsPunctOrCJK(r) {
			t.Errorf("expected %q to be punct/symbol", r)
		}
	}
	for _, r := range []rune{'a', 'Z', '0', '9'} {
		if IsPunctOrCJK(r) {
			t.Errorf("expected %q not to be punct/symbol", r)
		}
	}
}

func TestIsPunctOrCJKIdeographs(t *testing.T) {
	for _, r := range []rune{0x4E2D, 0x3400, 0x9FFF, 0xF900} {
		if !IsPunctOrCJK(r) {
			t.Errorf("expected %q (U+%04X) to be CJK", r, r)
		}
	}
}

func TestIsPunctOrCJKAstralCJK(t *testing.T) {
	for _, r := range []rune{0x20000, 0x2A700, 0x2B740, 0x2B820, 0x2F800} {
		if !IsPunctOrCJK(r) {
			t.Errorf("expected %q (U+%04X) to be CJK", r, r)
		}
	}
}

func TestIsPunctOrCJKAstralOutsideRanges(t *testing.T) {
	if IsPunctOrCJK(0x10000) { // Linear B syllable, category Lo: a letter, not CJK/punct
		t.Errorf("non-CJK astral letter should not classify as punct/CJK")
	}
}
