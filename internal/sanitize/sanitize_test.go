package sanitize

import (
	"strings"
	"testing"
)

func TestInputStripsControlAndTags(t *testing.T) {
	cases := map[string]string{
		"  Coach A  ":                    "Coach A",
		"name\x00with\x1fcontrol":        "namewithcontrol",
		"<script>alert(1)</script>Price": "alert(1)Price",
		"plain text":                     "plain text",
		"<b>bold</b> move":               "bold move",
		"":                               "",
	}
	for input, expected := range cases {
		if got := Input(input); got != expected {
			t.Fatalf("Input(%q)=%q, want %q", input, got, expected)
		}
	}
}

func TestInputIsIdempotent(t *testing.T) {
	for _, s := range []string{"  <i>x</i> ", "clean", "\x01\x02"} {
		once := Input(s)
		if twice := Input(once); twice != once {
			t.Fatalf("Input not idempotent for %q: %q vs %q", s, once, twice)
		}
	}
}

func TestOutputEscapes(t *testing.T) {
	got := Output(`5' coach & "trailer" <new>`)
	if strings.ContainsAny(got, "<>\"") {
		t.Fatalf("unescaped characters in %q", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Fatalf("ampersand not escaped: %q", got)
	}
}

func TestCoercions(t *testing.T) {
	if !Bool("true", false) || Bool("nope", false) || !Bool(1, false) {
		t.Fatal("Bool coercion mismatch")
	}
	if Int("42", 0) != 42 || Int("x", 7) != 7 || Int(3.0, 0) != 3 {
		t.Fatal("Int coercion mismatch")
	}
}

func TestDetectors(t *testing.T) {
	if !LooksLikeEmail("secret@example.com") || LooksLikeEmail("not-an-email") {
		t.Fatal("email detector mismatch")
	}
	if !LooksLikeSSN("123-45-6789") || !LooksLikeSSN("123456789") || LooksLikeSSN("12-345") {
		t.Fatal("ssn detector mismatch")
	}
}

func TestMissingFieldsError(t *testing.T) {
	if err := MissingFieldsError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	err := MissingFieldsError([]string{"name", "stockNumber"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "stockNumber") {
		t.Fatalf("message must name every missing field: %q", msg)
	}
}
