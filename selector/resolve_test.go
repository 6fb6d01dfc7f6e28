package selector

import (
	"strings"
	"testing"
)

func TestXPathLiteralEscaping(t *testing.T) {
	cases := map[string]string{
		`hello`:        `"hello"`,
		`it's`:         `"it's"`,
		`say "hi"`:     `'say "hi"'`,
	}
	for in, want := range cases {
		if got := xpathLiteral(in); got != want {
			t.Fatalf("xpathLiteral(%q) = %q, want %q", in, got, want)
		}
	}
	mixed := xpathLiteral(`it's "quoted"`)
	if !strings.HasPrefix(mixed, "concat(") {
		t.Fatalf("expected concat() fallback for mixed quotes, got %q", mixed)
	}
}

func TestAttrsXPathClassIsContainsOthersAreEquality(t *testing.T) {
	expr := attrsXPath(AttrSelector{Tag: "div", Pairs: map[string]string{"class": "btn", "id": "go"}})
	if !strings.Contains(expr, `contains(concat(' ', normalize-space(@class), ' ')`) {
		t.Fatalf("expected class to use contains-match, got %q", expr)
	}
	if !strings.Contains(expr, `@id="go"`) {
		t.Fatalf("expected id to use equality, got %q", expr)
	}
}

func TestIsXPathDetection(t *testing.T) {
	if !IsXPath("//div") {
		t.Fatal("expected //div to be detected as xpath")
	}
	if !IsXPath("(//div)[1]") {
		t.Fatal("expected (//div)[1] to be detected as xpath")
	}
	if IsXPath("div.foo > span") {
		t.Fatal("expected CSS selector to not be detected as xpath")
	}
}

func TestFieldSelectorFactoriesSetDescription(t *testing.T) {
	tf := TextField("Email")
	if tf.Description != `text field "Email"` {
		t.Fatalf("unexpected description: %q", tf.Description)
	}
	btn := Button("Submit")
	if btn.Description != `button "Submit"` {
		t.Fatalf("unexpected description: %q", btn.Description)
	}
}
