package formulas

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, 0},
		{"1e", []lexToken{{pos: 1}}, 1},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, 0},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenNum, pos: 1}}, 0},
		{".", []lexToken{{pos: 1}}, 1},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, 0},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenNum, pos: 1}}, 0},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1×0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "×", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1e1-1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}, {text: "-", kind: tokenOp, pos: 4}, {text: "1", kind: tokenNum, pos: 5}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		{"1,2", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: ",", kind: tokenSep, pos: 2}, {text: "2", kind: tokenNum, pos: 3}}, 0},
		{"1a", []lexToken{{pos: 1}}, 1},
		// text
		{`"abc"`, []lexToken{{text: "abc", kind: tokenText, pos: 1}}, 0},
		{`""`, []lexToken{{text: "", kind: tokenText, pos: 1}}, 0},
		{`"a\"b"`, []lexToken{{text: `a"b`, kind: tokenText, pos: 1}}, 0},
		{`"é" x`, []lexToken{{text: "é", kind: tokenText, pos: 1}, {text: "x", kind: tokenIdent, pos: 5}}, 0},
		{`"abc`, []lexToken{{pos: 1}}, 1},
		{"\"a\nb\"", []lexToken{{pos: 1}, {text: "b", kind: tokenIdent, pos: 4}, {pos: 5}}, 2},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"π", []lexToken{{text: "π", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"order.total", []lexToken{{text: "order.total", kind: tokenIdent, pos: 1}}, 0},
		{"add(", []lexToken{{text: "add", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 4}}, 0},
		// operators
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"a÷b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "÷", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		// brackets
		{"[]", []lexToken{{text: "[", kind: tokenOpen, pos: 1}, {text: "]", kind: tokenClose, pos: 2}}, 0},
		{"{}", []lexToken{{text: "{", kind: tokenOpen, pos: 1}, {text: "}", kind: tokenClose, pos: 2}}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"^", []lexToken{{pos: 1}}, 1},
		{";", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"$a", []lexToken{{pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 1},
		{"$$", []lexToken{{pos: 1}, {pos: 2}}, 2},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next("")
			if errors.Is(err, io.EOF) {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				var le *LexError
				if !errors.As(err, &le) {
					t.Errorf("scanning %q: error %v is not a *LexError", c.src, err)
				}
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		got, err := scan.next("")
		if err != nil || got.kind != tokenEOF {
			t.Errorf("scanning %q: extra token %v with error: %v", c.src, got, err)
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
	}
}

func TestLexStopOn(t *testing.T) {
	scan := lex(strings.NewReader("1 +\n2"))
	want := []lexToken{
		{text: "1", kind: tokenNum, pos: 1},
		{text: "+", kind: tokenOp, pos: 3},
		{kind: tokenEOF, pos: 4},
	}
	for _, w := range want {
		got, err := scan.next("\n")
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Errorf("want %v, got %v", w, got)
		}
	}
	if _, err := scan.next("\n"); !errors.Is(err, io.EOF) {
		t.Errorf("scanning after EOF gave %v", err)
	}
}

func TestLexPush(t *testing.T) {
	scan := lex(strings.NewReader("x y"))
	x, _ := scan.next("")
	scan.push(x)
	if got, _ := scan.next(""); got != x {
		t.Errorf("pushed %v but got %v", x, got)
	}
	if got, _ := scan.next(""); got.text != "y" {
		t.Errorf("want y after pushed token, got %v", got)
	}
}
