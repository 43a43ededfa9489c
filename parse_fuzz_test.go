//go:build go1.18
// +build go1.18

package formulas_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/formulas"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add(`add("a", -b.c, [1e3])`)
	f.Fuzz(func(t *testing.T, s string) {
		e, err := formulas.Parse(strings.NewReader(s))
		if err != nil {
			return
		}
		if _, err := formulas.ParseString(e.String()); err != nil {
			t.Errorf("%q parsed as %v, which doesn't parse: %v", s, e, err)
		}
	})
}
