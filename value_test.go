package formulas_test

import (
	"testing"
	"time"

	"github.com/zephyrtronium/formulas"
)

func dec(s string) formulas.Decimal {
	d, err := formulas.ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestKindNames(t *testing.T) {
	want := []string{"function", "object", "array", "text", "number", "decimal", "boolean", "datetime", "date", "time", "null"}
	kinds := formulas.Kinds()
	if len(kinds) != len(want) {
		t.Fatalf("wrong number of kinds: want %d, got %d", len(want), len(kinds))
	}
	for i, k := range kinds {
		if k.String() != want[i] {
			t.Errorf("kind %d: want %q, got %q", i, want[i], k)
		}
	}
	for i, k := range formulas.ExprKinds() {
		if w := []string{"variable", "function", "static"}[i]; k.String() != w {
			t.Errorf("expr kind %d: want %q, got %q", i, w, k)
		}
	}
}

func TestValueKinds(t *testing.T) {
	cases := []struct {
		v    formulas.Value
		kind formulas.Kind
	}{
		{formulas.NewCall(formulas.Add), formulas.KindFunction},
		{formulas.Object{}, formulas.KindObject},
		{formulas.Array{}, formulas.KindArray},
		{formulas.Text(""), formulas.KindText},
		{formulas.Number(0), formulas.KindNumber},
		{formulas.Decimal{}, formulas.KindDecimal},
		{formulas.Boolean(false), formulas.KindBoolean},
		{formulas.NewDatetime(time.Time{}), formulas.KindDatetime},
		{formulas.Date{}, formulas.KindDate},
		{formulas.Time{}, formulas.KindTime},
		{formulas.Null{}, formulas.KindNull},
	}
	for _, c := range cases {
		if got := c.v.Kind(); got != c.kind {
			t.Errorf("%#v has kind %v, want %v", c.v, got, c.kind)
		}
	}
}

func TestEqual(t *testing.T) {
	noon := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b formulas.Value
		eq   bool
	}{
		{"nil-nil", nil, nil, true},
		{"nil-null", nil, formulas.Null{}, false},
		{"null", formulas.Null{}, formulas.Null{}, true},
		{"text", formulas.Text("a"), formulas.Text("a"), true},
		{"text-ne", formulas.Text("a"), formulas.Text("b"), false},
		{"number", formulas.Number(1.5), formulas.Number(1.5), true},
		{"number-decimal", formulas.Number(1.5), dec("1.5"), false},
		{"decimal-scale", dec("1.0"), dec("1.00"), true},
		{"decimal-zero", formulas.Decimal{}, dec("0.000"), true},
		{"decimal-ne", dec("1.01"), dec("1.1"), false},
		{"boolean", formulas.Boolean(true), formulas.Boolean(true), true},
		{"datetime-zone", formulas.NewDatetime(noon), formulas.NewDatetime(noon.In(time.FixedZone("X", 3600))), true},
		{"date", formulas.Date{Year: 2022, Month: 1, Day: 1}, formulas.DateOf(noon), true},
		{"time", formulas.Time{Hour: 12}, formulas.TimeOf(noon), true},
		{"array", formulas.Array{formulas.Number(1), formulas.Text("x")}, formulas.Array{formulas.Number(1), formulas.Text("x")}, true},
		{"array-order", formulas.Array{formulas.Number(1), formulas.Number(2)}, formulas.Array{formulas.Number(2), formulas.Number(1)}, false},
		{"object", formulas.Object{"a": formulas.Null{}}, formulas.Object{"a": formulas.Null{}}, true},
		{"object-keys", formulas.Object{"a": formulas.Null{}}, formulas.Object{"b": formulas.Null{}}, false},
		{"call", formulas.NewCall(formulas.Add, formulas.Number(1)), formulas.NewCall(formulas.Add, formulas.Number(1)), true},
		{"call-func", formulas.NewCall(formulas.Add, formulas.Number(1)), formulas.NewCall(formulas.Multiply, formulas.Number(1)), false},
		{"call-args", formulas.NewCall(formulas.Add), formulas.NewCall(formulas.Add, formulas.Number(1)), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formulas.Equal(c.a, c.b); got != c.eq {
				t.Errorf("Equal(%v, %v) = %t, want %t", c.a, c.b, got, c.eq)
			}
			if got := formulas.Equal(c.b, c.a); got != c.eq {
				t.Errorf("Equal(%v, %v) = %t, want %t", c.b, c.a, got, c.eq)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    formulas.Value
		want string
	}{
		{formulas.NewCall(formulas.Add, formulas.Number(1), dec("2.50")), "add(1, 2.50)"},
		{formulas.NewCall(formulas.Divide), "divide()"},
		{formulas.Object{"b": formulas.Boolean(true), "a": formulas.Null{}}, `{"a": null, "b": true}`},
		{formulas.Array{formulas.Text("x"), formulas.Number(-0.5)}, `["x", -0.5]`},
		{formulas.Decimal{}, "0"},
		{dec("1e3"), "1000"},
		{dec("-0.001"), "-0.001"},
		{formulas.NewDatetime(time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)), "2022-01-01T12:00:00Z"},
		{formulas.Date{Year: 2022, Month: 1, Day: 2}, "2022-01-02"},
		{formulas.Time{Hour: 23, Minute: 59, Second: 59}, "23:59:59"},
		{formulas.Time{Hour: 1, Nanosecond: 500000000}, "01:00:00.5"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("wrong string for %#v: want %q, got %q", c.v, c.want, got)
		}
	}
}

func TestNewCallCopies(t *testing.T) {
	args := []formulas.Value{formulas.Number(1)}
	c := formulas.NewCall(formulas.Add, args...)
	args[0] = formulas.Number(2)
	if !c.Args[0].Equal(formulas.Number(1)) {
		t.Errorf("NewCall shares its argument slice: %v", c)
	}
}
