package formulas_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/zephyrtronium/formulas"
)

func TestResolveEval(t *testing.T) {
	cases := []struct {
		name string
		e    formulas.Expr
		vars formulas.Vars
		want string
	}{
		{
			name: "add",
			e:    callx(formulas.Add, v("test"), static(num(1.2))),
			vars: formulas.Vars{"test": num(3)},
			want: "4.2",
		},
		{
			name: "nested",
			e:    callx(formulas.Add, callx(formulas.Add, v("test"), static(num(123))), static(num(5))),
			vars: formulas.Vars{"test": num(12.12)},
			want: "140.12",
		},
		{
			name: "bound-call",
			e:    callx(formulas.Multiply, v("f"), static(dec("2"))),
			vars: formulas.Vars{"f": call(formulas.Add, num(1), num(2))},
			want: "6",
		},
		{
			name: "decimal",
			e:    callx(formulas.Subtract, v("price"), v("discount")),
			vars: formulas.Vars{"price": dec("19.99"), "discount": dec("0.99")},
			want: "19",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := formulas.ResolveEval(c.e, c.vars)
			if err != nil {
				t.Fatalf("evaluating %v failed: %v", c.e, err)
			}
			if !r.Equal(dec(c.want)) {
				t.Errorf("%v: want %s, got %v", c.e, c.want, r)
			}
		})
	}
}

func TestEvalNonCall(t *testing.T) {
	// Values other than calls are already evaluated. Their contents are not
	// searched for calls.
	cases := []formulas.Value{
		num(1),
		dec("1.5"),
		formulas.Text("add(1, 2)"),
		formulas.Null{},
		formulas.Array{call(formulas.Add, num(1))},
		formulas.Object{"f": call(formulas.Add, num(1))},
	}
	for _, c := range cases {
		r, err := formulas.Eval(c)
		if err != nil {
			t.Errorf("evaluating %v failed: %v", c, err)
			continue
		}
		if !formulas.Equal(r, c) {
			t.Errorf("evaluating %v gave %v", c, r)
		}
	}
}

func TestEvalIdempotent(t *testing.T) {
	vals := []formulas.Value{
		call(formulas.Add, num(0.1), num(0.2)),
		call(formulas.Divide, num(1), num(3)),
		num(12.12),
		formulas.Text("x"),
	}
	for _, val := range vals {
		r, err := formulas.Eval(val)
		if err != nil {
			t.Fatalf("evaluating %v failed: %v", val, err)
		}
		s, err := formulas.Eval(r)
		if err != nil {
			t.Fatalf("evaluating %v again failed: %v", r, err)
		}
		if !formulas.Equal(r, s) {
			t.Errorf("evaluating %v twice: first %v, then %v", val, r, s)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	deep := func(n int) formulas.Expr {
		e := formulas.Expr(v("x"))
		for i := 1; i < n; i++ {
			e = callx(formulas.Add, e)
		}
		return e
	}
	ctx := formulas.NewContext(formulas.MaxDepth(10), formulas.SetVar("x", num(1)))
	if _, err := ctx.ResolveEval(deep(10)); err != nil {
		t.Errorf("depth 10 failed: %v", err)
	}
	_, err := ctx.Resolve(deep(11))
	var de *formulas.DepthError
	if !errors.As(err, &de) || de.Max != 10 {
		t.Errorf("resolving depth 11 gave %v", err)
	}
	// Bound calls can make the resolved value deeper than its template.
	ctx.Set("x", call(formulas.Add, call(formulas.Add, num(1))))
	r, err := ctx.Resolve(deep(10))
	if err != nil {
		t.Fatalf("resolving failed: %v", err)
	}
	if _, err := ctx.Eval(r); !errors.As(err, &de) {
		t.Errorf("evaluating the deeper value gave %v", err)
	}
	// No limit by default.
	if _, err := formulas.ResolveEval(deep(1000), formulas.Vars{"x": num(1)}); err != nil {
		t.Errorf("depth 1000 failed: %v", err)
	}
}

func TestContextVars(t *testing.T) {
	zero := dec("0")
	one := dec("1")
	ctx := formulas.NewContext(formulas.SetVar("x", zero))
	if x := ctx.Lookup("x"); x == nil || !x.Equal(zero) {
		t.Errorf("x should be %v but is %v", zero, x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("context has y: %v", y)
	}
	ctx.Set("y", one)
	if y := ctx.Lookup("y"); y == nil || !y.Equal(one) {
		t.Errorf("y should be %v but is %v", one, y)
	}
	clone := ctx.Clone(formulas.SetVars(formulas.Vars{"x": one, "z": one}))
	if x := ctx.Lookup("x"); !x.Equal(zero) {
		t.Errorf("setting x in a clone changed the original to %v", x)
	}
	if x := clone.Lookup("x"); !x.Equal(one) {
		t.Errorf("x in clone should be %v but is %v", one, x)
	}
	if got := strings.Join(clone.Vars(), " "); got != "x y z" {
		t.Errorf("clone has variables %q", got)
	}
	if got := formulas.NewContext().Vars(); got != nil {
		t.Errorf("empty context has variables %q", got)
	}
}

func TestContextPrec(t *testing.T) {
	if p := formulas.NewContext().Prec(); p != formulas.DefaultPrec {
		t.Errorf("default precision is %d", p)
	}
	ctx := formulas.NewContext(formulas.Prec(5))
	if p := ctx.Clone().Prec(); p != 5 {
		t.Errorf("clone has precision %d", p)
	}
	if p := ctx.Clone(formulas.Prec(0)).Prec(); p != formulas.DefaultPrec {
		t.Errorf("zero precision gave %d", p)
	}
}

func TestLogger(t *testing.T) {
	var b bytes.Buffer
	l := slog.New(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := formulas.NewContext(formulas.Logger(l))
	if _, err := ctx.Eval(call(formulas.Add, num(1), num(2))); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "folded call") || !strings.Contains(b.String(), "func=add") {
		t.Errorf("log doesn't describe the fold:\n%s", b.String())
	}
	b.Reset()
	if _, err := ctx.Resolve(v("missing")); err == nil {
		t.Fatal("resolved an unbound variable")
	}
	if !strings.Contains(b.String(), "name=missing") {
		t.Errorf("log doesn't name the unbound variable:\n%s", b.String())
	}
}

func BenchmarkEval(b *testing.B) {
	vars := formulas.Vars{
		"x": num(2),
		"y": dec("3.5"),
		"z": num(4),
	}
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		val := call(formulas.Add, num(2), num(3), num(4))
		for i := 0; i < b.N; i++ {
			formulas.Eval(val)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := formulas.NewContext(formulas.SetVars(vars))
		e := callx(formulas.Multiply, callx(formulas.Add, v("x"), v("y")), v("z"))
		for i := 0; i < b.N; i++ {
			ctx.ResolveEval(e)
		}
	})
}

func Example() {
	price, _ := formulas.ParseString("(cost + shipping) * 1.2")
	fmt.Println(price)
	fmt.Println(formulas.Variables(price))

	vars := formulas.Vars{
		"cost":     formulas.Number(12.5),
		"shipping": formulas.NewDecimal(399, -2),
	}
	r, err := formulas.ResolveEval(price, vars)
	fmt.Println(r, err)

	_, err = formulas.ResolveEval(price, formulas.Vars{"cost": formulas.Number(1)})
	fmt.Println(err)

	// Output:
	// multiply(add(cost, shipping), 1.2)
	// [cost shipping]
	// 19.788 <nil>
	// undefined variable: "shipping"
}
