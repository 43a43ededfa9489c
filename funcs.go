package formulas

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Func identifies a function in the catalog. The catalog is closed, but it
// may grow; a Func value outside it evaluates to a *FuncError rather than
// being silently ignored.
type Func uint8

const (
	funcNone Func = iota

	// Add sums its arguments. With no arguments, the result is 0.
	Add
	// Subtract subtracts each argument after the first from the first,
	// left to right. With no arguments, the result is 0.
	Subtract
	// Multiply multiplies its arguments. With no arguments, the result is 1.
	Multiply
	// Divide divides the first argument by each argument after it, left to
	// right. With no arguments, the result is 1. Dividing by zero is an
	// error wrapping ErrDivisionByZero.
	Divide

	funcEnd
)

var funcNames = [...]string{
	funcNone: "",
	Add:      "add",
	Subtract: "subtract",
	Multiply: "multiply",
	Divide:   "divide",
}

// String returns the catalog name of the function, which is also its name in
// the JSON wire format.
func (f Func) String() string {
	if !f.Known() {
		return "Func(" + strconv.Itoa(int(f)) + ")"
	}
	return funcNames[f]
}

// Known reports whether f is in the catalog.
func (f Func) Known() bool {
	return funcNone < f && f < funcEnd
}

// Funcs returns every function in the catalog in declaration order.
func Funcs() []Func {
	r := make([]Func, 0, funcEnd-1)
	for f := funcNone + 1; f < funcEnd; f++ {
		r = append(r, f)
	}
	return r
}

// FuncNamed returns the catalog function with the given name.
func FuncNamed(name string) (Func, bool) {
	for f := funcNone + 1; f < funcEnd; f++ {
		if funcNames[f] == name {
			return f, true
		}
	}
	return funcNone, false
}

// identity returns the result of a call to f with no arguments.
func (f Func) identity() Decimal {
	switch f {
	case Add, Subtract:
		return Zero
	case Multiply, Divide:
		return One
	default:
		panic("formulas: identity of unknown function " + f.String())
	}
}

// op returns the binary operation that f folds with.
func (f Func) op() decop {
	switch f {
	case Add:
		return (*apd.Context).Add
	case Subtract:
		return (*apd.Context).Sub
	case Multiply:
		return (*apd.Context).Mul
	case Divide:
		return (*apd.Context).Quo
	default:
		panic("formulas: operation of unknown function " + f.String())
	}
}

// seeded reports whether the fold of f starts from its identity. Otherwise,
// it starts from the first argument.
func (f Func) seeded() bool {
	return f == Add || f == Multiply
}

// fold applies f to its operands in c.
func (f Func) fold(c *apd.Context, operands []Decimal) (Decimal, error) {
	if !f.Known() {
		return Decimal{}, &FuncError{Func: f}
	}
	if len(operands) == 0 {
		return f.identity(), nil
	}
	acc, rest, first := f.identity(), operands, 1
	if !f.seeded() {
		acc, rest, first = operands[0], operands[1:], 2
	}
	op := f.op()
	for i, y := range rest {
		arg := first + i
		if f == Divide && y.IsZero() {
			return Decimal{}, &DomainError{X: y, Arg: arg, Func: f, Err: ErrDivisionByZero}
		}
		r, err := arith(c, op, acc, y)
		if err != nil {
			return Decimal{}, annotate(err, f, arg)
		}
		acc = r
	}
	return acc, nil
}

// coerce converts an evaluated argument to a decimal operand.
func coerce(f Func, arg int, v Value) (Decimal, error) {
	switch v := v.(type) {
	case Decimal:
		return v, nil
	case Number:
		d, err := DecimalFromFloat(float64(v))
		if err != nil {
			return Decimal{}, annotate(err, f, arg)
		}
		return d, nil
	default:
		k := kindNone
		if v != nil {
			k = v.Kind()
		}
		return Decimal{}, &TypeError{Func: f, Arg: arg, Kind: k}
	}
}

// annotate records the function and argument an arithmetic error came from.
func annotate(err error, f Func, arg int) error {
	switch e := err.(type) {
	case *OverflowError:
		e.Func, e.Arg = f, arg
	case *PrecisionError:
		e.Func, e.Arg = f, arg
	case *DomainError:
		e.Func, e.Arg = f, arg
	}
	return err
}
