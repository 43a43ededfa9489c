package formulas

import (
	"errors"
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is an arbitrary-precision base-10 number. The zero value is 0.
// Decimals are always finite.
type Decimal struct {
	// d is never modified after the Decimal is created. nil means zero.
	d *apd.Decimal
}

var (
	// Zero is the decimal 0, the result of adding or subtracting nothing.
	Zero = Decimal{d: apd.New(0, 0)}
	// One is the decimal 1, the result of multiplying or dividing nothing.
	One = Decimal{d: apd.New(1, 0)}
)

// DefaultPrec is the number of significant digits to which arithmetic results
// are rounded when no other precision is given, enough for decimal128.
const DefaultPrec uint32 = 34

// NewDecimal creates the decimal coeff × 10^exp.
func NewDecimal(coeff int64, exp int32) Decimal {
	return Decimal{d: apd.New(coeff, exp)}
}

// ParseDecimal parses a decimal from its text, e.g. "123.45" or "-1e-3".
// NaN and infinities are rejected.
func ParseDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	if d.Form != apd.Finite {
		return Decimal{}, errors.New("formulas: decimal " + strconv.Quote(s) + " is not finite")
	}
	return Decimal{d: d}, nil
}

// DecimalFromFloat converts a float to the decimal with the same shortest
// representation, so 12.12 becomes exactly 12.12. The conversion fails for NaN
// and infinities with a *DomainError.
func DecimalFromFloat(x float64) (Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Decimal{}, &DomainError{X: Number(x)}
	}
	d, _, err := apd.NewFromString(strconv.FormatFloat(x, 'g', -1, 64))
	if err != nil {
		// FormatFloat always produces valid decimal syntax for finite floats.
		panic("formulas: cannot convert " + strconv.FormatFloat(x, 'g', -1, 64) + ": " + err.Error())
	}
	return Decimal{d: d}, nil
}

// DecimalFromAPD creates a decimal holding a copy of d.
func DecimalFromAPD(d *apd.Decimal) (Decimal, error) {
	if d.Form != apd.Finite {
		return Decimal{}, errors.New("formulas: decimal " + d.String() + " is not finite")
	}
	return Decimal{d: new(apd.Decimal).Set(d)}, nil
}

// APD returns a copy of the decimal as an *apd.Decimal.
func (x Decimal) APD() *apd.Decimal {
	return new(apd.Decimal).Set(x.get())
}

var zero apd.Decimal

func (x Decimal) get() *apd.Decimal {
	if x.d == nil {
		return &zero
	}
	return x.d
}

// Cmp compares x and y, returning -1, 0, or +1.
func (x Decimal) Cmp(y Decimal) int {
	return x.get().Cmp(y.get())
}

// IsZero reports whether x is zero.
func (x Decimal) IsZero() bool {
	return x.get().IsZero()
}

// Float64 returns the nearest float to x.
func (x Decimal) Float64() float64 {
	f, _ := x.get().Float64()
	return f
}

func (Decimal) Kind() Kind { return KindDecimal }

func (x Decimal) Equal(v Value) bool {
	y, ok := v.(Decimal)
	return ok && x.Cmp(y) == 0
}

// Add returns x + y rounded to DefaultPrec digits.
func (x Decimal) Add(y Decimal) (Decimal, error) {
	return arith(defaultDec, (*apd.Context).Add, x, y)
}

// Sub returns x - y rounded to DefaultPrec digits.
func (x Decimal) Sub(y Decimal) (Decimal, error) {
	return arith(defaultDec, (*apd.Context).Sub, x, y)
}

// Mul returns x × y rounded to DefaultPrec digits.
func (x Decimal) Mul(y Decimal) (Decimal, error) {
	return arith(defaultDec, (*apd.Context).Mul, x, y)
}

// Quo returns x ÷ y rounded to DefaultPrec digits. Division by zero returns an
// error wrapping ErrDivisionByZero.
func (x Decimal) Quo(y Decimal) (Decimal, error) {
	if y.IsZero() {
		return Decimal{}, &DomainError{X: y, Arg: 2, Func: Divide, Err: ErrDivisionByZero}
	}
	return arith(defaultDec, (*apd.Context).Quo, x, y)
}

var defaultDec = apd.BaseContext.WithPrecision(DefaultPrec)

// decop is the signature shared by apd's arithmetic methods.
type decop func(c *apd.Context, d, x, y *apd.Decimal) (apd.Condition, error)

// arith applies op to x and y in c. If c traps a condition, the result is an
// *OverflowError or *PrecisionError describing it.
func arith(c *apd.Context, op decop, x, y Decimal) (Decimal, error) {
	var r apd.Decimal
	cond, err := op(c, &r, x.get(), y.get())
	if err != nil {
		return Decimal{}, condError(cond, err)
	}
	return Decimal{d: &r}, nil
}

// condError converts an apd trap into the error type for its condition.
func condError(cond apd.Condition, err error) error {
	const overflows = apd.Overflow | apd.Underflow | apd.Subnormal | apd.SystemOverflow | apd.SystemUnderflow
	switch {
	case cond&overflows != 0:
		return &OverflowError{Err: err}
	case cond&apd.Inexact != 0:
		return &PrecisionError{Err: err}
	case cond&apd.DivisionByZero != 0:
		return &DomainError{Func: Divide, Err: ErrDivisionByZero}
	default:
		return &OverflowError{Err: err}
	}
}
