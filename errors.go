package formulas

import (
	"errors"
	"strconv"
)

// NameError is an error from a lookup for a variable that is missing from the
// bindings used to resolve a formula.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// TypeError is an error returned when an argument to a catalog function is
// not a number or decimal.
type TypeError struct {
	// Func is the function that received the argument.
	Func Func
	// Arg is the 1-based index of the argument.
	Arg int
	// Kind is the kind of the argument after evaluating it.
	Kind Kind
}

func (err *TypeError) Error() string {
	return "cannot use " + err.Kind.String() + " as an operand" + where(err.Func, err.Arg)
}

// ErrDivisionByZero is the error that a *DomainError unwraps to when a
// division has a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// DomainError is an error returned when a value cannot be an operand, either
// because it is a divisor equal to zero or because it is a Number that has no
// decimal representation.
type DomainError struct {
	// X is the out-of-domain value.
	X Value
	// Arg is the 1-based index of the argument, if known.
	Arg int
	// Func is the function that received the value, if known.
	Func Func
	// Err is the underlying reason, if any.
	Err error
}

func (err *DomainError) Error() string {
	x := "<nil>"
	if err.X != nil {
		x = err.X.String()
	}
	r := x + " outside domain"
	if err.Func == funcNone {
		r += " of decimal"
	}
	r += where(err.Func, err.Arg)
	if err.Err != nil {
		r += ": " + err.Err.Error()
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return err.Err
}

// OverflowError is an error returned when the result of a decimal operation is
// too large or too small in magnitude to represent.
type OverflowError struct {
	// Func is the function whose fold overflowed, if known.
	Func Func
	// Arg is the 1-based index of the argument being folded when the overflow
	// happened, if known.
	Arg int
	// Err is the error from the decimal layer.
	Err error
}

func (err *OverflowError) Error() string {
	return "decimal overflow" + where(err.Func, err.Arg) + ": " + err.Err.Error()
}

func (err *OverflowError) Unwrap() error {
	return err.Err
}

// PrecisionError is an error returned by a strict Context when the result of
// a decimal operation has more significant digits than the Context keeps.
type PrecisionError struct {
	// Func is the function whose fold was inexact, if known.
	Func Func
	// Arg is the 1-based index of the argument being folded, if known.
	Arg int
	// Err is the error from the decimal layer.
	Err error
}

func (err *PrecisionError) Error() string {
	return "inexact result" + where(err.Func, err.Arg) + ": " + err.Err.Error()
}

func (err *PrecisionError) Unwrap() error {
	return err.Err
}

// FuncError is an error returned when evaluating a call to a function that is
// not in the catalog.
type FuncError struct {
	Func Func
}

func (err *FuncError) Error() string {
	return "unknown function " + err.Func.String()
}

// DepthError is an error returned when a formula is nested more deeply than
// the limit set with MaxDepth.
type DepthError struct {
	// Max is the depth limit.
	Max int
}

func (err *DepthError) Error() string {
	return "formula nested deeper than " + strconv.Itoa(err.Max) + " levels"
}

// MalformedError is an error decoding a formula node whose discriminant or
// payload is not understood.
type MalformedError struct {
	// Type is the discriminant of the node, or empty if it had none.
	Type string
	// Err describes what was wrong with the node.
	Err error
}

func (err *MalformedError) Error() string {
	if err.Type == "" {
		return "malformed node: " + err.Err.Error()
	}
	return "malformed " + err.Type + " node: " + err.Err.Error()
}

func (err *MalformedError) Unwrap() error {
	return err.Err
}

// where describes the function and argument an error happened in.
func where(fn Func, arg int) string {
	r := ""
	if fn != funcNone {
		r += " of " + fn.String()
	}
	if arg > 0 {
		r += " (argument " + strconv.Itoa(arg) + ")"
	}
	return r
}
