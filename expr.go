package formulas

import "strconv"

// Expr is a formula template. Unlike a Value, an Expr may refer to variables
// which must be bound before it can be evaluated. The set of implementations
// is closed: Var, CallExpr, and Static.
type Expr interface {
	// ExprKind returns the discriminant of the expression.
	ExprKind() ExprKind
	// Equal reports whether the expression is structurally equal to another.
	Equal(Expr) bool
	// String formats the expression in function notation.
	String() string
	// MarshalJSON encodes the expression as a wire node.
	MarshalJSON() ([]byte, error)

	expr()
}

// ExprKind identifies the variant of an Expr. The String form of an ExprKind
// is its discriminant in the JSON wire format.
type ExprKind int8

const (
	exprNone ExprKind = iota

	ExprVariable
	ExprFunction
	ExprStatic

	exprEnd
)

var exprKindNames = [...]string{
	exprNone:     "",
	ExprVariable: "variable",
	ExprFunction: "function",
	ExprStatic:   "static",
}

func (k ExprKind) String() string {
	if k <= exprNone || k >= exprEnd {
		return "ExprKind(" + strconv.Itoa(int(k)) + ")"
	}
	return exprKindNames[k]
}

// ExprKinds returns every expression kind in declaration order.
func ExprKinds() []ExprKind {
	r := make([]ExprKind, 0, exprEnd-1)
	for k := exprNone + 1; k < exprEnd; k++ {
		r = append(r, k)
	}
	return r
}

// Var is a reference to a variable by name.
type Var string

func (Var) ExprKind() ExprKind { return ExprVariable }

func (v Var) Equal(e Expr) bool {
	w, ok := e.(Var)
	return ok && v == w
}

// CallExpr is a call to a catalog function whose arguments are templates.
// Resolving a CallExpr produces a Call.
type CallExpr struct {
	Func Func
	Args []Expr
}

// NewCallExpr creates a call template with a copy of the given arguments.
func NewCallExpr(fn Func, args ...Expr) CallExpr {
	return CallExpr{Func: fn, Args: append([]Expr(nil), args...)}
}

func (CallExpr) ExprKind() ExprKind { return ExprFunction }

func (c CallExpr) Equal(e Expr) bool {
	d, ok := e.(CallExpr)
	if !ok || c.Func != d.Func || len(c.Args) != len(d.Args) {
		return false
	}
	for i, a := range c.Args {
		if !EqualExpr(a, d.Args[i]) {
			return false
		}
	}
	return true
}

// Static is a template holding a concrete value. A Static with a nil Value
// holds Null.
type Static struct {
	Value Value
}

func (Static) ExprKind() ExprKind { return ExprStatic }

func (s Static) Equal(e Expr) bool {
	t, ok := e.(Static)
	return ok && Equal(s.held(), t.held())
}

// held returns the held value, treating nil as Null.
func (s Static) held() Value {
	if s.Value == nil {
		return Null{}
	}
	return s.Value
}

func (Var) expr()      {}
func (CallExpr) expr() {}
func (Static) expr()   {}

// EqualExpr reports whether two templates are structurally equal. Two nil
// templates are equal to each other and to nothing else.
func EqualExpr(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

var (
	_ Expr = Var("")
	_ Expr = CallExpr{}
	_ Expr = Static{}
)
