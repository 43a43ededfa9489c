package formulas

import (
	"strconv"
	"time"
)

// Value is a fully concrete node of a formula. The set of implementations is
// closed: Call, Object, Array, Text, Number, Decimal, Boolean, Datetime,
// Date, Time, and Null.
//
// Values are immutable. Callers which build an Object, Array, or Call must not
// modify it after handing it to this package.
type Value interface {
	// Kind returns the discriminant of the value.
	Kind() Kind
	// Equal reports whether the value is structurally equal to another.
	// Decimals compare by numeric value.
	Equal(Value) bool
	// String formats the value in function notation, e.g. add(1, x).
	String() string
	// MarshalJSON encodes the value as a wire node.
	MarshalJSON() ([]byte, error)

	value()
}

// Kind identifies the variant of a Value. The String form of a Kind is its
// discriminant in the JSON wire format.
type Kind int8

const (
	kindNone Kind = iota

	KindFunction
	KindObject
	KindArray
	KindText
	KindNumber
	KindDecimal
	KindBoolean
	KindDatetime
	KindDate
	KindTime
	KindNull

	kindEnd
)

var kindNames = [...]string{
	kindNone:     "",
	KindFunction: "function",
	KindObject:   "object",
	KindArray:    "array",
	KindText:     "text",
	KindNumber:   "number",
	KindDecimal:  "decimal",
	KindBoolean:  "boolean",
	KindDatetime: "datetime",
	KindDate:     "date",
	KindTime:     "time",
	KindNull:     "null",
}

func (k Kind) String() string {
	if k <= kindNone || k >= kindEnd {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Kinds returns every value kind in declaration order.
func Kinds() []Kind {
	r := make([]Kind, 0, kindEnd-1)
	for k := kindNone + 1; k < kindEnd; k++ {
		r = append(r, k)
	}
	return r
}

// kindOf looks up a kind by its discriminant. The result is kindNone if there
// is no such kind.
func kindOf(name string) Kind {
	for k := kindNone + 1; k < kindEnd; k++ {
		if kindNames[k] == name {
			return k
		}
	}
	return kindNone
}

// Call is a resolved call to a catalog function. Evaluating a Call folds it
// into a Decimal.
type Call struct {
	Func Func
	Args []Value
}

// NewCall creates a call with a copy of the given arguments.
func NewCall(fn Func, args ...Value) Call {
	return Call{Func: fn, Args: append([]Value(nil), args...)}
}

func (Call) Kind() Kind { return KindFunction }

func (c Call) Equal(v Value) bool {
	d, ok := v.(Call)
	if !ok || c.Func != d.Func || len(c.Args) != len(d.Args) {
		return false
	}
	for i, a := range c.Args {
		if !Equal(a, d.Args[i]) {
			return false
		}
	}
	return true
}

// Object is a string-keyed mapping of values.
type Object map[string]Value

func (Object) Kind() Kind { return KindObject }

func (o Object) Equal(v Value) bool {
	p, ok := v.(Object)
	if !ok || len(o) != len(p) {
		return false
	}
	for k, x := range o {
		y, ok := p[k]
		if !ok || !Equal(x, y) {
			return false
		}
	}
	return true
}

// Array is an ordered sequence of values.
type Array []Value

func (Array) Kind() Kind { return KindArray }

func (a Array) Equal(v Value) bool {
	b, ok := v.(Array)
	if !ok || len(a) != len(b) {
		return false
	}
	for i, x := range a {
		if !Equal(x, b[i]) {
			return false
		}
	}
	return true
}

// Text is a string value.
type Text string

func (Text) Kind() Kind { return KindText }

func (t Text) Equal(v Value) bool {
	u, ok := v.(Text)
	return ok && t == u
}

// Number is a binary floating-point value. Evaluation converts numbers to
// decimals before doing arithmetic on them.
type Number float64

func (Number) Kind() Kind { return KindNumber }

func (n Number) Equal(v Value) bool {
	m, ok := v.(Number)
	return ok && n == m
}

// Boolean is a truth value.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }

func (b Boolean) Equal(v Value) bool {
	c, ok := v.(Boolean)
	return ok && b == c
}

// Datetime is an instant in UTC.
type Datetime struct {
	t time.Time
}

// NewDatetime creates a datetime at the same instant as t.
func NewDatetime(t time.Time) Datetime {
	return Datetime{t: t.UTC()}
}

// Time returns the instant as a time.Time in UTC.
func (d Datetime) Time() time.Time {
	return d.t
}

func (Datetime) Kind() Kind { return KindDatetime }

// valid reports whether d is in a year RFC 3339 can write.
func (d Datetime) valid() bool {
	y := d.t.Year()
	return 0 <= y && y <= 9999
}

func (d Datetime) Equal(v Value) bool {
	e, ok := v.(Datetime)
	return ok && d.t.Equal(e.t)
}

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date on which t falls in its location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (Date) Kind() Kind { return KindDate }

// valid reports whether d names a real day in a four-digit year.
func (d Date) valid() bool {
	if d.Year < 0 || d.Year > 9999 {
		return false
	}
	y, m, day := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Date()
	return y == d.Year && m == d.Month && day == d.Day
}

func (d Date) Equal(v Value) bool {
	e, ok := v.(Date)
	return ok && d == e
}

// Time is a time of day without a date or time zone.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// TimeOf returns the time of day of t in its location.
func TimeOf(t time.Time) Time {
	h, m, s := t.Clock()
	return Time{Hour: h, Minute: m, Second: s, Nanosecond: t.Nanosecond()}
}

func (Time) Kind() Kind { return KindTime }

func (t Time) valid() bool {
	return 0 <= t.Hour && t.Hour < 24 &&
		0 <= t.Minute && t.Minute < 60 &&
		0 <= t.Second && t.Second < 60 &&
		0 <= t.Nanosecond && t.Nanosecond < 1e9
}

func (t Time) Equal(v Value) bool {
	u, ok := v.(Time)
	return ok && t == u
}

// Null is the absence of a value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

func (Null) Equal(v Value) bool {
	_, ok := v.(Null)
	return ok
}

func (Call) value()     {}
func (Object) value()   {}
func (Array) value()    {}
func (Text) value()     {}
func (Number) value()   {}
func (Decimal) value()  {}
func (Boolean) value()  {}
func (Datetime) value() {}
func (Date) value()     {}
func (Time) value()     {}
func (Null) value()     {}

// Equal reports whether two values are structurally equal. Two nil values are
// equal to each other and to nothing else.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

var (
	_ Value = Call{}
	_ Value = Object(nil)
	_ Value = Array(nil)
	_ Value = Text("")
	_ Value = Number(0)
	_ Value = Decimal{}
	_ Value = Boolean(false)
	_ Value = Datetime{}
	_ Value = Date{}
	_ Value = Time{}
	_ Value = Null{}
)
