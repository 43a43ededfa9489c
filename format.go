package formulas

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

func (c Call) String() string     { return fmtString(c) }
func (o Object) String() string   { return fmtString(o) }
func (a Array) String() string    { return fmtString(a) }
func (t Text) String() string     { return strconv.Quote(string(t)) }
func (n Number) String() string   { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (x Decimal) String() string  { return x.get().Text('f') }
func (b Boolean) String() string  { return strconv.FormatBool(bool(b)) }
func (d Datetime) String() string { return d.t.Format(time.RFC3339Nano) }
func (Null) String() string       { return "null" }
func (v Var) String() string      { return string(v) }
func (c CallExpr) String() string { return fmtExprString(c) }
func (s Static) String() string   { return s.held().String() }

func (d Date) String() string {
	var b strings.Builder
	pad(&b, d.Year, 4)
	b.WriteByte('-')
	pad(&b, int(d.Month), 2)
	b.WriteByte('-')
	pad(&b, d.Day, 2)
	return b.String()
}

func (t Time) String() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC).Format(timeLayout)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999999"
)

// pad writes n with at least width digits.
func pad(b *strings.Builder, n, width int) {
	if n < 0 {
		b.WriteByte('-')
		n = -n
	}
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}

func fmtString(v Value) string {
	var b strings.Builder
	fmtValue(&b, v)
	return b.String()
}

func fmtExprString(e Expr) string {
	var b strings.Builder
	fmtExpr(&b, e)
	return b.String()
}

func fmtValue(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case Call:
		b.WriteString(v.Func.String())
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			fmtValue(b, a)
		}
		b.WriteByte(')')
	case Object:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			fmtValue(b, v[k])
		}
		b.WriteByte('}')
	case Array:
		b.WriteByte('[')
		for i, a := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			fmtValue(b, a)
		}
		b.WriteByte(']')
	case nil:
		// Invalid values use invalid characters.
		b.WriteString("$nil$")
	default:
		b.WriteString(v.String())
	}
}

func fmtExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case CallExpr:
		b.WriteString(e.Func.String())
		b.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			fmtExpr(b, a)
		}
		b.WriteByte(')')
	case Static:
		fmtValue(b, e.held())
	case nil:
		b.WriteString("$nil$")
	default:
		b.WriteString(e.String())
	}
}
