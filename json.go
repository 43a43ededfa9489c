package formulas

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"
)

// node is the wire form of every Value and Expr: a discriminant and a payload.
type node struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// callPayload is the payload of a function node, for both Call and CallExpr.
type callPayload struct {
	Name Func              `json:"name"`
	Args []json.RawMessage `json:"args"`
}

func marshalNode(typ string, payload any) ([]byte, error) {
	if payload == nil {
		return json.Marshal(node{Type: typ})
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node{Type: typ, Value: p})
}

// marshalCall encodes a function node. Each argument is a Value or an Expr.
func marshalCall(fn Func, args []json.Marshaler) ([]byte, error) {
	p := callPayload{Name: fn, Args: make([]json.RawMessage, len(args))}
	for i, a := range args {
		b, err := a.MarshalJSON()
		if err != nil {
			return nil, err
		}
		p.Args[i] = b
	}
	return marshalNode(KindFunction.String(), p)
}

func (c Call) MarshalJSON() ([]byte, error) {
	args := make([]json.Marshaler, len(c.Args))
	for i, a := range c.Args {
		if a == nil {
			return nil, errors.New("formulas: nil argument to " + c.Func.String())
		}
		args[i] = a
	}
	return marshalCall(c.Func, args)
}

func (o Object) MarshalJSON() ([]byte, error) {
	return marshalNode(KindObject.String(), map[string]Value(o))
}

func (a Array) MarshalJSON() ([]byte, error) {
	return marshalNode(KindArray.String(), []Value(a))
}

func (t Text) MarshalJSON() ([]byte, error) {
	return marshalNode(KindText.String(), string(t))
}

func (n Number) MarshalJSON() ([]byte, error) {
	return marshalNode(KindNumber.String(), float64(n))
}

func (x Decimal) MarshalJSON() ([]byte, error) {
	return marshalNode(KindDecimal.String(), x.String())
}

func (b Boolean) MarshalJSON() ([]byte, error) {
	return marshalNode(KindBoolean.String(), bool(b))
}

func (d Datetime) MarshalJSON() ([]byte, error) {
	if !d.valid() {
		return nil, errors.New("formulas: datetime " + d.String() + " has no RFC 3339 form")
	}
	return marshalNode(KindDatetime.String(), d.String())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid() {
		return nil, errors.New("formulas: invalid date " + d.String())
	}
	return marshalNode(KindDate.String(), d.String())
}

func (t Time) MarshalJSON() ([]byte, error) {
	if !t.valid() {
		return nil, errors.New("formulas: invalid time of day " + t.String())
	}
	return marshalNode(KindTime.String(), t.String())
}

func (Null) MarshalJSON() ([]byte, error) {
	return marshalNode(KindNull.String(), nil)
}

func (v Var) MarshalJSON() ([]byte, error) {
	return marshalNode(ExprVariable.String(), string(v))
}

func (c CallExpr) MarshalJSON() ([]byte, error) {
	args := make([]json.Marshaler, len(c.Args))
	for i, a := range c.Args {
		if a == nil {
			return nil, errors.New("formulas: nil argument to " + c.Func.String())
		}
		args[i] = a
	}
	return marshalCall(c.Func, args)
}

func (s Static) MarshalJSON() ([]byte, error) {
	return marshalNode(ExprStatic.String(), s.held())
}

func (f Func) MarshalJSON() ([]byte, error) {
	if !f.Known() {
		return nil, &FuncError{Func: f}
	}
	return json.Marshal(f.String())
}

func (f *Func) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	g, ok := FuncNamed(name)
	if !ok {
		return errors.New("unknown function " + strconv.Quote(name))
	}
	*f = g
	return nil
}

// UnmarshalValue decodes a Value from its JSON wire form. Errors describing
// the shape of the input are of type *MalformedError.
func UnmarshalValue(data []byte) (Value, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	return decodeValue(n)
}

// UnmarshalExpr decodes an Expr from its JSON wire form. Errors describing
// the shape of the input are of type *MalformedError.
func UnmarshalExpr(data []byte) (Expr, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	return decodeExpr(n)
}

// ParseJSON reads one JSON template from src.
func ParseJSON(src io.Reader) (Expr, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(src).Decode(&raw); err != nil {
		return nil, err
	}
	return UnmarshalExpr(raw)
}

func decodeNode(data []byte) (node, error) {
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return node{}, &MalformedError{Err: err}
	}
	if n.Type == "" {
		return node{}, &MalformedError{Err: errors.New(`missing "type"`)}
	}
	return n, nil
}

// malformed wraps an error describing a node of type typ, unless it already
// describes a node nested inside it.
func malformed(typ string, err error) error {
	var m *MalformedError
	if errors.As(err, &m) {
		return err
	}
	return &MalformedError{Type: typ, Err: err}
}

var errNoPayload = errors.New(`missing "value"`)

// payload unmarshals the payload of n into p.
func (n node) payload(p any) error {
	if len(n.Value) == 0 {
		return malformed(n.Type, errNoPayload)
	}
	if err := json.Unmarshal(n.Value, p); err != nil {
		return malformed(n.Type, err)
	}
	return nil
}

// call unmarshals the payload of a function node.
func (n node) call() (callPayload, error) {
	var p callPayload
	if err := n.payload(&p); err != nil {
		return callPayload{}, err
	}
	if p.Name == funcNone {
		return callPayload{}, malformed(n.Type, errors.New(`missing function "name"`))
	}
	if p.Args == nil {
		return callPayload{}, malformed(n.Type, errors.New(`missing function "args"`))
	}
	return p, nil
}

func decodeValue(n node) (Value, error) {
	switch kindOf(n.Type) {
	case KindFunction:
		p, err := n.call()
		if err != nil {
			return nil, err
		}
		c := Call{Func: p.Name, Args: make([]Value, len(p.Args))}
		for i, raw := range p.Args {
			if c.Args[i], err = UnmarshalValue(raw); err != nil {
				return nil, err
			}
		}
		return c, nil
	case KindObject:
		var p map[string]json.RawMessage
		if err := n.payload(&p); err != nil {
			return nil, err
		}
		o := make(Object, len(p))
		for k, raw := range p {
			v, err := UnmarshalValue(raw)
			if err != nil {
				return nil, err
			}
			o[k] = v
		}
		return o, nil
	case KindArray:
		var p []json.RawMessage
		if err := n.payload(&p); err != nil {
			return nil, err
		}
		a := make(Array, len(p))
		for i, raw := range p {
			v, err := UnmarshalValue(raw)
			if err != nil {
				return nil, err
			}
			a[i] = v
		}
		return a, nil
	case KindText:
		var s string
		if err := n.payload(&s); err != nil {
			return nil, err
		}
		return Text(s), nil
	case KindNumber:
		var f float64
		if err := n.payload(&f); err != nil {
			return nil, err
		}
		return Number(f), nil
	case KindDecimal:
		return n.decimal()
	case KindBoolean:
		var b bool
		if err := n.payload(&b); err != nil {
			return nil, err
		}
		return Boolean(b), nil
	case KindDatetime:
		t, err := n.time(time.RFC3339)
		if err != nil {
			return nil, err
		}
		d := NewDatetime(t)
		if !d.valid() {
			return nil, malformed(n.Type, errors.New("year out of range in UTC"))
		}
		return d, nil
	case KindDate:
		t, err := n.time(dateLayout)
		if err != nil {
			return nil, err
		}
		return DateOf(t), nil
	case KindTime:
		// Parsing accepts fractional seconds without the layout naming them.
		t, err := n.time("15:04:05")
		if err != nil {
			return nil, err
		}
		return TimeOf(t), nil
	case KindNull:
		if len(n.Value) != 0 && !bytes.Equal(n.Value, []byte("null")) {
			return nil, malformed(n.Type, errors.New("null with a value"))
		}
		return Null{}, nil
	default:
		return nil, malformed(n.Type, errors.New("unknown value type"))
	}
}

// decimal decodes a decimal payload, which may be a JSON number or a string.
// Either way, the digits are used exactly as written.
func (n node) decimal() (Value, error) {
	var s string
	if len(n.Value) > 0 && n.Value[0] == '"' {
		if err := n.payload(&s); err != nil {
			return nil, err
		}
	} else {
		var num json.Number
		if err := n.payload(&num); err != nil {
			return nil, err
		}
		s = num.String()
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, malformed(n.Type, err)
	}
	return d, nil
}

// time decodes a string payload with a time layout.
func (n node) time(layout string) (time.Time, error) {
	var s string
	if err := n.payload(&s); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, malformed(n.Type, err)
	}
	return t, nil
}

func decodeExpr(n node) (Expr, error) {
	switch n.Type {
	case ExprVariable.String():
		var s string
		if err := n.payload(&s); err != nil {
			return nil, err
		}
		return Var(s), nil
	case ExprFunction.String():
		p, err := n.call()
		if err != nil {
			return nil, err
		}
		c := CallExpr{Func: p.Name, Args: make([]Expr, len(p.Args))}
		for i, raw := range p.Args {
			if c.Args[i], err = UnmarshalExpr(raw); err != nil {
				return nil, err
			}
		}
		return c, nil
	case ExprStatic.String():
		if len(n.Value) == 0 {
			return nil, malformed(n.Type, errNoPayload)
		}
		v, err := UnmarshalValue(n.Value)
		if err != nil {
			return nil, err
		}
		return Static{Value: v}, nil
	default:
		return nil, malformed(n.Type, errors.New("unknown expression type"))
	}
}
