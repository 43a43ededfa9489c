package formulas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// DecodeVars reads variable bindings from a YAML document, which may also be
// plain JSON. The document must be a mapping from names to values:
//
//	price: 12.50
//	quantity: 3
//	label: widget
//	shipped: 2022-01-01
//	opened: 2022-01-01T12:00:00Z
//
// Integers and floats are read as decimals, exactly as written. Strings become
// Text, booleans Boolean, null Null, dates Date, timestamps Datetime,
// sequences Array, and mappings Object. A mapping in the wire form of a
// value, with a "type" naming a value kind, is decoded as that value, so
// {type: number, value: 1.5} binds the Number 1.5.
//
// An empty document has no bindings.
func DecodeVars(src io.Reader) (Vars, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(src).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Vars{}, nil
		}
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: variable bindings must be a mapping", root.Line)
	}
	vars := make(Vars, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		val, err := yamlValue(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: variable %q: %w", k.Line, k.Value, err)
		}
		vars[k.Value] = val
	}
	return vars, nil
}

// yamlValue converts a YAML node to a value.
func yamlValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.ScalarNode:
		return yamlScalar(n)
	case yaml.SequenceNode:
		a := make(Array, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			a[i] = v
		}
		return a, nil
	case yaml.MappingNode:
		if isWireNode(n) {
			return yamlWireNode(n)
		}
		o := make(Object, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o[n.Content[i].Value] = v
		}
		return o, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Boolean(b), nil
	case "!!int":
		if d, err := ParseDecimal(n.Value); err == nil {
			return d, nil
		}
		// Other bases, e.g. 0x1f.
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return NewDecimal(i, 0), nil
	case "!!float":
		if d, err := ParseDecimal(n.Value); err == nil {
			return d, nil
		}
		// .inf and .nan have no decimal form, but they are valid numbers.
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Number(f), nil
	case "!!timestamp":
		if t, err := time.Parse(dateLayout, n.Value); err == nil {
			return DateOf(t), nil
		}
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return NewDatetime(t), nil
	case "!!str":
		return Text(n.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML tag %s", n.Line, n.ShortTag())
	}
}

// isWireNode reports whether a mapping is the wire form of a value: a "type"
// key naming a value kind, and optionally a "value" key.
func isWireNode(n *yaml.Node) bool {
	typ := false
	for i := 0; i+1 < len(n.Content); i += 2 {
		switch k, v := n.Content[i].Value, n.Content[i+1]; k {
		case "type":
			typ = v.Kind == yaml.ScalarNode && kindOf(v.Value) != kindNone
		case "value":
		default:
			return false
		}
	}
	return typ
}

// yamlWireNode decodes a value in wire form by way of JSON.
func yamlWireNode(n *yaml.Node) (Value, error) {
	var b bytes.Buffer
	if err := yamlJSON(&b, n); err != nil {
		return nil, err
	}
	return UnmarshalValue(b.Bytes())
}

// yamlJSON writes a YAML node as JSON. Numbers are written from their source
// text so that decimal payloads keep every digit.
func yamlJSON(b *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlJSON(b, n.Alias)
	case yaml.MappingNode:
		b.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			k, _ := json.Marshal(n.Content[i].Value)
			b.Write(k)
			b.WriteByte(':')
			if err := yamlJSON(b, n.Content[i+1]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		b.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := yamlJSON(b, c); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			b.WriteString("null")
		case "!!bool", "!!int", "!!float":
			v, err := yamlScalar(n)
			if err != nil {
				return err
			}
			if _, ok := v.(Number); ok {
				return fmt.Errorf("line %d: %s has no JSON form", n.Line, n.Value)
			}
			b.WriteString(v.String())
		default:
			s, _ := json.Marshal(n.Value)
			b.Write(s)
		}
		return nil
	default:
		return fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
