package formulas

import "encoding/json"

// JSONSchema returns a JSON Schema (draft-07) describing the wire form of an
// Expr, so that templates can be validated by other programs. The schema is
// generated from Kinds, ExprKinds, and Funcs.
func JSONSchema() ([]byte, error) {
	values := make([]any, 0, kindEnd-1)
	for _, k := range Kinds() {
		values = append(values, variant(k.String(), payloadSchema(k)))
	}
	exprs := make([]any, 0, exprEnd-1)
	for _, k := range ExprKinds() {
		exprs = append(exprs, variant(k.String(), exprPayloadSchema(k)))
	}
	names := make([]string, 0, funcEnd-1)
	for _, f := range Funcs() {
		names = append(names, f.String())
	}
	doc := map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title":   "Expr",
		"oneOf":   exprs,
		"definitions": map[string]any{
			"Value": map[string]any{"oneOf": values},
			"Decimal": map[string]any{
				"description": "A decimal number, written as a JSON number or a string of digits.",
				"type":        []string{"number", "string"},
			},
			"FunctionName": map[string]any{
				"type": "string",
				"enum": names,
			},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// variant describes a node with a given discriminant. A nil payload means the
// node has no value.
func variant(typ string, payload map[string]any) map[string]any {
	props := map[string]any{
		"type": map[string]any{"type": "string", "enum": []string{typ}},
	}
	required := []string{"type"}
	if payload != nil {
		props["value"] = payload
		required = append(required, "value")
	}
	return map[string]any{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

func ref(name string) map[string]any {
	if name == "" {
		return map[string]any{"$ref": "#"}
	}
	return map[string]any{"$ref": "#/definitions/" + name}
}

// callSchema describes the payload of a function node whose arguments are
// described by args.
func callSchema(args map[string]any) map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"name", "args"},
		"properties": map[string]any{
			"name": ref("FunctionName"),
			"args": map[string]any{"type": "array", "items": args},
		},
	}
}

func payloadSchema(k Kind) map[string]any {
	switch k {
	case KindFunction:
		return callSchema(ref("Value"))
	case KindObject:
		return map[string]any{"type": "object", "additionalProperties": ref("Value")}
	case KindArray:
		return map[string]any{"type": "array", "items": ref("Value")}
	case KindText:
		return map[string]any{"type": "string"}
	case KindNumber:
		return map[string]any{"type": "number"}
	case KindDecimal:
		return ref("Decimal")
	case KindBoolean:
		return map[string]any{"type": "boolean"}
	case KindDatetime:
		return map[string]any{"type": "string", "format": "date-time"}
	case KindDate:
		return map[string]any{"type": "string", "format": "date"}
	case KindTime:
		return map[string]any{"type": "string", "format": "time"}
	case KindNull:
		return nil
	default:
		panic("formulas: no schema for " + k.String())
	}
}

func exprPayloadSchema(k ExprKind) map[string]any {
	switch k {
	case ExprVariable:
		return map[string]any{"type": "string"}
	case ExprFunction:
		return callSchema(ref(""))
	case ExprStatic:
		return ref("Value")
	default:
		panic("formulas: no schema for " + k.String())
	}
}
