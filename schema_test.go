package formulas_test

import (
	"encoding/json"
	"testing"

	"github.com/zephyrtronium/formulas"
)

func TestJSONSchema(t *testing.T) {
	b, err := formulas.JSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	type variant struct {
		Properties struct {
			Type struct {
				Enum []string `json:"enum"`
			} `json:"type"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	var doc struct {
		Schema      string    `json:"$schema"`
		OneOf       []variant `json:"oneOf"`
		Definitions struct {
			Value struct {
				OneOf []variant `json:"oneOf"`
			} `json:"Value"`
			FunctionName struct {
				Enum []string `json:"enum"`
			} `json:"FunctionName"`
		} `json:"definitions"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v\n%s", err, b)
	}
	if doc.Schema == "" {
		t.Error("no $schema")
	}

	discriminants := func(vs []variant) map[string][]string {
		r := make(map[string][]string, len(vs))
		for _, v := range vs {
			if len(v.Properties.Type.Enum) != 1 {
				t.Errorf("variant has discriminants %q", v.Properties.Type.Enum)
				continue
			}
			r[v.Properties.Type.Enum[0]] = v.Required
		}
		return r
	}
	exprs := discriminants(doc.OneOf)
	for _, k := range formulas.ExprKinds() {
		if _, ok := exprs[k.String()]; !ok {
			t.Errorf("schema is missing expression kind %v", k)
		}
	}
	if len(exprs) != len(formulas.ExprKinds()) {
		t.Errorf("schema has %d expression kinds", len(exprs))
	}
	values := discriminants(doc.Definitions.Value.OneOf)
	for _, k := range formulas.Kinds() {
		req, ok := values[k.String()]
		if !ok {
			t.Errorf("schema is missing value kind %v", k)
			continue
		}
		// Only null has no payload.
		want := 2
		if k == formulas.KindNull {
			want = 1
		}
		if len(req) != want {
			t.Errorf("value kind %v requires %q", k, req)
		}
	}
	if len(values) != len(formulas.Kinds()) {
		t.Errorf("schema has %d value kinds", len(values))
	}
	fns := doc.Definitions.FunctionName.Enum
	if len(fns) != len(formulas.Funcs()) {
		t.Fatalf("schema names functions %q", fns)
	}
	for i, f := range formulas.Funcs() {
		if fns[i] != f.String() {
			t.Errorf("function %d is %q in schema, want %q", i, fns[i], f)
		}
	}
}
