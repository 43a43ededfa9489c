// Package formulas implements a serializable model of arithmetic formulas
// over exact decimals.
//
// A formula starts as a template, an Expr, which may refer to variables by
// name. Resolving the template against a set of bindings produces a Value,
// a fully concrete tree in which calls to the catalog functions (Add,
// Subtract, Multiply, Divide) may still be nested. Evaluating the Value folds
// every call into a single Decimal. Variables reports which names a template
// needs before it can be resolved.
//
// Templates and values travel as JSON, where every node is an object with a
// "type" discriminant and a "value" payload:
//
//	{"type": "function", "value": {"name": "add", "args": [
//		{"type": "variable", "value": "x"},
//		{"type": "static", "value": {"type": "number", "value": 1.2}}
//	]}}
//
// Templates can also be written in ordinary infix notation with Parse, so
// "x + 1.2" is the same template as above, except that the literal is parsed
// directly as a decimal.
//
// Every operation here is a pure function of its inputs. Values and templates
// are never modified after construction, so a Context may be shared by any
// number of goroutines.
package formulas
