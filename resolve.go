package formulas

import "slices"

// Resolve substitutes the context's bindings for the variables in a template.
// Resolution is all or nothing: if any variable is unbound, the result is nil
// and the error is a *NameError naming the first one found, left to right. A
// name bound to nil resolves to Null.
func (ctx *Context) Resolve(e Expr) (Value, error) {
	v, err := ctx.resolve(e, 1)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (ctx *Context) resolve(e Expr, depth int) (Value, error) {
	if ctx.depth > 0 && depth > ctx.depth {
		return nil, &DepthError{Max: ctx.depth}
	}
	switch e := e.(type) {
	case Var:
		v, ok := ctx.names[string(e)]
		if !ok {
			ctx.debug("unbound variable", "name", string(e))
			return nil, &NameError{Name: string(e)}
		}
		if v == nil {
			return Null{}, nil
		}
		return v, nil
	case CallExpr:
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ctx.resolve(a, depth+1)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return Call{Func: e.Func, Args: args}, nil
	case Static:
		return e.held(), nil
	case nil:
		panic("formulas: Resolve of nil Expr")
	default:
		panic("formulas: unknown Expr type")
	}
}

// Resolve is a shortcut to substitute bindings into a template. vars is only
// read, never copied or modified.
func Resolve(e Expr, vars Vars) (Value, error) {
	return bound(vars).Resolve(e)
}

// Variables returns the names of the variables a template refers to, sorted
// and without duplicates. Resolving the template succeeds exactly when every
// returned name is bound.
func Variables(e Expr) []string {
	names := appendVars(nil, e)
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// appendVars appends the names of every variable in e, in the order they
// appear, including repeats.
func appendVars(names []string, e Expr) []string {
	switch e := e.(type) {
	case Var:
		return append(names, string(e))
	case CallExpr:
		for _, a := range e.Args {
			names = appendVars(names, a)
		}
	}
	return names
}
