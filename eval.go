package formulas

import (
	"log/slog"
	"slices"

	"github.com/cockroachdb/apd/v3"
)

// Vars maps variable names to the values bound to them. Bound values are
// shared, never copied or modified, by every formula that refers to them.
type Vars map[string]Value

// Context is a context for resolving and evaluating formulas: a set of
// variable bindings plus the decimal precision and limits of evaluation.
//
// Resolve and Eval do not modify the context, so it is safe to use them
// concurrently. Set must not be called concurrently with anything else.
type Context struct {
	names  Vars
	prec   uint32
	strict bool
	depth  int
	log    *slog.Logger
	dec    *apd.Context
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt   Vars
	precopt   uint32
	strictopt bool
	depthopt  int
	logopt    struct{ l *slog.Logger }
)

func (varopt) ctxOption()    {}
func (varsopt) ctxOption()   {}
func (precopt) ctxOption()   {}
func (strictopt) ctxOption() {}
func (depthopt) ctxOption()  {}
func (logopt) ctxOption()    {}

// SetVar binds a variable in the context.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars binds any number of variables in the context.
func SetVars(vars Vars) ContextOption {
	return varsopt(vars)
}

// Prec sets the number of significant decimal digits to which arithmetic
// results are rounded. Zero means DefaultPrec.
func Prec(digits uint32) ContextOption {
	return precopt(digits)
}

// Strict makes any arithmetic result that would need rounding an error of
// type *PrecisionError.
func Strict() ContextOption {
	return strictopt(true)
}

// MaxDepth limits how deeply formulas may nest. Resolving or evaluating a
// deeper formula fails with a *DepthError. Zero means no limit.
func MaxDepth(n int) ContextOption {
	return depthopt(n)
}

// Logger sets a logger to receive debug records for each folded call and each
// failure. By default, nothing is logged.
func Logger(l *slog.Logger) ContextOption {
	return logopt{l}
}

// NewContext creates a new context. If no precision is given, the default is
// DefaultPrec.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: DefaultPrec}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. Bound values
// are shared with the original.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		names:  make(Vars, len(ctx.names)),
		prec:   ctx.prec,
		strict: ctx.strict,
		depth:  ctx.depth,
		log:    ctx.log,
	}
	for name, val := range ctx.names {
		n.names[name] = val
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		case precopt:
			n.prec = uint32(opt)
			if n.prec == 0 {
				n.prec = DefaultPrec
			}
		case strictopt:
			n.strict = bool(opt)
		case depthopt:
			n.depth = int(opt)
		case logopt:
			n.log = opt.l
		default:
			panic("formulas: unknown option type")
		}
	}
	n.dec = decContext(n.prec, n.strict)
	return &n
}

// decContext creates the decimal context for a precision and strictness.
func decContext(prec uint32, strict bool) *apd.Context {
	c := apd.BaseContext.WithPrecision(prec)
	if strict {
		c.Traps |= apd.Inexact
	}
	return c
}

// Set binds a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value Value) *Context {
	if ctx.names == nil {
		ctx.names = make(Vars)
	}
	ctx.names[name] = value
	return ctx
}

// Lookup returns the value bound to a variable. If there is no such variable
// in the context, or it is bound to nil, then the result is nil.
func (ctx *Context) Lookup(name string) Value {
	return ctx.names[name]
}

// Vars returns the names of the variables bound in the context in sorted
// order.
func (ctx *Context) Vars() []string {
	if len(ctx.names) == 0 {
		return nil
	}
	r := make([]string, 0, len(ctx.names))
	for k := range ctx.names {
		r = append(r, k)
	}
	slices.Sort(r)
	return r
}

// Prec returns the number of significant digits to which results are rounded
// in the context.
func (ctx *Context) Prec() uint32 {
	return ctx.prec
}

// Eval folds every call in a value into a decimal. Values other than calls
// are returned unchanged, so evaluating the result of Eval again gives the
// same result. If an argument cannot be an operand or the arithmetic fails,
// the result is nil with the first error encountered.
func (ctx *Context) Eval(v Value) (Value, error) {
	r, err := ctx.eval(v, 1)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (ctx *Context) eval(v Value, depth int) (Value, error) {
	c, ok := v.(Call)
	if !ok {
		return v, nil
	}
	if ctx.depth > 0 && depth > ctx.depth {
		return nil, &DepthError{Max: ctx.depth}
	}
	operands := make([]Decimal, len(c.Args))
	for i, arg := range c.Args {
		r, err := ctx.eval(arg, depth+1)
		if err != nil {
			return nil, err
		}
		d, err := coerce(c.Func, i+1, r)
		if err != nil {
			ctx.debug("evaluation failed", "func", c.Func.String(), "err", err)
			return nil, err
		}
		operands[i] = d
	}
	r, err := c.Func.fold(ctx.dec, operands)
	if err != nil {
		ctx.debug("evaluation failed", "func", c.Func.String(), "err", err)
		return nil, err
	}
	ctx.debug("folded call", "func", c.Func.String(), "args", len(operands), "result", r.String())
	return r, nil
}

// ResolveEval resolves a template and evaluates the result.
func (ctx *Context) ResolveEval(e Expr) (Value, error) {
	v, err := ctx.Resolve(e)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(v)
}

func (ctx *Context) debug(msg string, args ...any) {
	if ctx.log == nil {
		return
	}
	ctx.log.Debug(msg, args...)
}

// Eval is a shortcut to evaluate a value with the default precision.
func Eval(v Value) (Value, error) {
	return defaultContext.Eval(v)
}

// ResolveEval is a shortcut to resolve a template against bindings and
// evaluate the result with the default precision.
func ResolveEval(e Expr, vars Vars) (Value, error) {
	return bound(vars).ResolveEval(e)
}

var defaultContext = NewContext()

// bound creates a context with the default options that refers to vars
// without copying it.
func bound(vars Vars) *Context {
	ctx := *defaultContext
	ctx.names = vars
	return &ctx
}
