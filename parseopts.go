package formulas

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		name string
		fn   Func
	}
	funcsopt   map[string]Func
	nofuncsopt struct{}
	eofopt     struct {
		c  bool
		ws string
	}
)

// parsectx holds general data for parsing.
type parsectx struct {
	// funcs maps the names that parse as function calls to their functions.
	// If nil, the names are those of the catalog.
	funcs map[string]Func
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// ceof indicates whether a comma is allowed at the end of an expression.
	ceof bool
	// shared indicates that funcs belongs to a preset.
	shared bool
}

// ownfuncs makes p.funcs safe to modify.
func (p *parsectx) ownfuncs() {
	if p.funcs != nil && !p.shared {
		return
	}
	m := make(map[string]Func, len(p.funcs)+int(funcEnd)-1)
	if p.funcs == nil {
		for _, f := range Funcs() {
			m[f.String()] = f
		}
	}
	for k, v := range p.funcs {
		m[k] = v
	}
	p.funcs, p.shared = m, false
}

// function returns the function a name calls, if any.
func (p *parsectx) function(name string) (Func, bool) {
	if p.funcs == nil {
		return FuncNamed(name)
	}
	f, ok := p.funcs[name]
	return f, ok
}

// ParseFunc makes a name parse as a call of fn, in addition to the names of
// the catalog. To parse a name as a variable instead, pass the zero Func.
func ParseFunc(name string, fn Func) ParseOption {
	return funcopt{name, fn}
}

func (o funcopt) parseOption(p parsectx) parsectx {
	p.ownfuncs()
	if o.fn == funcNone {
		delete(p.funcs, o.name)
	} else {
		p.funcs[o.name] = o.fn
	}
	return p
}

// ParseFuncs sets a group of names to parse as function calls, in addition to
// the names of the catalog. A zero Func makes its name parse as a variable.
func ParseFuncs(fns map[string]Func) ParseOption {
	return funcsopt(fns)
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	p.ownfuncs()
	for k, v := range o {
		if v == funcNone {
			delete(p.funcs, k)
		} else {
			p.funcs[k] = v
		}
	}
	return p
}

// DisableFuncs makes every function name parse as a variable, including any
// named by earlier options. Later ParseFunc options still apply.
func DisableFuncs() ParseOption {
	return nofuncsopt{}
}

func (nofuncsopt) parseOption(p parsectx) parsectx {
	p.funcs, p.shared = map[string]Func{}, false
	return p
}

// StopOn tells the parser to treat a list of characters as ending the
// expression. Each rune must be a comma or whitespace codepoint. Whitespace
// does not end an expression where a term is expected, e.g. at the beginning
// of an expression or following an operator or bracket. Commas do not end
// expressions inside function argument lists.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	var o eofopt
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		switch {
		case r == ',':
			o.c = true
		case unicode.IsSpace(r):
			if !have(r) {
				v = append(v, r)
			}
		default:
			panic("formulas: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	o.ws = string(v)
	return o
}

func (o eofopt) parseOption(p parsectx) parsectx {
	p.ceof = o.c
	p.wseof = o.ws
	return p
}

// ParsingPreset creates a parsing preset that may be more efficient when using
// the same non-default parsing options for many calls to Parse. A preset
// replaces the effect of any options before it, but it is safe to apply other
// options after a preset.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(parsectx) parsectx {
	p := *o
	p.shared = p.funcs != nil
	return p
}
