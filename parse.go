package formulas

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expr = num | text | name | literal | Call | Neg | Plus | Add | Sub | Mul | Div | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// literal = 'true' | 'false' | 'null'
// Call = funcname ArgList
// ArgList = '(' [ Expr { ',' Expr } ] ')' | '[' [ Expr { ',' Expr } ] ']' | '{' [ Expr { ',' Expr } ] '}'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr Expr
// Div = Expr '/' Expr | Expr '÷' Expr

// Parse parses an infix formula into a template. Numbers become decimal
// statics with exactly the digits written, names become variables, and
// operators become calls of the catalog functions. A chain of the same
// operator becomes a single call, so a - b - c is subtract(a, b, c). The given
// options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (Expr, error) {
	scan := lex(src)
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	e, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
	case tokenSep:
		if !p.ceof {
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	if e == nil {
		// Only possible when the input starts with a comma that ends it.
		return nil, &EmptyExpressionError{Col: 1}
	}
	return e, nil
}

// ParseString is a shortcut to parse a formula from a string.
func ParseString(src string, opts ...ParseOption) (Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (Expr, error) {
	lhs, err := parselhs(scan, p, until)
	if err != nil || lhs == nil {
		return nil, err
	}
	for {
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenText, tokenIdent, tokenOpen:
			// (parsed) x -> (parsed) * (x)
			// (parsed) (expr) -> (parsed) * (expr)
			scan.push(tok)
			if !termprec.moreBinding(until) {
				return lhs, nil
			}
			rhs, err := parseterm(scan, p, termprec)
			if err != nil {
				return nil, err
			}
			lhs = combine(Multiply, lhs, rhs)
		case tokenOp:
			prec := binop(tok.text)
			if prec.fn == funcNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return lhs, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				scan.push(end)
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			lhs = combine(prec.fn, lhs, rhs)
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return lhs, nil
		default:
			panic("formulas: unknown token: " + tok.String())
		}
	}
}

// combine applies a binary operator. When lhs is already a call of the same
// function with arguments, rhs joins its argument list, since every catalog
// function folds its operands left to right.
func combine(fn Func, lhs, rhs Expr) Expr {
	if c, ok := lhs.(CallExpr); ok && c.Func == fn && len(c.Args) > 0 {
		args := make([]Expr, len(c.Args), len(c.Args)+1)
		copy(args, c.Args)
		return CallExpr{Func: fn, Args: append(args, rhs)}
	}
	return CallExpr{Func: fn, Args: []Expr{lhs, rhs}}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (Expr, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		d, err := ParseDecimal(tok.text)
		if err != nil {
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		return Static{Value: d}, nil
	case tokenText:
		return Static{Value: Text(tok.text)}, nil
	case tokenIdent:
		switch tok.text {
		case "true", "false":
			return Static{Value: Boolean(tok.text == "true")}, nil
		case "null":
			return Static{Value: Null{}}, nil
		}
		fn, ok := p.function(tok.text)
		if !ok {
			return Var(tok.text), nil
		}
		args, err := parsecall(scan, p, tok.text)
		if err != nil {
			return nil, err
		}
		return CallExpr{Func: fn, Args: args}, nil
	case tokenOp:
		prec := unop(tok.text)
		if prec.fn == funcNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			scan.push(end)
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		if prec.fn == Add {
			return rhs, nil
		}
		return CallExpr{Func: Subtract, Args: []Expr{Static{Value: Zero}, rhs}}, nil
	case tokenOpen:
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		// Let the caller decide what to do, e.g. for add().
		scan.push(tok)
		return nil, nil
	case tokenSep:
		if p.ceof {
			scan.push(tok)
			return nil, nil
		}
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("formulas: unknown token: " + tok.String())
	}
}

// parsecall parses the bracketed argument list following a function name.
func parsecall(scan *lexer, p *parsectx, name string) ([]Expr, error) {
	// Respect whitespace here so that a function name at the end of a line
	// doesn't take the next line as its arguments.
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOpen {
		return nil, &CallError{Col: tok.pos, Func: name}
	}
	match := rightbracket(tok.text)
	args, err := parsearglist(scan, p, tok.text)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose {
		panic("formulas: parsearglist ended on " + end.String() + " instead of close bracket")
	}
	if end.text != closebrackets[match] {
		return nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
	}
	return args, nil
}

// parsearglist parses a bracketed list of zero or more args. The result is
// non-nil even when there are no arguments.
func parsearglist(scan *lexer, p *parsectx, open string) ([]Expr, error) {
	args := []Expr{}
	for {
		arg, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if arg == nil {
				// f() is allowed, but f(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return args, nil
			}
			return append(args, arg), nil
		case tokenSep:
			if arg == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, arg)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("formulas: parseterm ended on non-end token " + end.String())
		}
	}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("formulas: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("formulas: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// fn is the function the operator calls.
	fn Func
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has a zero fn.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, Add}
	case "-":
		return operator{1, false, Subtract}
	case "*", "×":
		return operator{5, false, Multiply}
	case "/", "÷":
		return operator{5, false, Divide}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has a zero fn.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, Add}
	case "-":
		return operator{10, true, Subtract}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of juxtaposition. It must match that of
	// multiplication.
	termprec = binop("*")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, funcNone}
)
