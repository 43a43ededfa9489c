package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/zephyrtronium/formulas"
)

// source is an input of templates.
type source interface {
	io.Reader
	io.RuneScanner
}

func main() {
	log.SetFlags(0)
	var (
		inname, varsname string
		with             [][2]string
		infix, nl, echo  bool
		list, resolve    bool
		schema, strict   bool
		verbose          bool
		prec             uint
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&varsname, "vars", "", "YAML or JSON file of variable bindings")
	flag.Func("given", "name=value variable definition, value in infix notation (any number of times)", addwith)
	flag.UintVar(&prec, "p", envprec(), "significant decimal digits of results (default from $FORMULAS_PREC)")
	flag.BoolVar(&strict, "strict", false, "fail instead of rounding results")
	flag.BoolVar(&infix, "infix", false, "read formulas in infix notation instead of JSON templates")
	flag.BoolVar(&nl, "n", false, "with -infix, parse separate input lines as separate formulas")
	flag.BoolVar(&echo, "echo", false, "print each template before its result")
	flag.BoolVar(&list, "list", false, "print the variables each template needs instead of evaluating")
	flag.BoolVar(&resolve, "resolve", false, "print each resolved value as JSON instead of evaluating")
	flag.BoolVar(&schema, "schema", false, "print the JSON Schema of templates and exit")
	flag.BoolVar(&verbose, "v", false, "log each evaluation step to stderr")
	flag.Parse()
	if schema {
		b, err := formulas.JSONSchema()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s\n", b)
		return
	}
	if prec == 0 || prec > 1<<31 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	var ins []source
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	opts := []formulas.ContextOption{formulas.Prec(uint32(prec))}
	if strict {
		opts = append(opts, formulas.Strict())
	}
	if verbose {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, formulas.Logger(slog.New(h)))
	}
	if varsname != "" {
		vars, err := readvars(varsname)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, formulas.SetVars(vars))
	}
	ctx := formulas.NewContext(opts...)
	for _, d := range with {
		nm, vl := d[0], d[1]
		// Definitions may refer to earlier ones.
		r, err := evalstring(ctx, vl)
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		ctx.Set(nm, r)
	}

	var tpls []formulas.Expr
	for _, in := range ins {
		var t []formulas.Expr
		var err error
		if infix {
			t, err = parseinfix(in, nl)
		} else {
			t, err = parsejson(in)
		}
		if err != nil {
			log.Fatal(err)
		}
		tpls = append(tpls, t...)
	}

	failed := false
	for _, e := range tpls {
		if echo {
			fmt.Printf("%v : ", e)
		}
		switch {
		case list:
			fmt.Println(strings.Join(formulas.Variables(e), " "))
		case resolve:
			v, err := ctx.Resolve(e)
			if err != nil {
				fmt.Println(err)
				failed = true
				continue
			}
			b, err := json.Marshal(v)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("%s\n", b)
		default:
			r, err := ctx.ResolveEval(e)
			if err != nil {
				fmt.Println(err)
				failed = true
				continue
			}
			fmt.Println(r)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// envprec gets the default precision from the environment.
func envprec() uint {
	raw, ok := os.LookupEnv("FORMULAS_PREC")
	if !ok || strings.TrimSpace(raw) == "" {
		return uint(formulas.DefaultPrec)
	}
	p, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		log.Fatalf("FORMULAS_PREC: %v", err)
	}
	return uint(p)
}

func evalstring(ctx *formulas.Context, src string) (formulas.Value, error) {
	e, err := formulas.ParseString(src)
	if err != nil {
		return nil, err
	}
	return ctx.ResolveEval(e)
}

func readvars(name string) (formulas.Vars, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vars, err := formulas.DecodeVars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return vars, nil
}

// parseinfix parses every formula in an input.
func parseinfix(in source, nl bool) ([]formulas.Expr, error) {
	var opts []formulas.ParseOption
	if nl {
		opts = append(opts, formulas.StopOn('\n'))
	}
	var r []formulas.Expr
	for {
		// First check whether we're done with the input. Blank lines between
		// formulas are not empty formulas.
		done, err := skipspace(in)
		if err != nil {
			return nil, err
		}
		if done {
			return r, nil
		}
		e, err := formulas.Parse(in, opts...)
		if err != nil {
			return nil, err
		}
		r = append(r, e)
	}
}

// skipspace consumes whitespace and reports whether the input is exhausted.
func skipspace(in io.RuneScanner) (bool, error) {
	for {
		c, _, err := in.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, err
		}
		if !unicode.IsSpace(c) {
			return false, in.UnreadRune()
		}
	}
}

// parsejson parses a stream of JSON templates.
func parsejson(in source) ([]formulas.Expr, error) {
	dec := json.NewDecoder(in)
	var r []formulas.Expr
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return r, nil
			}
			return nil, err
		}
		e, err := formulas.UnmarshalExpr(raw)
		if err != nil {
			return nil, err
		}
		r = append(r, e)
	}
}

func infile(inname string, std bool) (source, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
