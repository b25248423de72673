package sinerider

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Vars are the variables an expression may reference.
type Vars struct {
	X, T float64
	// A is the hint-graph slider parameter.
	A float64
}

// exprEnv is the environment expressions are checked and run against.
type exprEnv struct {
	X  float64 `expr:"x"`
	T  float64 `expr:"t"`
	A  float64 `expr:"a"`
	Pi float64 `expr:"pi"`
	E  float64 `expr:"e"`
}

// Expression is a compiled curve y = f(x, t).
type Expression interface {
	Eval(v Vars) (float64, error)
	String() string
}

// ExpressionCompiler turns user-authored text into an Expression.
type ExpressionCompiler interface {
	Compile(text string) (Expression, error)
}

// ExprCompiler compiles expressions with expr-lang. It understands the
// usual arithmetic operators, ^ for powers, the variables x, t and a, the
// constants pi and e, and the common math functions.
type ExprCompiler struct{}

// Compile implements ExpressionCompiler.
func (ExprCompiler) Compile(text string) (Expression, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return nil, fmt.Errorf("compile expression: empty")
	}
	program, err := expr.Compile(src, exprOptions...)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, err)
	}
	return &compiledExpr{src: src, program: program}, nil
}

var exprOptions = []expr.Option{
	expr.Env(exprEnv{}),
	expr.AsFloat64(),
	mathFunc1("sin", math.Sin),
	mathFunc1("cos", math.Cos),
	mathFunc1("tan", math.Tan),
	mathFunc1("asin", math.Asin),
	mathFunc1("acos", math.Acos),
	mathFunc1("atan", math.Atan),
	mathFunc1("sqrt", math.Sqrt),
	mathFunc1("exp", math.Exp),
	mathFunc1("log", math.Log),
	mathFunc1("sinh", math.Sinh),
	mathFunc1("cosh", math.Cosh),
	mathFunc1("tanh", math.Tanh),
	mathFunc1("sign", func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	}),
}

func mathFunc1(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		v, err := toFloat(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(v), nil
	}, new(func(float64) float64))
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

type compiledExpr struct {
	src     string
	program *vm.Program
}

func (c *compiledExpr) String() string { return c.src }

func (c *compiledExpr) Eval(v Vars) (float64, error) {
	out, err := expr.Run(c.program, exprEnv{X: v.X, T: v.T, A: v.A, Pi: math.Pi, E: math.E})
	if err != nil {
		return 0, err
	}
	y, err := toFloat(out)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("eval %q: non-finite result", c.src)
	}
	return y, nil
}
