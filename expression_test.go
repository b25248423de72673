package sinerider

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprCompilerEval(t *testing.T) {
	tests := []struct {
		src  string
		vars Vars
		want float64
	}{
		{"0", Vars{}, 0},
		{"x", Vars{X: 3}, 3},
		{"x^2", Vars{X: 3}, 9},
		{"x**2 - t", Vars{X: 2, T: 1}, 3},
		{"sin(x)", Vars{X: math.Pi / 2}, 1},
		{"cos(x + t)", Vars{X: 0, T: 0}, 1},
		{"-x/a", Vars{X: 6, A: 3}, -2},
		{"pi", Vars{}, math.Pi},
		{"e", Vars{}, math.E},
		{"sqrt(x) + exp(t)", Vars{X: 4, T: 0}, 3},
		{"sign(x)", Vars{X: -7}, -1},
		{"  x / 2  ", Vars{X: 5}, 2.5},
	}
	var c ExprCompiler
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := c.Compile(tt.src)
			require.NoError(t, err)
			got, err := e.Eval(tt.vars)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExprCompilerRejects(t *testing.T) {
	var c ExprCompiler
	for _, src := range []string{"", "   ", "sin(", "y + 1", "x +* 2", "unknown(x)"} {
		_, err := c.Compile(src)
		assert.Error(t, err, "%q", src)
	}
}

func TestExprNonFiniteIsError(t *testing.T) {
	var c ExprCompiler
	e, err := c.Compile("1/x")
	require.NoError(t, err)
	_, err = e.Eval(Vars{X: 0})
	assert.Error(t, err)

	e, err = c.Compile("sqrt(x)")
	require.NoError(t, err)
	_, err = e.Eval(Vars{X: -1})
	assert.Error(t, err)
}

func TestExprString(t *testing.T) {
	e, err := ExprCompiler{}.Compile(" sin(x) ")
	require.NoError(t, err)
	assert.Equal(t, "sin(x)", e.String())
}

func TestGraphEvalAndSlope(t *testing.T) {
	g := NewGraph(nil, "x^2")
	require.True(t, g.Valid())
	y, ok := g.Eval(3, 0)
	assert.True(t, ok)
	assert.InDelta(t, 9, y, 1e-9)
	assert.InDelta(t, 6, g.Slope(3, 0), 1e-6)
}

func TestGraphTimeAndStatic(t *testing.T) {
	g := NewGraph(nil, "x + t")
	y, _ := g.Eval(1, 2)
	assert.InDelta(t, 3, y, 1e-9)

	g.Static = true
	y, _ = g.Eval(1, 2)
	assert.InDelta(t, 1, y, 1e-9)
}

func TestGraphParam(t *testing.T) {
	g := NewGraph(nil, "a*x")
	g.Param = 4
	y, _ := g.Eval(2, 0)
	assert.InDelta(t, 8, y, 1e-9)
}

func TestGraphInvalidIsFlat(t *testing.T) {
	g := NewGraph(nil, "sin(")
	assert.False(t, g.Valid())
	assert.Error(t, g.Err())
	assert.Equal(t, "sin(", g.Expression())
	y, ok := g.Eval(5, 0)
	assert.False(t, ok)
	assert.Zero(t, y)
	assert.Zero(t, g.Slope(5, 0))

	assert.True(t, g.SetExpression("x"))
	assert.NoError(t, g.Err())
}

func TestGraphEvalErrorAtPoint(t *testing.T) {
	g := NewGraph(nil, "1/x")
	require.True(t, g.Valid())
	_, ok := g.Eval(0, 0)
	assert.False(t, ok)
	y, ok := g.Eval(2, 0)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, y, 1e-9)
}

type stubCompiler struct{ calls int }

type constExpr float64

func (c constExpr) Eval(Vars) (float64, error) { return float64(c), nil }
func (c constExpr) String() string             { return "const" }

func (s *stubCompiler) Compile(string) (Expression, error) {
	s.calls++
	return constExpr(7), nil
}

func TestGraphUsesInjectedCompiler(t *testing.T) {
	c := &stubCompiler{}
	g := NewGraph(c, "anything")
	g.SetExpression("else")
	y, ok := g.Eval(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 7.0, y)
	assert.Equal(t, 2, c.calls)
}
