// Package wisp_test exercises the public API end-to-end, the way a program
// actually runs: source text through the real lexer, then wisp.Interpret.
// It lives outside package wisp because it needs both wisp and
// internal/lexer, and internal/lexer itself imports wisp.
package wisp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wisp "github.com/giorgioyu125/Wisp"
	"github.com/giorgioyu125/Wisp/internal/lexer"
)

func run(t *testing.T, src string) (wisp.Value, *wisp.WispError) {
	t.Helper()
	tokens, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)
	return wisp.Interpret(tokens, nil)
}

func TestInterpret_ScenarioTable(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want wisp.Value
	}{
		{"sum", "(+ 1 2 3)", wisp.Integer(6)},
		{"nested-arith", "(* 2 (+ 3 4))", wisp.Integer(14)},
		{"division-is-float", "(/ 10 4)", wisp.FloatVal(2.5)},
		{"unary-negate", "(- 5)", wisp.Integer(-5)},
		{"lambda-application", "((lambda (x y) (+ x (* y y))) 3 4)", wisp.Integer(19)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, werr := run(t, c.src)
			require.Nil(t, werr)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestInterpret_DivisionByZeroIsEvalError(t *testing.T) {
	_, werr := run(t, "(/ 1 0)")
	require.NotNil(t, werr)
	assert.Equal(t, wisp.StatusEval, werr.Code)
}

func TestInterpret_UnboundSymbolErrors(t *testing.T) {
	_, werr := run(t, "(foo)")
	require.NotNil(t, werr)
	assert.Equal(t, wisp.StatusUnbound, werr.Code)
}

func TestInterpret_TypeMismatchErrors(t *testing.T) {
	_, werr := run(t, `(+ 1 "x")`)
	require.NotNil(t, werr)
	assert.Equal(t, wisp.StatusType, werr.Code)
}

func TestInterpret_DeeplyNestedArithmeticDoesNotOverflowHostStack(t *testing.T) {
	src := "1"
	for i := 0; i < 1000; i++ {
		src = "(+ 1 " + src + ")"
	}
	got, werr := run(t, src)
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(1001), got)
}

func TestInterpret_ConstRedefinitionPreservesFirstValue(t *testing.T) {
	_, werr := run(t, "(define pi 3.14) (define pi 2.71) pi")
	require.NotNil(t, werr, "redefining a const binding must fail, not silently overwrite it")
	assert.Equal(t, wisp.StatusConstViolation, werr.Code)
}

func TestInterpret_ConsCarCdrRoundTrip(t *testing.T) {
	got, werr := run(t, "(car (cons 1 2))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(1), got)

	got, werr = run(t, "(cdr (cons 1 2))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(2), got)
}

func TestInterpret_ListEquivalentToNestedCons(t *testing.T) {
	got, werr := run(t, "(equal? (list 1 2 3) (cons 1 (cons 2 (cons 3 (quote ())))))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.True, got)
}

func TestInterpret_EmptyProgramSucceedsWithNoValue(t *testing.T) {
	got, werr := run(t, "")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Value{}, got)
}

func TestInterpret_SingleTopLevelAtomIsItsOwnValue(t *testing.T) {
	got, werr := run(t, "42")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(42), got)
}

func TestInterpret_RedefiningCapturedGlobalIsConstViolation(t *testing.T) {
	src := `
		(define x 1)
		(define make-adder (lambda (n) (lambda (y) (+ n y))))
		(define add5 (make-adder 5))
		(define x 2)
		(add5 10)
	`
	_, werr := run(t, src)
	// Every define is const, so the second (define x 2) is a
	// const-redefinition error and the run stops there, before (add5 10):
	// a name a closure may have captured can't be rebound later.
	require.NotNil(t, werr)
	assert.Equal(t, wisp.StatusConstViolation, werr.Code)
}

func TestInterpret_QuoteReturnsUnevaluatedAtom(t *testing.T) {
	got, werr := run(t, "(quote foo)")
	require.Nil(t, werr)
	assert.Equal(t, wisp.ValueSymbol, got.Type)
	assert.Equal(t, "foo", got.Str)
}

func TestInterpret_QuotePrefixShorthand(t *testing.T) {
	got, werr := run(t, "'foo")
	require.Nil(t, werr)
	assert.Equal(t, wisp.ValueSymbol, got.Type)
	assert.Equal(t, "foo", got.Str)
}

func TestInterpret_LastTopLevelFormValueWins(t *testing.T) {
	got, werr := run(t, "(+ 1 2) 42")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(42), got)
}

func TestInterpret_IfSelectsBranchWithoutEvaluatingTheOther(t *testing.T) {
	got, werr := run(t, "(if (< 1 2) 10 20)")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(10), got)

	got, werr = run(t, "(if (> 1 2) 10 20)")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(20), got)

	// The untaken branch contains an unbound call; it must never run.
	got, werr = run(t, "(if (< 1 2) 1 (no-such-function))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(1), got)
}

func TestInterpret_DefinedLambdaIsCallable(t *testing.T) {
	got, werr := run(t, "(define sq (lambda (x) (* x x))) (sq 7)")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(49), got)
}

func TestInterpret_RecursionRunsOnTheWorkStack(t *testing.T) {
	src := "(define fact (lambda (n) (if (< n 2) 1 (* n (fact (- n 1)))))) (fact 10)"
	got, werr := run(t, src)
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(3628800), got)
}

func TestInterpret_ApplyCallsFunctionWithListArguments(t *testing.T) {
	got, werr := run(t, "(apply (lambda (x y) (+ x y)) (list 2 3))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(5), got)
}

func TestInterpret_QuotedEmptyListIsNil(t *testing.T) {
	got, werr := run(t, "'()")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Nil, got)

	got, werr = run(t, "(null? '())")
	require.Nil(t, werr)
	assert.Equal(t, wisp.True, got)
}

func TestInterpret_QuotedListArgumentIsNotEvaluated(t *testing.T) {
	// `a` and `b` are unbound; the quoted form must reach cons without
	// either ever being looked up.
	got, werr := run(t, "(pair? (cons 1 '(a b)))")
	require.Nil(t, werr)
	assert.Equal(t, wisp.True, got)
}

func TestInterpret_NestedHeadFormIsAppliedNotGathered(t *testing.T) {
	got, werr := run(t, "((lambda (x) (+ x 1)) 41)")
	require.Nil(t, werr)
	assert.Equal(t, wisp.Integer(42), got)
}
