package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// annotated is a small helper: build tokens with NewToken, run Annotate, and
// hand back the mutated slice, for flux tests that don't care about the
// annotator's own behavior.
func annotated(t *testing.T, tokens []Token) []Token {
	t.Helper()
	_, err := Annotate(tokens)
	require.NoError(t, err)
	return tokens
}

func TestBuildFlux_EmptyProgram(t *testing.T) {
	flux, err := BuildFlux([]Token{})
	require.NoError(t, err)
	assert.Empty(t, flux.TopLevelSpans())
}

func TestBuildFlux_NilInputIsError(t *testing.T) {
	_, err := BuildFlux(nil)
	require.Error(t, err)
}

func TestBuildFlux_SpanContainment(t *testing.T) {
	// (+ 1 (* 2 3))
	tokens := annotated(t, []Token{
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "+"),
		tok(TokenInteger, "1"),
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "*"),
		tok(TokenInteger, "2"),
		tok(TokenInteger, "3"),
		tok(TokenRightParen, ")"),
		tok(TokenRightParen, ")"),
	})

	flux, err := BuildFlux(tokens)
	require.NoError(t, err)
	require.Equal(t, 2, flux.MaxID)

	outer := flux.Spans[1]
	inner := flux.Spans[2]

	assert.True(t, outer.StartIdx <= inner.StartIdx && outer.EndIdx >= inner.EndIdx,
		"the child span's interval must be contained in the parent's")

	kids := flux.Children(outer)
	require.Equal(t, []int{2}, kids)

	assert.False(t, flux.IsAtom(outer))
	assert.False(t, flux.IsAtom(inner))
}

func TestBuildFlux_AtomSpan(t *testing.T) {
	tokens := annotated(t, []Token{tok(TokenInteger, "42")})
	flux, err := BuildFlux(tokens)
	require.NoError(t, err)

	top := flux.TopLevelSpans()
	require.Len(t, top, 1)
	assert.True(t, flux.IsAtom(top[0]))
	assert.Equal(t, "42", string(flux.AtomToken(top[0]).Value))
}

func TestBuildFlux_TopLevelSpansInSourceOrder(t *testing.T) {
	// 1 2 (+ 3 4)
	tokens := annotated(t, []Token{
		tok(TokenInteger, "1"),
		tok(TokenInteger, "2"),
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "+"),
		tok(TokenInteger, "3"),
		tok(TokenInteger, "4"),
		tok(TokenRightParen, ")"),
	})
	flux, err := BuildFlux(tokens)
	require.NoError(t, err)

	// Bare top-level atoms share id 0 and have no recorded span of their
	// own, so each comes back as a synthetic single-token span, in source
	// order, ahead of the parenthesized form.
	tops := flux.TopLevelSpans()
	require.Len(t, tops, 3)
	assert.Equal(t, Span{ID: 0, StartIdx: 0, EndIdx: 0}, tops[0])
	assert.Equal(t, Span{ID: 0, StartIdx: 1, EndIdx: 1}, tops[1])
	assert.Equal(t, 1, tops[2].ID)
}

func TestBuildFlux_DirectAtomsSkipsNestedChildren(t *testing.T) {
	// (lambda (x y) x)
	tokens := annotated(t, []Token{
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "lambda"),
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "x"),
		tok(TokenIdentifier, "y"),
		tok(TokenRightParen, ")"),
		tok(TokenIdentifier, "x"),
		tok(TokenRightParen, ")"),
	})
	flux, err := BuildFlux(tokens)
	require.NoError(t, err)

	paramsSpan := flux.Spans[2]
	atoms := flux.DirectAtoms(paramsSpan)
	require.Len(t, atoms, 2)
	assert.Equal(t, "x", string(atoms[0].Value))
	assert.Equal(t, "y", string(atoms[1].Value))
}

func TestBuildFlux_DeeplyNestedProgram(t *testing.T) {
	// 1,000-deep nested (+ 1 (+ 1 (+ 1 ... 1) ...)): building the flux
	// must not blow the host stack, and every level gets its own, properly
	// contained span.
	const depth = 1000
	var tokens []Token
	for i := 0; i < depth; i++ {
		tokens = append(tokens, tok(TokenLeftParen, "("), tok(TokenIdentifier, "+"), tok(TokenInteger, "1"))
	}
	tokens = append(tokens, tok(TokenInteger, "1"))
	for i := 0; i < depth; i++ {
		tokens = append(tokens, tok(TokenRightParen, ")"))
	}

	maxID, err := Annotate(tokens)
	require.NoError(t, err)
	assert.Equal(t, depth, maxID)

	flux, err := BuildFlux(tokens)
	require.NoError(t, err)
	assert.Equal(t, depth-1, flux.MaxDepth, "the innermost span has depth-1 strictly-containing ancestors")
}
