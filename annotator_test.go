package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(kind TokenKind, text string) Token {
	return NewToken(kind, []byte(text))
}

func TestAnnotate_NilAndEmptyInput(t *testing.T) {
	_, err := Annotate(nil)
	assert.Equal(t, AnnotationNullInput, err)

	_, err = Annotate([]Token{})
	assert.Equal(t, AnnotationEmptyInput, err)
}

func TestAnnotate_SingleAtomIsTopLevel(t *testing.T) {
	tokens := []Token{tok(TokenInteger, "42")}
	maxID, err := Annotate(tokens)
	require.NoError(t, err)
	assert.Equal(t, 0, maxID)
	assert.Equal(t, 0, tokens[0].SExprID)
}

func TestAnnotate_BalancedNestingAssignsDenseIDs(t *testing.T) {
	// (+ 1 (* 2 3))
	tokens := []Token{
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "+"),
		tok(TokenInteger, "1"),
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "*"),
		tok(TokenInteger, "2"),
		tok(TokenInteger, "3"),
		tok(TokenRightParen, ")"),
		tok(TokenRightParen, ")"),
	}

	maxID, err := Annotate(tokens)
	require.NoError(t, err)
	assert.Equal(t, 2, maxID)

	// Both parens of the outer form share id 1, both of the inner share 2.
	assert.Equal(t, 1, tokens[0].SExprID)
	assert.Equal(t, TokenIgnored, tokens[0].Kind)
	assert.Equal(t, 1, tokens[1].SExprID)
	assert.Equal(t, 1, tokens[2].SExprID)
	assert.Equal(t, 2, tokens[3].SExprID)
	assert.Equal(t, TokenIgnored, tokens[3].Kind)
	assert.Equal(t, 2, tokens[4].SExprID)
	assert.Equal(t, 2, tokens[5].SExprID)
	assert.Equal(t, 2, tokens[6].SExprID)
	assert.Equal(t, 2, tokens[7].SExprID)
	assert.Equal(t, 1, tokens[8].SExprID)

	// Dense ids: {1, 2, ..., maxID} present with no gaps.
	seen := map[int]bool{}
	for _, tk := range tokens {
		seen[tk.SExprID] = true
	}
	for id := 1; id <= maxID; id++ {
		assert.True(t, seen[id], "id %d must be present", id)
	}
}

func TestAnnotate_UnmatchedClosingParen(t *testing.T) {
	tokens := []Token{tok(TokenRightParen, ")")}
	_, err := Annotate(tokens)
	assert.Equal(t, AnnotationUnmatchedClose, err)
}

func TestAnnotate_UnclosedAtEOF(t *testing.T) {
	tokens := []Token{tok(TokenLeftParen, "("), tok(TokenInteger, "1")}
	_, err := Annotate(tokens)
	assert.Equal(t, AnnotationUnclosedAtEOF, err)
}

func TestAnnotate_MultipleTopLevelForms(t *testing.T) {
	// 1 (+ 2 3)
	tokens := []Token{
		tok(TokenInteger, "1"),
		tok(TokenLeftParen, "("),
		tok(TokenIdentifier, "+"),
		tok(TokenInteger, "2"),
		tok(TokenInteger, "3"),
		tok(TokenRightParen, ")"),
	}
	maxID, err := Annotate(tokens)
	require.NoError(t, err)
	assert.Equal(t, 1, maxID)
	assert.Equal(t, 0, tokens[0].SExprID, "the bare top-level atom keeps id 0")
	assert.Equal(t, 1, tokens[1].SExprID)
}
