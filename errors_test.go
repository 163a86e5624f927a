package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWispError_MessageIncludesTokenWhenPresent(t *testing.T) {
	tk := tok(TokenIdentifier, "foo")
	err := newTokenError(StatusUnbound, &tk, "unbound symbol")
	assert.Contains(t, err.Error(), "foo")
	assert.Contains(t, err.Error(), "unbound")
}

func TestWispError_MessageWithoutToken(t *testing.T) {
	err := newError(StatusType, "bad type")
	assert.NotContains(t, err.Error(), `"`)
	assert.Contains(t, err.Error(), "bad type")
}

func TestStatusCode_StringNamesEveryKind(t *testing.T) {
	for code, want := range map[StatusCode]string{
		StatusOK:             "ok",
		StatusArgument:       "argument",
		StatusType:           "type",
		StatusUnbound:        "unbound",
		StatusOutOfMemory:    "out-of-memory",
		StatusEval:           "eval",
		StatusSyntax:         "syntax",
		StatusConstViolation: "const-violation",
		StatusNotFound:       "not-found",
	} {
		assert.Equal(t, want, code.String())
	}
}

func TestAnnotationCode_ErrorMessages(t *testing.T) {
	assert.Equal(t, "annotator: null input", AnnotationNullInput.Error())
	assert.Equal(t, "annotator: empty input", AnnotationEmptyInput.Error())
	assert.Equal(t, "annotator: unmatched closing paren", AnnotationUnmatchedClose.Error())
	assert.Equal(t, "annotator: unclosed expression at end-of-input", AnnotationUnclosedAtEOF.Error())
}
