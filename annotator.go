package wisp

// Annotate makes a single linear pass over tokens, assigning each one a
// stable s-expression id and rewriting parentheses to Ignored.
//
// Tokens are mutated in place: id 0 is "top level"; inner parens receive
// strictly greater ids in the order their opening paren is seen, so ids
// are dense — every id in {1..maxID} occurs. The scratch stack of active
// ids is backed by a Vector.
func Annotate(tokens []Token) (maxID int, err error) {
	if tokens == nil {
		return 0, AnnotationNullInput
	}
	if len(tokens) == 0 {
		return 0, AnnotationEmptyInput
	}

	active := NewVector[int](16)
	counter := 0

	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenLeftParen:
			counter++
			tok.SExprID = counter
			active.Push(counter)
			tok.Kind = TokenIgnored

		case TokenRightParen:
			top, ok := active.Peek()
			if !ok {
				return 0, AnnotationUnmatchedClose
			}
			tok.SExprID = top
			active.PopDiscard()
			tok.Kind = TokenIgnored

		default:
			if top, ok := active.Peek(); ok {
				tok.SExprID = top
			} else {
				tok.SExprID = 0
			}
		}
	}

	if active.Length() != 0 {
		return 0, AnnotationUnclosedAtEOF
	}

	return counter, nil
}
