package wisp

// Span is one S-expression's record: the id, the token-index interval that
// belongs to it (inclusive), and an implicit reference to the flux's token
// vector (spans don't own tokens, the flux does).
type Span struct {
	ID       int
	StartIdx int
	EndIdx   int
}

// Flux is the program flux: an indexed view over the annotated token
// stream. It references but does not own the token vector, and lives for
// the duration of a single evaluation.
type Flux struct {
	Spans    []Span // indexed by id: Spans[id] is the span for that id
	Tokens   []Token
	MaxID    int
	MaxDepth int
}

// BuildFlux records, for every id present in the annotated token stream,
// a StartIdx at the form's head position (the first token after its opening
// bracket, which may belong to a nested child form) and an EndIdx at the
// last token bearing that id, its Ignored closing bracket included. Children
// carry strictly greater ids than their parents, so handing back Spans
// indexed by id gives the child-before-parent order the evaluator wants
// for free: any id-descending walk is just "iterate from MaxID down to
// 1".
func BuildFlux(tokens []Token) (*Flux, error) {
	if tokens == nil {
		return nil, newError(StatusArgument, "build flux: null token vector")
	}

	maxID := 0
	for _, tok := range tokens {
		if tok.SExprID > maxID {
			maxID = tok.SExprID
		}
	}

	if maxID == 0 && allIgnoredOrEmpty(tokens) {
		return &Flux{Tokens: tokens}, nil
	}

	spans := make([]Span, maxID+1)
	first := make([]int, maxID+1)
	started := make([]bool, maxID+1)

	depth := make([]int, maxID+1)
	maxDepth := 0

	// A parenthesized span's own bracket tokens carry its id too, but the
	// annotator has already rewritten them to Ignored — so a naive "skip
	// Ignored tokens" pass would compute EndIdx from only the span's
	// directly-owned atoms, stopping short of any nested child's entire
	// range and breaking parent-child containment. EndIdx must track the
	// id's last occurrence at all, Ignored or not, which is exactly its
	// own closing bracket once nested content is between them.
	for i, tok := range tokens {
		id := tok.SExprID
		if id < 0 || id > maxID {
			return nil, newError(StatusEval, "build flux: inconsistent id %d (max %d)", id, maxID)
		}
		if !started[id] {
			first[id] = i
			spans[id] = Span{ID: id, StartIdx: i, EndIdx: i}
			started[id] = true
		} else {
			spans[id].EndIdx = i
		}
	}

	// StartIdx is the head position: the first non-Ignored token inside
	// the bracket interval, whether it belongs to id itself (the common
	// `(f ...)` case) or to a nested child (`((lambda ...) ...)`, where
	// the head is a whole sub-form carrying its own greater id). For the
	// empty list `()` every token in the interval is Ignored and StartIdx
	// stays on the opening bracket; IsEmptyParens is what recognizes it.
	for id := 0; id <= maxID; id++ {
		if !started[id] {
			continue
		}
		for i := first[id]; i <= spans[id].EndIdx; i++ {
			if tokens[i].Kind != TokenIgnored {
				spans[id].StartIdx = i
				break
			}
		}
	}

	for id := 1; id <= maxID; id++ {
		if !started[id] {
			continue
		}
		d := spanDepth(spans, started, id)
		depth[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	return &Flux{Spans: spans, Tokens: tokens, MaxID: maxID, MaxDepth: maxDepth}, nil
}

// tokenRange is the span's token-index interval as a half-open Range.
func (s Span) tokenRange() Range {
	return NewRange(s.StartIdx, s.EndIdx+1)
}

// spanDepth counts how many ancestor spans strictly contain id's interval,
// used only to compute Flux.MaxDepth.
func spanDepth(spans []Span, seen []bool, id int) int {
	depth := 0
	cur := spans[id].tokenRange()
	for pid := 1; pid < id; pid++ {
		if !seen[pid] {
			continue
		}
		if spans[pid].tokenRange().Contains(cur) {
			depth++
		}
	}
	return depth
}

func allIgnoredOrEmpty(tokens []Token) bool {
	for _, tok := range tokens {
		if tok.Kind != TokenIgnored {
			return false
		}
	}
	return true
}

// Children returns the ids of cur's direct, non-overlapping child spans,
// in left-to-right token order — the order argument evaluation and its
// side effects must observe.
func (f *Flux) Children(cur Span) []int {
	var kids []int
	i := cur.StartIdx
	for i <= cur.EndIdx {
		tok := f.Tokens[i]
		if tok.SExprID == cur.ID {
			i++
			continue
		}
		// Every token belonging to a foreign id — including a nested `()`
		// whose own two bracket tokens are both Ignored — marks a child;
		// jump straight past its whole recorded range rather than stepping
		// token by token, so an empty-list child is found exactly like any
		// other (it just has nothing between its own brackets).
		childID := tok.SExprID
		kids = append(kids, childID)
		i = f.Spans[childID].EndIdx + 1
	}
	return kids
}

// IsAtom reports whether cur is a single atom: one real token of its own
// (two, for a `'x`/`` `x `` prefix pair sharing an id with the atom it
// quotes), and none of its own tokens are a bracket. A parenthesized span
// always owns at least one Ignored bracket token, so "no nested children"
// alone isn't enough to call it atomic — `(+ 1 2 3)` has no foreign-id
// children either, but it is a call, not an atom.
func (f *Flux) IsAtom(cur Span) bool {
	own := 0
	for i := cur.StartIdx; i <= cur.EndIdx; i++ {
		tok := f.Tokens[i]
		if tok.SExprID != cur.ID {
			return false
		}
		if tok.Kind == TokenIgnored {
			return false
		}
		own++
	}
	if own == 1 {
		return true
	}
	if own == 2 {
		head := f.Tokens[cur.StartIdx].Kind
		return head == TokenQuote || head == TokenQuasiquote
	}
	return false
}

// IsEmptyParens reports whether cur is the empty-list literal `()`: every
// token in its interval is Ignored (the annotator turns both parens
// themselves into TokenIgnored), so there is no atom token to return at
// all. IsAtom alone can't distinguish this from a malformed span — this is
// what lets stepEval/quoteSpanValue treat `()` as Nil instead of
// falling through AtomToken's zero-value sentinel.
func (f *Flux) IsEmptyParens(cur Span) bool {
	for i := cur.StartIdx; i <= cur.EndIdx; i++ {
		if f.Tokens[i].Kind != TokenIgnored {
			return false
		}
	}
	return true
}

// AtomToken returns the single token belonging to an atomic span.
func (f *Flux) AtomToken(cur Span) Token {
	for i := cur.StartIdx; i <= cur.EndIdx; i++ {
		tok := f.Tokens[i]
		if tok.Kind != TokenIgnored && tok.SExprID == cur.ID {
			return tok
		}
	}
	return Token{}
}

// DirectAtoms returns, in left-to-right order, the tokens directly owned by
// cur (its own bare atoms, skipping parens and nested child spans) — used
// by lambda's parameter-list parsing, which must read plain identifiers out
// of `(x y)` without treating them as child spans (only parenthesized forms
// get their own Span; bare atoms inside one keep their parent's id).
func (f *Flux) DirectAtoms(cur Span) []Token {
	var out []Token
	i := cur.StartIdx
	for i <= cur.EndIdx {
		tok := f.Tokens[i]
		if tok.SExprID != cur.ID {
			i = f.Spans[tok.SExprID].EndIdx + 1
			continue
		}
		if tok.Kind == TokenIgnored {
			i++
			continue
		}
		out = append(out, tok)
		i++
	}
	return out
}

// sliceText renders cur's raw source text by joining its token bytes with
// single spaces. It exists only so a quoted compound form (`'(a b)`) has
// *some* textual Value to evaluate to, the Value model having no
// heap-allocated "unevaluated list" tag. This is not a printer, just a
// plain fallback.
func (f *Flux) sliceText(cur Span) string {
	var out []byte
	start := cur.StartIdx
	for i := cur.StartIdx - 1; i >= 0 && f.Tokens[i].Kind == TokenIgnored; i-- {
		if f.Tokens[i].SExprID == cur.ID {
			start = i
		}
	}
	for i := start; i <= cur.EndIdx; i++ {
		if i > start {
			out = append(out, ' ')
		}
		out = append(out, f.Tokens[i].Value...)
	}
	return string(out)
}

// TopLevelSpans returns the sequence of top-level forms in source order,
// the list the driver evaluates one at a time. Parenthesized forms come
// back as their recorded spans; bare atoms at nesting id 0 have no recorded
// span of their own (several of them share id 0), so each one is handed
// back as a synthetic single-token span. A quote or quasiquote prefix at
// top level is folded together with the form it quotes into one span, the
// same grouping the evaluator's atom path expects for `'x`.
func (f *Flux) TopLevelSpans() []Span {
	var tops []Span
	i := 0
	for i < len(f.Tokens) {
		tok := f.Tokens[i]
		switch {
		// The id check runs before the Ignored check: a top-level form's
		// first token is its own opening bracket, Ignored but bearing the
		// outermost id — exactly the span wanted. Looking past it could
		// land on a nested head's greater id instead.
		case tok.SExprID != 0:
			sp := f.Spans[tok.SExprID]
			tops = append(tops, sp)
			i = sp.EndIdx + 1

		case tok.Kind == TokenIgnored:
			i++

		case tok.Kind == TokenQuote || tok.Kind == TokenQuasiquote:
			end := i
			if i+1 < len(f.Tokens) {
				if next := f.Tokens[i+1]; next.SExprID != 0 {
					end = f.Spans[next.SExprID].EndIdx
				} else {
					end = i + 1
				}
			}
			tops = append(tops, Span{ID: 0, StartIdx: i, EndIdx: end})
			i = end + 1

		default:
			tops = append(tops, Span{ID: 0, StartIdx: i, EndIdx: i})
			i++
		}
	}
	return tops
}

// EagerChildren returns the ids of cur's direct child spans that the
// evaluator should reduce before application — i.e. Children minus any
// child sitting behind a quote or quasiquote prefix, whose contents must
// reach the callee unevaluated.
func (f *Flux) EagerChildren(cur Span) []int {
	var kids []int
	i := cur.StartIdx
	for i <= cur.EndIdx {
		tok := f.Tokens[i]
		if tok.SExprID == cur.ID {
			if (tok.Kind == TokenQuote || tok.Kind == TokenQuasiquote) && i+1 <= cur.EndIdx {
				if next := f.Tokens[i+1]; next.SExprID != cur.ID {
					i = f.Spans[next.SExprID].EndIdx + 1
				} else {
					i += 2
				}
				continue
			}
			i++
			continue
		}
		childID := tok.SExprID
		kids = append(kids, childID)
		i = f.Spans[childID].EndIdx + 1
	}
	return kids
}
