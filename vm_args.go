package wisp

// GatherArgs collects a call's arguments the way every primitive consumes
// them: iterate the call span's non-ignored tokens after its head,
// evaluating inline atoms on the spot and reading already-cached values for
// nested child spans. By the time this is called, the fan-out phase has
// guaranteed every eagerly-evaluated child is in the result cache. It reads
// vm.curCache rather than taking a cache parameter because PrimitiveFunc's
// signature is fixed to (vm, env, call-span, out) — apply sets curCache to
// the calling activation's cache immediately before dispatch.
func (vm *VM) GatherArgs(call Span, env *Scope) ([]Value, StatusCode) {
	head := vm.Flux.Tokens[call.StartIdx]
	i := call.StartIdx
	if head.SExprID == call.ID {
		i++ // skip the bare head identifier
	} else {
		i = vm.Flux.Spans[head.SExprID].EndIdx + 1 // skip a nested head form whole
	}

	var args []Value
	for i <= call.EndIdx {
		tok := vm.Flux.Tokens[i]

		if tok.SExprID != call.ID {
			// A foreign id: a nested child, whether or not every token it
			// owns is Ignored (an empty-list argument has nothing else).
			childID := tok.SExprID
			v, code := vm.cachedOrError(childID)
			if code != StatusOK {
				return nil, code
			}
			args = append(args, v)
			i = vm.Flux.Spans[childID].EndIdx + 1
			continue
		}

		if tok.Kind == TokenIgnored {
			i++ // call's own bracket token
			continue
		}

		if tok.Kind == TokenQuote || tok.Kind == TokenQuasiquote {
			v, next, code := vm.quotedArgAt(call, i)
			if code != StatusOK {
				return nil, code
			}
			args = append(args, v)
			i = next
			continue
		}
		v, code := vm.evalAtomToken(tok, env)
		if code != StatusOK {
			return nil, code
		}
		args = append(args, v)
		i++
	}
	return args, StatusOK
}

// quotedArgAt handles a direct quote/quasiquote token at index i within
// call: the following position is taken unevaluated, whether it is a bare
// sibling atom (`(f 'x)`) or a nested span (`(f '(a b))`). The nested case
// never reaches the cache — the fan-out phase skips quoted children
// entirely (see EagerChildren), so the span is rendered unevaluated here.
func (vm *VM) quotedArgAt(call Span, i int) (Value, int, StatusCode) {
	if i+1 > call.EndIdx {
		return Value{}, 0, StatusSyntax
	}
	next := vm.Flux.Tokens[i+1]
	if next.SExprID == call.ID {
		return quoteTokenValue(next), i + 2, StatusOK
	}
	childID := next.SExprID
	return quoteSpanValue(vm.Flux, childID), vm.Flux.Spans[childID].EndIdx + 1, StatusOK
}

func (vm *VM) cachedOrError(spanID int) (Value, StatusCode) {
	v := vm.curCache[spanID]
	if v.IsUndefined() {
		return Value{}, StatusEval
	}
	return v, StatusOK
}

// nthArg locates the (0-indexed) argument position of call without
// evaluating it, for special forms that must not eagerly evaluate every
// argument (`if`'s branches, `define`'s name, `lambda`'s parameter list and
// body). It returns either the atom token directly owned by call, or the
// span id of a nested child, whichever the n-th argument position is. A
// direct quote/quasiquote prefix is folded together with whatever follows
// it into one logical argument position, matching GatherArgs; quoted
// reports whether that position was reached through such a prefix, so a
// caller that does go on to evaluate the position (stepIf's condition,
// stepDefine's value) knows to render it unevaluated instead of doing a
// normal reduction.
func (vm *VM) nthArg(call Span, n int) (tok Token, childID int, isChild bool, quoted bool, ok bool) {
	head := vm.Flux.Tokens[call.StartIdx]
	i := call.StartIdx
	if head.SExprID == call.ID {
		i++
	} else {
		i = vm.Flux.Spans[head.SExprID].EndIdx + 1
	}

	pos := 0
	for i <= call.EndIdx {
		t := vm.Flux.Tokens[i]
		if t.SExprID != call.ID {
			if pos == n {
				return Token{}, t.SExprID, true, false, true
			}
			pos++
			i = vm.Flux.Spans[t.SExprID].EndIdx + 1
			continue
		}
		if t.Kind == TokenIgnored {
			i++
			continue
		}
		if t.Kind == TokenQuote || t.Kind == TokenQuasiquote {
			if i+1 > call.EndIdx {
				return Token{}, 0, false, false, false
			}
			next := vm.Flux.Tokens[i+1]
			if next.SExprID == call.ID {
				if pos == n {
					return next, 0, false, true, true
				}
				pos++
				i += 2
				continue
			}
			if pos == n {
				return Token{}, next.SExprID, true, true, true
			}
			pos++
			i = vm.Flux.Spans[next.SExprID].EndIdx + 1
			continue
		}
		if pos == n {
			return t, 0, false, false, true
		}
		pos++
		i++
	}
	return Token{}, 0, false, false, false
}
