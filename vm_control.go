package wisp

// stepIf and stepDefine drive the two-phase frames beginSpecialForm pushes
// for `if`/`define`: phase 0 evaluates exactly the one child that must not
// be eagerly fanned out alongside its siblings (the condition; the
// definition's value), suspending on an uncached nested span exactly like
// stepEval does; phase 1 picks the surviving branch (if) or installs the
// binding (define) once that value is in hand.

// isFalsy implements the only-#f-is-false rule: no other Value (including
// the empty list) counts as a false condition.
func isFalsy(v Value) bool {
	return v.Type == ValueBoolean && !v.Bool
}

// resolveArgPosition evaluates the n-th logical argument of call, whether
// it's a nested child span (suspending by pushing a frameEval if not yet
// cached), a direct atom, or a position reached through a quote/quasiquote
// prefix (rendered unevaluated, never reduced). ready is false only when a
// suspension was pushed; the caller must return immediately (StatusOK) in
// that case without touching the returned value.
func (vm *VM) resolveArgPosition(call Span, n int, env *Scope, cache []Value) (v Value, ready bool, code StatusCode) {
	tok, childID, isChild, quoted, ok := vm.nthArg(call, n)
	if !ok {
		return Value{}, true, StatusArgument
	}
	if isChild {
		if quoted {
			return quoteSpanValue(vm.Flux, childID), true, StatusOK
		}
		if cache[childID].IsUndefined() {
			vm.stack.push(frame{Kind: frameEval, Span: vm.Flux.Spans[childID], Env: env, Cache: cache})
			return Value{}, false, StatusOK
		}
		return cache[childID], true, StatusOK
	}
	if quoted {
		return quoteTokenValue(tok), true, StatusOK
	}
	v, code = vm.evalAtomToken(tok, env)
	return v, true, code
}

// stepIf evaluates (if cond then else): the untaken branch must never be
// evaluated, which is exactly why if can't go through the generic
// eager-fan-out path.
func (vm *VM) stepIf(top *frame) StatusCode {
	cur := top.Call
	env := top.Env
	cache := top.Cache

	switch top.Phase {
	case 0:
		v, ready, code := vm.resolveArgPosition(cur, 0, env, cache)
		if !ready {
			return code
		}
		if code != StatusOK {
			return code
		}
		top.CondVal = v
		top.Phase = 1
		return StatusOK

	case 1:
		branch := 1
		if isFalsy(top.CondVal) {
			branch = 2
		}
		v, ready, code := vm.resolveArgPosition(cur, branch, env, cache)
		if !ready {
			return code
		}
		if code != StatusOK {
			return code
		}
		cache[cur.ID] = v
		vm.stack.pop()
		return StatusOK

	default:
		return StatusEval
	}
}

// stepDefine evaluates (define name expr): the bound name must not itself
// be looked up or evaluated, only its value expression is.
func (vm *VM) stepDefine(top *frame) StatusCode {
	cur := top.Call
	env := top.Env
	cache := top.Cache

	switch top.Phase {
	case 0:
		nameTok, _, nameIsChild, nameQuoted, ok := vm.nthArg(cur, 0)
		if !ok || nameIsChild || nameQuoted || nameTok.Kind != TokenIdentifier {
			return StatusSyntax
		}
		top.Name = nameTok.Value

		v, ready, code := vm.resolveArgPosition(cur, 1, env, cache)
		if !ready {
			return code
		}
		if code != StatusOK {
			return code
		}
		top.CondVal = v
		top.Phase = 1
		return StatusOK

	case 1:
		flags := FlagConst
		if env.parent == nil {
			flags |= FlagGlobal
		}
		if code := env.Define(top.Name, top.CondVal.Type, top.CondVal, flags); code != StatusOK {
			return code
		}
		cache[cur.ID] = top.CondVal
		vm.stack.pop()
		return StatusOK

	default:
		return StatusEval
	}
}
