package wisp

// apply resolves the head of a call once every eagerly-evaluated child of
// cur has been cached: a bare identifier via scope lookup, or — for forms
// like `((lambda (x) x) 5)` — an already-cached nested span. Then it
// dispatches to a primitive or a user function.
func (vm *VM) apply(cur Span, env *Scope, cache []Value) StatusCode {
	headVal, code := vm.resolveHead(cur, env, cache)
	if code != StatusOK {
		return code
	}

	vm.curCache = cache

	switch headVal.Type {
	case ValueBuiltin:
		var out Value
		code := headVal.Builtin(vm, env, cur, &out)
		if code != StatusOK {
			return code
		}
		cache[cur.ID] = out
		vm.stack.pop()
		return StatusOK

	case ValueFunction:
		return vm.applyFunction(cur, env, cache, headVal.Fn)

	default:
		return StatusType
	}
}

// resolveHead returns the Value in head position: a scope lookup (falling
// back to the global scope, though Scope.Lookup already walks all the way
// there) for a bare identifier, or the cached value of a nested span.
func (vm *VM) resolveHead(cur Span, env *Scope, cache []Value) (Value, StatusCode) {
	head := vm.Flux.Tokens[cur.StartIdx]
	if head.SExprID != cur.ID {
		v := cache[head.SExprID]
		if v.IsUndefined() {
			return Value{}, StatusEval
		}
		return v, StatusOK
	}

	if head.Kind != TokenIdentifier {
		return Value{}, StatusType
	}
	b, ok := env.Lookup(head.Value)
	if !ok {
		if b, ok = vm.Global.LookupLocal(head.Value); !ok {
			return Value{}, StatusUnbound
		}
	}
	return b.Value, StatusOK
}

// applyFunction applies a user function: a fresh scope parented to the
// function's *captured* environment — never the caller's — with parameters
// bound positionally from the gathered arguments, and a lambda-body
// sentinel frame that replaces the call's own frame so the sentinel's
// eventual result flows back to the call site. The sentinel gets its own
// fresh activation cache (see the VM type's doc comment on why one cache
// can't be reused across calls); the caller's cache and cur.ID travel
// along as DestCache/DestID so the final value can still be published once
// the caller's own frame has been replaced.
func (vm *VM) applyFunction(cur Span, env *Scope, cache []Value, fn *Function) StatusCode {
	args, code := vm.GatherArgs(cur, env)
	if code != StatusOK {
		return code
	}
	if len(args) != len(fn.Params) {
		return StatusArgument
	}

	callScope := PushScope(fn.Env, len(fn.Params)+1)
	for i, param := range fn.Params {
		callScope.Define(param, args[i].Type, args[i], FlagMutable)
	}

	if len(fn.Body) == 0 {
		return StatusEval
	}

	vm.stack.pop() // the sentinel takes this frame's place
	vm.stack.push(frame{
		Kind:      frameApplyBody,
		Env:       callScope,
		Cache:     make([]Value, vm.Flux.MaxID+1),
		Fn:        fn,
		BodyIndex: 0,
		DestCache: cache,
		DestID:    cur.ID,
	})
	return StatusOK
}

// callFunction invokes fn synchronously from within a primitive (apply,
// the higher-order case), isolated from the caller's in-flight work stack:
// it parks the current stack on vm.suspended (keeping its frames visible
// to GCRoots), drains a fresh stack to completion the same way Eval does,
// then restores the parked stack so the outer step loop resumes exactly
// where it left off.
func (vm *VM) callFunction(fn *Function, args []Value) (Value, StatusCode) {
	if len(args) != len(fn.Params) {
		return Value{}, StatusArgument
	}
	if len(fn.Body) == 0 {
		return Value{}, StatusEval
	}

	callScope := PushScope(fn.Env, len(fn.Params)+1)
	for i, param := range fn.Params {
		callScope.Define(param, args[i].Type, args[i], FlagMutable)
	}

	savedCache := vm.curCache
	vm.suspended = append(vm.suspended, vm.stack)
	vm.stack = frameStack{}

	restore := func() {
		vm.stack = vm.suspended[len(vm.suspended)-1]
		vm.suspended = vm.suspended[:len(vm.suspended)-1]
		vm.curCache = savedCache
	}

	dest := make([]Value, 1)
	vm.stack.push(frame{
		Kind:      frameApplyBody,
		Env:       callScope,
		Cache:     make([]Value, vm.Flux.MaxID+1),
		Fn:        fn,
		BodyIndex: 0,
		DestCache: dest,
		DestID:    0,
	})

	for !vm.stack.empty() {
		if code := vm.step(); code != StatusOK {
			restore()
			return Value{}, code
		}
	}

	restore()
	return dest[0], StatusOK
}

// stepApplyBody drives the lambda-body sentinel: push the next body form,
// or — once every form has run — publish the last one's value to the call
// site, free the call scope, and pop the sentinel.
func (vm *VM) stepApplyBody(top *frame) StatusCode {
	for top.BodyIndex < len(top.Fn.Body) {
		bodyID := top.Fn.Body[top.BodyIndex]
		if top.Cache[bodyID].IsUndefined() {
			vm.stack.push(frame{Kind: frameEval, Span: vm.Flux.Spans[bodyID], Env: top.Env, Cache: top.Cache})
			return StatusOK
		}
		top.BodyIndex++
	}

	lastID := top.Fn.Body[len(top.Fn.Body)-1]
	top.DestCache[top.DestID] = top.Cache[lastID]
	PopScope(top.Env)
	vm.stack.pop()
	return StatusOK
}
