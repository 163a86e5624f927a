package wisp

import "github.com/google/uuid"

// VM is the iterative evaluator: a flux reference, the GC heap, the global
// scope, the arena that interns the global scope's names, and the explicit
// work stack that replaces host-language recursion.
//
// The result cache ("an array of Value slots indexed by span id, sized to
// max-id + 1") is *not* a single VM-wide field: the write-once discipline
// holds per evaluation, and a span id inside a lambda body is revisited on
// every call to that lambda. A VM-wide cache would let a second call to the
// same function see the first call's cached body results before its own
// arguments have even been bound. Instead every activation — the top-level
// Eval call, and every user-function application — gets its own fresh
// cache slice, carried on the frame (frame.Cache).
type VM struct {
	Flux   *Flux
	Heap   *Heap
	Global *Scope
	Arena  *Arena
	RunID  string
	cfg    *Config

	stack frameStack

	// suspended holds the work stacks parked by callFunction while a
	// primitive drives a nested activation to completion. They stay
	// visible to GCRoots: their frames' caches are still live values.
	suspended []frameStack

	// curCache is the calling activation's cache, set by apply immediately
	// before dispatch so primitives (whose signature carries no cache
	// parameter) can still gather arguments via GatherArgs. See
	// vm_args.go's doc comment.
	curCache []Value
}

// NewVM wires together a fresh evaluator over flux, seeding the global
// scope with the primitive registry.
func NewVM(flux *Flux, cfg *Config) *VM {
	if cfg == nil {
		cfg = NewConfig()
	}
	arena := NewArena(cfg.GetInt("arena.default_capacity"))
	global := NewScope(cfg.GetInt("symtab.initial_buckets"), nil, arena)

	vm := &VM{
		Flux:   flux,
		Heap:   NewHeap(cfg),
		Global: global,
		Arena:  arena,
		RunID:  uuid.New().String(),
		cfg:    cfg,
	}
	RegisterPrimitives(global)
	return vm
}

// GCRoots implements RootSource: every value slot held in any in-flight
// activation's cache (frame.Cache, and frame.DestCache for sentinels whose
// originating frame has already been replaced), every binding reachable
// from any live scope, and every suspended special form's partially
// computed condition value. Work stacks parked by callFunction count too.
func (vm *VM) GCRoots() []*Value {
	var roots []*Value

	seen := map[*Scope]bool{}
	walkScope := func(s *Scope) {
		for s != nil && !seen[s] {
			seen[s] = true
			for _, b := range s.Dump() {
				roots = append(roots, &b.Value)
			}
			s = s.parent
		}
	}
	walkStack := func(fs *frameStack) {
		for i := range fs.frames {
			f := &fs.frames[i]
			walkScope(f.Env)
			roots = append(roots, &f.CondVal)
			for j := range f.Cache {
				roots = append(roots, &f.Cache[j])
			}
			for j := range f.DestCache {
				roots = append(roots, &f.DestCache[j])
			}
		}
	}

	walkScope(vm.Global)
	walkStack(&vm.stack)
	for i := range vm.suspended {
		walkStack(&vm.suspended[i])
	}

	return roots
}

// RunTopLevel evaluates every top-level form in source order, returning the
// last form's value or the first error encountered.
func (vm *VM) RunTopLevel() (Value, *WispError) {
	var last Value
	for _, span := range vm.Flux.TopLevelSpans() {
		v, code := vm.Eval(span, vm.Global)
		if code != StatusOK {
			return Value{}, vm.errorFor(code, span)
		}
		last = v
	}
	return last, nil
}

// Eval drives the work stack to completion for a single span — one full
// reduction per call. It allocates the fresh per-activation cache described
// on the VM type.
func (vm *VM) Eval(span Span, env *Scope) (Value, StatusCode) {
	cache := make([]Value, vm.Flux.MaxID+1)
	vm.stack.push(frame{Kind: frameEval, Span: span, Env: env, Cache: cache})

	for !vm.stack.empty() {
		if code := vm.step(); code != StatusOK {
			vm.stack.frames = vm.stack.frames[:0]
			return Value{}, code
		}
	}
	return cache[span.ID], StatusOK
}

func (vm *VM) errorFor(code StatusCode, span Span) *WispError {
	t := vm.Flux.AtomToken(span)
	return &WispError{Code: code, Message: statusMessage(code), Token: &t}
}

func statusMessage(code StatusCode) string {
	switch code {
	case StatusUnbound:
		return "unbound symbol"
	case StatusType:
		return "type error"
	case StatusArgument:
		return "argument error"
	case StatusConstViolation:
		return "const violation"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusSyntax:
		return "syntax error"
	case StatusNotFound:
		return "not found"
	default:
		return "eval error"
	}
}

// step performs exactly one step of the frame state machine.
func (vm *VM) step() StatusCode {
	top := vm.stack.top()

	switch top.Kind {
	case frameApplyBody:
		return vm.stepApplyBody(top)
	case frameIf:
		return vm.stepIf(top)
	case frameDefine:
		return vm.stepDefine(top)
	default:
		return vm.stepEval(top)
	}
}

func (vm *VM) stepEval(top *frame) StatusCode {
	cur := top.Span
	env := top.Env
	cache := top.Cache

	if !cache[cur.ID].IsUndefined() {
		vm.stack.pop()
		return StatusOK
	}

	if vm.Flux.IsEmptyParens(cur) {
		cache[cur.ID] = Nil
		vm.stack.pop()
		return StatusOK
	}

	if vm.Flux.IsAtom(cur) {
		tok := vm.Flux.AtomToken(cur)
		if tok.Kind == TokenQuote || tok.Kind == TokenQuasiquote {
			v, code := vm.quotedAtomPrefix(cur)
			if code != StatusOK {
				return code
			}
			cache[cur.ID] = v
			vm.stack.pop()
			return StatusOK
		}
		v, code := vm.evalAtomToken(tok, env)
		if code != StatusOK {
			return code
		}
		cache[cur.ID] = v
		vm.stack.pop()
		return StatusOK
	}

	if kind, ok := vm.specialFormKind(cur); ok {
		return vm.beginSpecialForm(cur, env, cache, kind)
	}

	head := vm.Flux.Tokens[cur.StartIdx]
	if head.Kind == TokenQuote || head.Kind == TokenQuasiquote {
		return vm.beginQuotePrefix(cur, env, cache, head.Kind == TokenQuasiquote)
	}

	for _, childID := range vm.Flux.EagerChildren(cur) {
		if cache[childID].IsUndefined() {
			vm.stack.push(frame{Kind: frameEval, Span: vm.Flux.Spans[childID], Env: env, Cache: cache})
			return StatusOK
		}
	}

	return vm.apply(cur, env, cache)
}
