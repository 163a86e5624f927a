package wisp

import (
	"fmt"
	"math"
	"os"
)

// RegisterPrimitives installs the primitive registry into global: every
// name bound with the builtin type and the const flag. Dispatch is a plain
// Go map lookup rather than a hand-rolled perfect hash; any collision-free
// mapping over this closed name set works, and symtab.go's FNV-1a chained
// table already does the one lookup that matters once a primitive is bound
// into the global scope.
func RegisterPrimitives(global *Scope) {
	for name, fn := range primitiveTable {
		global.Define([]byte(name), ValueBuiltin, Value{
			Type:        ValueBuiltin,
			Builtin:     fn,
			BuiltinName: name,
		}, FlagConst|FlagGlobal)
	}
}

var primitiveTable = map[string]PrimitiveFunc{
	"+":   primAdd,
	"-":   primSub,
	"*":   primMul,
	"/":   primDiv,
	"mod": primMod,
	"=":   primNumEq,
	"<":   primLt,
	">":   primGt,
	"<=":  primLe,
	">=":  primGe,

	"cons": primCons,
	"car":  primCar,
	"cdr":  primCdr,
	"list": primList,

	"atom?":      primAtomP,
	"pair?":      primPairP,
	"list?":      primListP,
	"null?":      primNullP,
	"number?":    primNumberP,
	"string?":    primStringP,
	"symbol?":    primSymbolP,
	"procedure?": primProcedureP,
	"eq?":        primEqP,
	"equal?":     primEqualP,

	"display": primDisplay,
	"newline": primNewline,

	"apply": primApply,
	"eval":  primEval,
	"exit":  primExit,
}

// --- numeric primitives ---

func primAdd(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) == 0 {
		*out = Integer(0)
		return StatusOK
	}
	acc := args[0]
	if !acc.IsNumber() {
		return StatusType
	}
	for _, a := range args[1:] {
		if !a.IsNumber() {
			return StatusType
		}
		acc = numAdd(acc, a)
	}
	*out = acc
	return StatusOK
}

func primSub(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) == 0 {
		*out = Integer(0)
		return StatusOK
	}
	if !args[0].IsNumber() {
		return StatusType
	}
	if len(args) == 1 {
		*out = numNeg(args[0])
		return StatusOK
	}
	acc := args[0]
	for _, a := range args[1:] {
		if !a.IsNumber() {
			return StatusType
		}
		acc = numSub(acc, a)
	}
	*out = acc
	return StatusOK
}

func primMul(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) == 0 {
		*out = Integer(1)
		return StatusOK
	}
	acc := args[0]
	if !acc.IsNumber() {
		return StatusType
	}
	for _, a := range args[1:] {
		if !a.IsNumber() {
			return StatusType
		}
		acc = numMul(acc, a)
	}
	*out = acc
	return StatusOK
}

// primDiv always returns a float result, integer operands included, so
// (/ 10 4) keeps its mathematical meaning.
func primDiv(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) == 0 {
		return StatusArgument
	}
	if !args[0].IsNumber() {
		return StatusType
	}
	if len(args) == 1 {
		if args[0].AsFloat64() == 0 {
			return StatusEval
		}
		*out = FloatVal(1 / args[0].AsFloat64())
		return StatusOK
	}
	acc := args[0].AsFloat64()
	for _, a := range args[1:] {
		if !a.IsNumber() {
			return StatusType
		}
		if a.AsFloat64() == 0 {
			return StatusEval
		}
		acc /= a.AsFloat64()
	}
	*out = FloatVal(acc)
	return StatusOK
}

func primMod(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 2 {
		return StatusArgument
	}
	a, b := args[0], args[1]
	if !a.IsNumber() || !b.IsNumber() {
		return StatusType
	}
	if b.AsFloat64() == 0 {
		return StatusEval
	}
	if a.Type == ValueInteger && b.Type == ValueInteger {
		*out = Integer(a.Int % b.Int)
		return StatusOK
	}
	*out = FloatVal(math.Mod(a.AsFloat64(), b.AsFloat64()))
	return StatusOK
}

func numAdd(a, b Value) Value {
	if a.Type == ValueFloat || b.Type == ValueFloat {
		return FloatVal(a.AsFloat64() + b.AsFloat64())
	}
	return Integer(a.Int + b.Int)
}

func numSub(a, b Value) Value {
	if a.Type == ValueFloat || b.Type == ValueFloat {
		return FloatVal(a.AsFloat64() - b.AsFloat64())
	}
	return Integer(a.Int - b.Int)
}

func numMul(a, b Value) Value {
	if a.Type == ValueFloat || b.Type == ValueFloat {
		return FloatVal(a.AsFloat64() * b.AsFloat64())
	}
	return Integer(a.Int * b.Int)
}

func numNeg(a Value) Value {
	if a.Type == ValueFloat {
		return FloatVal(-a.Float)
	}
	return Integer(-a.Int)
}

// comparison chain: all consecutive pairs must satisfy relation, per the
// usual Lisp `(< a b c)` reading; fewer than two arguments is trivially
// true.
func compareChain(vm *VM, env *Scope, call Span, relation func(a, b float64) bool) (Value, StatusCode) {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return Value{}, code
	}
	for _, a := range args {
		if !a.IsNumber() {
			return Value{}, StatusType
		}
	}
	for i := 1; i < len(args); i++ {
		if !relation(args[i-1].AsFloat64(), args[i].AsFloat64()) {
			return False, StatusOK
		}
	}
	return True, StatusOK
}

func primNumEq(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	v, code := compareChain(vm, env, call, func(a, b float64) bool { return a == b })
	*out = v
	return code
}
func primLt(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	v, code := compareChain(vm, env, call, func(a, b float64) bool { return a < b })
	*out = v
	return code
}
func primGt(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	v, code := compareChain(vm, env, call, func(a, b float64) bool { return a > b })
	*out = v
	return code
}
func primLe(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	v, code := compareChain(vm, env, call, func(a, b float64) bool { return a <= b })
	*out = v
	return code
}
func primGe(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	v, code := compareChain(vm, env, call, func(a, b float64) bool { return a >= b })
	*out = v
	return code
}

// --- list primitives ---

func primCons(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 2 {
		return StatusArgument
	}
	ref, code := vm.Heap.AllocCons(args[0], args[1], vm)
	if code != StatusOK {
		return code
	}
	*out = ListVal(ref)
	return StatusOK
}

func primCar(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 || args[0].Type != ValueList || args[0].List.IsNil() {
		return StatusType
	}
	*out = vm.Heap.Car(args[0].List)
	return StatusOK
}

func primCdr(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 || args[0].Type != ValueList || args[0].List.IsNil() {
		return StatusType
	}
	*out = vm.Heap.Cdr(args[0].List)
	return StatusOK
}

func primList(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	v, code := sliceToList(vm, args)
	if code != StatusOK {
		return code
	}
	*out = v
	return StatusOK
}

// sliceToList builds a proper-list cons chain right-to-left. The source
// values and the growing accumulator live in one pinned scratch slice:
// they're otherwise only reachable from a Go stack frame the collector's
// root walk can't see, and each AllocCons below may collect.
func sliceToList(vm *VM, vals []Value) (Value, StatusCode) {
	scratch := make([]Value, len(vals)+1)
	copy(scratch, vals)
	acc := &scratch[len(vals)]
	*acc = Nil

	vm.Heap.Pin(scratch)
	defer vm.Heap.Unpin()

	for i := len(vals) - 1; i >= 0; i-- {
		ref, code := vm.Heap.AllocCons(scratch[i], *acc, vm)
		if code != StatusOK {
			return Value{}, code
		}
		*acc = ListVal(ref)
	}
	return *acc, StatusOK
}

// listToSlice walks a proper-list cons chain into a Go slice, for apply's
// argument-list argument.
func listToSlice(vm *VM, v Value) ([]Value, StatusCode) {
	if v.Type != ValueList {
		return nil, StatusType
	}
	var out []Value
	cur := v
	for !cur.List.IsNil() {
		out = append(out, vm.Heap.Car(cur.List))
		cur = vm.Heap.Cdr(cur.List)
		if cur.Type != ValueList {
			return nil, StatusType
		}
	}
	return out, StatusOK
}

// --- predicates ---

func primAtomP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(!(args[0].Type == ValueList && !args[0].List.IsNil()))
	return StatusOK
}

func primPairP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueList && !args[0].List.IsNil())
	return StatusOK
}

func primListP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueList)
	return StatusOK
}

func primNullP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueList && args[0].List.IsNil())
	return StatusOK
}

func primNumberP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].IsNumber())
	return StatusOK
}

func primStringP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueString)
	return StatusOK
}

func primSymbolP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueSymbol)
	return StatusOK
}

func primProcedureP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	*out = Bool(args[0].Type == ValueFunction || args[0].Type == ValueBuiltin)
	return StatusOK
}

func primEqP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 2 {
		return StatusArgument
	}
	*out = Bool(args[0].Equal(args[1]))
	return StatusOK
}

func primEqualP(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 2 {
		return StatusArgument
	}
	*out = Bool(equalValues(vm, args[0], args[1]))
	return StatusOK
}

// equalValues implements structural equality: cons cells compare
// recursively by walking the heap, everything else falls back to the
// scalar identity Equal already provides.
func equalValues(vm *VM, a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type != ValueList {
		return a.Equal(b)
	}
	if a.List.IsNil() || b.List.IsNil() {
		return a.List.IsNil() == b.List.IsNil()
	}
	return equalValues(vm, vm.Heap.Car(a.List), vm.Heap.Car(b.List)) &&
		equalValues(vm, vm.Heap.Cdr(a.List), vm.Heap.Cdr(b.List))
}

// --- I/O primitives ---

func primDisplay(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	fmt.Fprint(os.Stdout, displayText(args[0]))
	*out = args[0]
	return StatusOK
}

// displayText renders a value the way `display` presents it to a human,
// distinct from Value.String()'s quoted/debug rendering (strings print
// without their surrounding quotes, matching every Lisp's `display`).
func displayText(v Value) string {
	if v.Type == ValueString {
		return v.Str
	}
	return v.String()
}

// primNewline returns the empty list, not the undefined sentinel: a cached
// undefined slot reads as "not yet computed" and would re-drive this span.
func primNewline(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	if _, code := vm.GatherArgs(call, env); code != StatusOK {
		return code
	}
	fmt.Fprint(os.Stdout, "\n")
	*out = Nil
	return StatusOK
}

// --- control primitives ---

// primApply invokes a user function with a runtime-built argument list —
// the one place outside vm_apply.go where a function is called with
// arguments that didn't come from a call span. Builtins can't be the
// target: a builtin reads its arguments straight out of a call span's
// tokens, and apply has no call span to hand a forwarded builtin, only a
// Go slice.
func primApply(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 2 {
		return StatusArgument
	}
	fn, listArg := args[0], args[1]
	if fn.Type != ValueFunction {
		return StatusType
	}
	callArgs, code := listToSlice(vm, listArg)
	if code != StatusOK {
		return code
	}
	v, code := vm.callFunction(fn.Fn, callArgs)
	if code != StatusOK {
		return code
	}
	*out = v
	return StatusOK
}

// primEval gives `eval` the only meaning the Value model supports without
// a reader from values back to spans: a symbol evaluates to a variable
// lookup (its ordinary meaning as code), and every other already-
// self-evaluating Value type is returned unchanged. A compound quoted list
// can't be replayed as code since quoting a parenthesized form has no
// dedicated "unevaluated S-expression" Value tag — see quoteSpanValue's
// doc comment.
func primEval(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	if len(args) != 1 {
		return StatusArgument
	}
	if args[0].Type == ValueSymbol {
		b, ok := env.Lookup([]byte(args[0].Str))
		if !ok {
			return StatusUnbound
		}
		*out = b.Value
		return StatusOK
	}
	*out = args[0]
	return StatusOK
}

// primExit terminates the process: an optional integer status code,
// defaulting to 0.
func primExit(vm *VM, env *Scope, call Span, out *Value) StatusCode {
	args, code := vm.GatherArgs(call, env)
	if code != StatusOK {
		return code
	}
	status := 0
	if len(args) == 1 {
		if args[0].Type != ValueInteger {
			return StatusType
		}
		status = int(args[0].Int)
	} else if len(args) > 1 {
		return StatusArgument
	}
	os.Exit(status)
	return StatusOK
}
