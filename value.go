package wisp

import (
	"fmt"
	"strconv"
)

// ValueType tags the variant a Value currently holds. Undefined is
// strictly an internal "unevaluated" marker and must never escape to a
// caller of Eval.
type ValueType int

const (
	ValueUndefined ValueType = iota
	ValueInteger
	ValueFloat
	ValueString
	ValueSymbol
	ValueBoolean
	ValueList
	ValueFunction
	ValueBuiltin
	ValuePromise
)

func (t ValueType) String() string {
	switch t {
	case ValueUndefined:
		return "undefined"
	case ValueInteger:
		return "integer"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueSymbol:
		return "symbol"
	case ValueBoolean:
		return "boolean"
	case ValueList:
		return "list"
	case ValueFunction:
		return "function"
	case ValueBuiltin:
		return "builtin"
	case ValuePromise:
		return "promise"
	default:
		return "unknown"
	}
}

// PrimitiveFunc is the shape every registered primitive has: gather
// arguments from the call span, produce a single output value, return a
// status.
type PrimitiveFunc func(vm *VM, env *Scope, call Span, out *Value) StatusCode

// Function is a user lambda: its parameter names, the span ids of its body
// forms in sequence, and the scope active when it was *defined*. A closure
// holds the scope of its definition site, never its call site.
type Function struct {
	Params [][]byte
	Body   []int
	Env    *Scope
}

// Value is the tagged value variant. It is a plain struct rather than an
// interface so that integers/floats/booleans never allocate (the GC only
// ever has to manage ValueList cons cells and whatever they hold), and a
// fresh zero Value is ValueUndefined by construction.
type Value struct {
	Type ValueType

	Int         int64
	Float       float64
	Str         string
	Bool        bool
	List        Ref
	Fn          *Function
	Builtin     PrimitiveFunc
	BuiltinName string
}

var (
	Undefined = Value{Type: ValueUndefined}
	Nil       = Value{Type: ValueList, List: NilRef}
	True      = Value{Type: ValueBoolean, Bool: true}
	False     = Value{Type: ValueBoolean, Bool: false}
)

func Integer(v int64) Value    { return Value{Type: ValueInteger, Int: v} }
func FloatVal(v float64) Value { return Value{Type: ValueFloat, Float: v} }
func StringVal(v string) Value { return Value{Type: ValueString, Str: v} }
func SymbolVal(v string) Value { return Value{Type: ValueSymbol, Str: v} }
func Bool(v bool) Value {
	if v {
		return True
	}
	return False
}
func ListVal(ref Ref) Value { return Value{Type: ValueList, List: ref} }

func (v Value) IsUndefined() bool { return v.Type == ValueUndefined }
func (v Value) IsNil() bool       { return v.Type == ValueList && v.List.IsNil() }
func (v Value) IsNumber() bool    { return v.Type == ValueInteger || v.Type == ValueFloat }

// AsFloat64 returns v's numeric value promoted to float64, for the
// any-float-operand-makes-the-result-float promotion rule.
func (v Value) AsFloat64() float64 {
	if v.Type == ValueFloat {
		return v.Float
	}
	return float64(v.Int)
}

// String renders v as text; display prints through it. There is no
// pretty-printing subsystem: a non-empty list renders as #<list>.
func (v Value) String() string {
	switch v.Type {
	case ValueUndefined:
		return "#<undefined>"
	case ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(v.Str)
	case ValueSymbol:
		return v.Str
	case ValueBoolean:
		if v.Bool {
			return "#t"
		}
		return "#f"
	case ValueList:
		if v.List.IsNil() {
			return "()"
		}
		return "#<list>"
	case ValueFunction:
		return "#<function>"
	case ValueBuiltin:
		return fmt.Sprintf("#<builtin %s>", v.BuiltinName)
	case ValuePromise:
		return "#<promise>"
	default:
		return "#<invalid>"
	}
}

// Equal implements the shallow identity used by eq? (pointer/scalar
// equality). Structural equality for equal? lives in primitives.go since
// it needs GC heap access to walk cons cells.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueInteger:
		return v.Int == o.Int
	case ValueFloat:
		return v.Float == o.Float
	case ValueString:
		return v.Str == o.Str
	case ValueSymbol:
		return v.Str == o.Str
	case ValueBoolean:
		return v.Bool == o.Bool
	case ValueList:
		return v.List == o.List
	case ValueFunction:
		return v.Fn == o.Fn
	case ValueBuiltin:
		return v.BuiltinName == o.BuiltinName
	default:
		return v.Type == o.Type
	}
}
