package wisp

// Interpret runs the full core pipeline over an already-tokenized program:
// annotate, build the program flux, evaluate every top-level form in source
// order, and surface the first failure as a *WispError rather than a bare
// StatusCode. Tokenization itself stays outside this package so wisp never
// depends on any particular lexer implementation.
//
// An empty token stream is a valid, empty program: it evaluates to the zero
// Value with no error. cfg may be nil, in which case NewConfig()'s defaults
// are used.
func Interpret(tokens []Token, cfg *Config) (Value, *WispError) {
	if _, err := Annotate(tokens); err != nil {
		if code, ok := err.(AnnotationCode); !ok || code != AnnotationEmptyInput {
			return Value{}, &WispError{Code: StatusSyntax, Message: err.Error()}
		}
	}

	flux, ferr := BuildFlux(tokens)
	if ferr != nil {
		if werr, ok := ferr.(*WispError); ok {
			return Value{}, werr
		}
		return Value{}, &WispError{Code: StatusSyntax, Message: ferr.Error()}
	}

	vm := NewVM(flux, cfg)
	return vm.RunTopLevel()
}

// RunTopLevel is defined on *VM in vm.go; it already returns (Value,
// *WispError), matching Interpret's return shape exactly so a caller
// holding its own VM (e.g. a REPL reusing one global scope across forms)
// can call it directly instead of going through Interpret.
