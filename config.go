package wisp

import "fmt"

// Config is a dotted-path bag of tunables. The GC's generation sizes,
// promotion threshold and zero-fill flag, the global scope's initial bucket
// count and the arena's default capacity are read from here. The
// symtab.load_factor and eval.*_literal_max_bytes entries are stored but
// not read: the symbol table and the evaluator use their own constants.
type Config map[string]*cfgVal

// NewConfig creates a configuration primed with every tunable's default:
// generation sizes and promotion threshold for the GC, the symbol table's
// initial bucket count and load factor, the evaluator's numeric-literal
// caps, and the arena's default capacity.
func NewConfig() *Config {
	m := make(Config)

	m.SetInt("gc.eden_bytes", 2<<20)       // 2 MiB
	m.SetInt("gc.survivor_bytes", 1<<20)   // 1 MiB each
	m.SetInt("gc.oldgen_bytes", 2<<20)     // 2 MiB
	m.SetInt("gc.promotion_threshold", 3)
	m.SetBool("gc.zero_fill", false)

	m.SetInt("symtab.initial_buckets", 16)
	m.SetFloat("symtab.load_factor", 0.75)

	m.SetInt("eval.int_literal_max_bytes", 31)
	m.SetInt("eval.float_literal_max_bytes", 63)

	m.SetInt("arena.default_capacity", 64<<10) // 64 KiB

	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_Float
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_Float:     "float",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asFloat  float64
	asString string
}

// assignType records vt as v's kind, panicking if v already holds another
// kind. The Set* methods always store a fresh cfgVal, so a path can be
// overwritten with a value of a different kind.
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetFloat(path string, v float64) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Float)
	(*c)[path].asFloat = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetFloat(path string) float64 {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Float)
		return val.asFloat
	}
	panic(fmt.Sprintf("float setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}
