package wisp

// BindingFlags are the per-binding modifiers: const bindings reject
// redefinition and reassignment; the others are informational (global
// marks bindings defined directly in the root scope, exported and
// temporary are carried through for callers that want to filter Dump).
type BindingFlags int

const (
	FlagMutable BindingFlags = 1 << iota
	FlagConst
	FlagGlobal
	FlagExported
	FlagTemporary
)

func (f BindingFlags) Has(flag BindingFlags) bool { return f&flag != 0 }

// Binding is the symbol-table record: name, its hash, the value's
// type tag, the value itself, flags, and the intrusive chain pointer used
// for separate chaining on hash collision.
type Binding struct {
	Name     []byte
	NameHash uint32
	Type     ValueType
	Value    Value
	Flags    BindingFlags
	next     *Binding
}

// Scope is an open-addressed-by-bucket, chained-by-collision hash table:
// buckets sized to a power of two, a parent pointer forming the lexical
// chain, a nesting depth, and an owning arena used to intern names.
type Scope struct {
	buckets []*Binding
	count   int
	parent  *Scope
	depth   int
	arena   *Arena

	loadFactor float64
}

const defaultLoadFactor = 0.75

// NewScope creates a scope with initialCapacity buckets (rounded up to a
// power of two), chained to parent (nil for the global scope), allocating
// interned names from arena.
func NewScope(initialCapacity int, parent *Scope, arena *Arena) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &Scope{
		buckets:    make([]*Binding, nextPow2(initialCapacity)),
		parent:     parent,
		depth:      depth,
		arena:      arena,
		loadFactor: defaultLoadFactor,
	}
}

func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fnv1a32 hashes name bytes with 32-bit FNV-1a. The loop is a few lines;
// going through hash/fnv's hash.Hash32 interface buys nothing on this hot
// path.
func fnv1a32(name []byte) uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)
	h := offsetBasis
	for _, b := range name {
		h ^= uint32(b)
		h *= prime
	}
	return h
}

func (s *Scope) bucketIndex(hash uint32) int {
	return int(hash) & (len(s.buckets) - 1)
}

// Define fails with StatusConstViolation if name already exists *locally*
// and is const, updates a non-const local binding in place, and otherwise
// inserts at the bucket head, interning name into the scope's arena.
func (s *Scope) Define(name []byte, typ ValueType, value Value, flags BindingFlags) StatusCode {
	hash := fnv1a32(name)
	if existing := s.lookupLocalByHash(name, hash); existing != nil {
		if existing.Flags.Has(FlagConst) {
			return StatusConstViolation
		}
		existing.Type = typ
		existing.Value = value
		existing.Flags = flags
		return StatusOK
	}

	if float64(s.count+1) > s.loadFactor*float64(len(s.buckets)) {
		s.rehash(len(s.buckets) * 2)
	}

	interned := name
	if s.arena != nil {
		interned = s.arena.AllocString(name)
	}

	idx := s.bucketIndex(hash)
	b := &Binding{
		Name:     interned,
		NameHash: hash,
		Type:     typ,
		Value:    value,
		Flags:    flags,
		next:     s.buckets[idx],
	}
	s.buckets[idx] = b
	s.count++
	return StatusOK
}

// Set walks the scope chain and updates the first binding found, refusing
// const bindings. An update always reaches the binding's defining scope,
// not a local shadow: Set never creates a new local binding, only mutates
// whichever scope's Binding.Value it finds first while walking outward.
func (s *Scope) Set(name []byte, typ ValueType, value Value) StatusCode {
	hash := fnv1a32(name)
	for scope := s; scope != nil; scope = scope.parent {
		if b := scope.lookupLocalByHash(name, hash); b != nil {
			if b.Flags.Has(FlagConst) {
				return StatusConstViolation
			}
			b.Type = typ
			b.Value = value
			return StatusOK
		}
	}
	return StatusNotFound
}

// Lookup walks the chain outward from s.
func (s *Scope) Lookup(name []byte) (*Binding, bool) {
	hash := fnv1a32(name)
	for scope := s; scope != nil; scope = scope.parent {
		if b := scope.lookupLocalByHash(name, hash); b != nil {
			return b, true
		}
	}
	return nil, false
}

// LookupLocal only checks the current scope, not its ancestors.
func (s *Scope) LookupLocal(name []byte) (*Binding, bool) {
	b := s.lookupLocalByHash(name, fnv1a32(name))
	return b, b != nil
}

func (s *Scope) lookupLocalByHash(name []byte, hash uint32) *Binding {
	idx := s.bucketIndex(hash)
	for b := s.buckets[idx]; b != nil; b = b.next {
		if b.NameHash == hash && string(b.Name) == string(name) {
			return b
		}
	}
	return nil
}

// Remove unbinds name in this scope only, returning StatusNotFound if it
// isn't bound locally.
func (s *Scope) Remove(name []byte) StatusCode {
	hash := fnv1a32(name)
	idx := s.bucketIndex(hash)
	var prev *Binding
	for b := s.buckets[idx]; b != nil; b = b.next {
		if b.NameHash == hash && string(b.Name) == string(name) {
			if prev == nil {
				s.buckets[idx] = b.next
			} else {
				prev.next = b.next
			}
			s.count--
			return StatusOK
		}
		prev = b
	}
	return StatusNotFound
}

func (s *Scope) Exists(name []byte) bool {
	_, ok := s.Lookup(name)
	return ok
}

func (s *Scope) Size() int { return s.count }

// Dump returns every locally-defined binding, for debugging.
func (s *Scope) Dump() []*Binding {
	out := make([]*Binding, 0, s.count)
	for _, head := range s.buckets {
		for b := head; b != nil; b = b.next {
			out = append(out, b)
		}
	}
	return out
}

func (s *Scope) rehash(newBucketCount int) {
	fresh := make([]*Binding, nextPow2(newBucketCount))
	for _, head := range s.buckets {
		for b := head; b != nil; {
			next := b.next
			idx := int(b.NameHash) & (len(fresh) - 1)
			b.next = fresh[idx]
			fresh[idx] = b
			b = next
		}
	}
	s.buckets = fresh
}

// PushScope creates a child scope borrowing the parent's arena.
// Heavy-churn blocks may instead request a fresh arena via
// PushScopeWithArena.
func PushScope(parent *Scope, initialCapacity int) *Scope {
	return NewScope(initialCapacity, parent, parent.arena)
}

// PushScopeWithArena creates a child scope with its own arena, so PopScope
// can free it independently of the parent's.
func PushScopeWithArena(parent *Scope, initialCapacity int, arena *Arena) *Scope {
	return NewScope(initialCapacity, parent, arena)
}

// PopScope returns the parent, freeing the popped scope's arena if it owns
// one distinct from its parent's.
func PopScope(s *Scope) *Scope {
	if s.parent == nil || s.arena != s.parent.arena {
		if s.arena != nil {
			s.arena.Free()
		}
	}
	return s.parent
}
