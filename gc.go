package wisp

import "github.com/google/uuid"

// objKind tags what a heap object actually is. Cons is the only structured,
// mutator-visible kind this dialect needs: quoted bare symbols are plain
// ValueSymbol scalars rather than a distinct heap-allocated symbol kind,
// and *Function/*Scope live on the host heap, so neither needs a reference
// extractor of its own.
type objKind uint8

const (
	objCons objKind = iota
)

// gcHeader is the fixed prefix on every heap object: generation, age, size
// (including the header), and a forwarding reference that is only
// meaningful mid-collection, while forwarded is set.
type gcHeader struct {
	generation int
	age        int
	size       int
	forward    Ref
	forwarded  bool
}

// gcObject is a cons cell: header plus the two Value payload fields,
// index-addressed in a region's contiguous slice instead of behind a
// pointer.
type gcObject struct {
	gcHeader
	kind     objKind
	car, cdr Value
}

const consHeaderSize = 48 // accounting only: bytes charged against a region per cons cell

// Region is one of Eden / Survivor0 / Survivor1 / Old generation: a
// contiguous (in the Go-slice sense) bump-allocated object store.
type Region struct {
	kind     RegionKind
	objects  []gcObject
	capBytes int
	used     int // bytes accounted for by consHeaderSize-sized objects
}

func newRegion(kind RegionKind, capBytes int) *Region {
	return &Region{
		kind:     kind,
		objects:  make([]gcObject, 0, capBytes/consHeaderSize),
		capBytes: capBytes,
	}
}

func (r *Region) fits(size int) bool { return r.used+size <= r.capBytes }

func (r *Region) bump(obj gcObject) Ref {
	idx := int32(len(r.objects))
	r.objects = append(r.objects, obj)
	r.used += obj.size
	return Ref{Region: r.kind, Index: idx}
}

func (r *Region) reset() {
	r.objects = r.objects[:0]
	r.used = 0
}

// CollectionEvent records one minor or major collection for diagnostics,
// tagged with a uuid so a collection can be correlated with the VM run
// that triggered it.
type CollectionEvent struct {
	ID      uuid.UUID
	Major   bool
	Before  int
	After   int
	Objects int
}

// Heap is the generational value heap: Eden + two survivors + a bump old
// generation, with a flag selecting which survivor is currently to-space.
type Heap struct {
	eden, surv0, surv1, old *Region
	toIsSurv1               bool
	promotionThreshold      int
	zeroFill                bool

	// collecting blocks re-entrant collections: the mutator is paused
	// while a collection runs, and nothing inside a collection may
	// allocate through AllocCons.
	collecting bool

	pinned [][]Value // temporary extra roots registered via Pin

	Events []CollectionEvent
}

// NewHeap sizes every region from cfg (Eden 2MiB, survivors 1MiB each, old
// generation 2MiB when cfg is nil).
func NewHeap(cfg *Config) *Heap {
	eden, surv, oldgen := 2<<20, 1<<20, 2<<20
	promotion := 3
	zeroFill := false
	if cfg != nil {
		eden = cfg.GetInt("gc.eden_bytes")
		surv = cfg.GetInt("gc.survivor_bytes")
		oldgen = cfg.GetInt("gc.oldgen_bytes")
		promotion = cfg.GetInt("gc.promotion_threshold")
		zeroFill = cfg.GetBool("gc.zero_fill")
	}
	return &Heap{
		eden:               newRegion(RegionEden, eden),
		surv0:              newRegion(RegionSurvivor0, surv),
		surv1:              newRegion(RegionSurvivor1, surv),
		old:                newRegion(RegionOld, oldgen),
		promotionThreshold: promotion,
		zeroFill:           zeroFill,
	}
}

func (h *Heap) fromSurvivor() *Region {
	if h.toIsSurv1 {
		return h.surv0
	}
	return h.surv1
}

func (h *Heap) toSurvivor() *Region {
	if h.toIsSurv1 {
		return h.surv1
	}
	return h.surv0
}

func (h *Heap) region(kind RegionKind) *Region {
	switch kind {
	case RegionEden:
		return h.eden
	case RegionSurvivor0:
		return h.surv0
	case RegionSurvivor1:
		return h.surv1
	case RegionOld:
		return h.old
	default:
		return nil
	}
}

func (h *Heap) Car(ref Ref) Value { return h.region(ref.Region).objects[ref.Index].car }
func (h *Heap) Cdr(ref Ref) Value { return h.region(ref.Region).objects[ref.Index].cdr }

func (h *Heap) SetCar(ref Ref, v Value) { h.region(ref.Region).objects[ref.Index].car = v }
func (h *Heap) SetCdr(ref Ref, v Value) { h.region(ref.Region).objects[ref.Index].cdr = v }

// AllocCons bumps in Eden, minor-collects on exhaustion, falls through to
// the old generation, major-collects if that's exhausted too, and finally
// reports out-of-memory. A minor collection that itself fails (a full
// to-space with no room left to promote into) is returned at once; the
// old-generation and major-collection steps are then not tried.
//
// car and cdr are pinned for the duration and the object payload is read
// back out of the pinned slots only at bump time: a collection triggered
// here relocates whatever they point at, and an object built from the
// pre-collection values would carry dangling refs.
func (h *Heap) AllocCons(car, cdr Value, roots RootSource) (Ref, StatusCode) {
	pair := []Value{car, cdr}
	h.Pin(pair)
	defer h.Unpin()

	mk := func() gcObject {
		return gcObject{gcHeader: gcHeader{size: consHeaderSize}, kind: objCons, car: pair[0], cdr: pair[1]}
	}

	if h.eden.fits(consHeaderSize) {
		return h.eden.bump(mk()), StatusOK
	}

	if code := h.minorCollect(roots); code != StatusOK {
		return NilRef, code
	}
	if h.eden.fits(consHeaderSize) {
		return h.eden.bump(mk()), StatusOK
	}

	if h.old.fits(consHeaderSize) {
		return h.old.bump(mk()), StatusOK
	}

	h.majorCollect(roots)
	if h.old.fits(consHeaderSize) {
		return h.old.bump(mk()), StatusOK
	}

	return NilRef, StatusOutOfMemory
}

// Pin registers extra Value slots (typically a primitive's freshly-gathered
// argument list) as GC roots for the duration of a call that might itself
// allocate, e.g. `(cons a b)` where `a`/`b` only otherwise live in a local
// Go slice the collector can't see. Unpin removes the most recent pin.
func (h *Heap) Pin(values []Value) { h.pinned = append(h.pinned, values) }
func (h *Heap) Unpin()             { h.pinned = h.pinned[:len(h.pinned)-1] }

// RootSource lets the Heap ask its owner (the VM) for every live pointer-
// typed slot, without the Heap needing to know about scopes or frames.
type RootSource interface {
	GCRoots() []*Value
}

// collectRoots gathers the owner's root slots plus every pinned slot,
// deduplicated by pointer identity: frames of one activation share a cache
// slice, so the same slot can be reported many times, and a collector must
// rewrite each slot exactly once — a second visit would try to relocate an
// already-relocated reference.
func (h *Heap) collectRoots(roots RootSource) []*Value {
	all := roots.GCRoots()
	for _, pinned := range h.pinned {
		for i := range pinned {
			all = append(all, &pinned[i])
		}
	}

	seen := make(map[*Value]bool, len(all))
	out := make([]*Value, 0, len(all))
	for _, slot := range all {
		if slot == nil || seen[slot] {
			continue
		}
		seen[slot] = true
		out = append(out, slot)
	}
	return out
}
