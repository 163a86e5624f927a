package wisp

import "github.com/google/uuid"

// majorCollect compacts the whole heap. Rather than scavenging only the old
// generation, it treats every region as one set: all four regions are
// traced from roots and every surviving object is relocated into a single
// fresh old-generation region, in discovery order. Eden and both survivors
// are then empty, which is what lets AllocCons retry a fresh
// bump-allocation in Eden immediately afterward, and the old generation's
// bump pointer sits right after the last live object.
func (h *Heap) majorCollect(roots RootSource) {
	if h.collecting {
		return
	}
	h.collecting = true
	defer func() { h.collecting = false }()

	before := len(h.eden.objects) + len(h.surv0.objects) + len(h.surv1.objects) + len(h.old.objects)

	// The backing array is sized for the worst case (every object in every
	// region alive) so relocation never reallocates mid-trace, but the
	// region keeps the configured old-generation byte budget: a live set
	// that overflows it leaves fits() false and the next allocation
	// surfaces out-of-memory instead of silently growing the heap.
	total := h.old.capBytes + h.eden.capBytes + h.surv0.capBytes + h.surv1.capBytes
	compacted := &Region{
		kind:     RegionOld,
		objects:  make([]gcObject, 0, total/consHeaderSize),
		capBytes: h.old.capBytes,
	}
	var gray []Ref

	// A minor collection that aborted on out-of-memory leaves forwarding
	// marks behind, pointing into survivor space this pass is about to
	// empty. Clear them all so the trace below sees only the current root
	// graph; every region's originals still exist until the swap at the
	// end, so chasing into any of them is safe.
	for _, r := range []*Region{h.eden, h.surv0, h.surv1, h.old} {
		for i := range r.objects {
			r.objects[i].forwarded = false
			r.objects[i].forward = NilRef
		}
	}

	relocate := func(ref Ref) Ref {
		if ref.IsNil() {
			return ref
		}
		orig := &h.region(ref.Region).objects[ref.Index]
		if orig.forwarded {
			return orig.forward
		}
		obj := *orig
		obj.generation = 1
		obj.age = 0
		fresh := compacted.bump(obj)
		orig.forwarded = true
		orig.forward = fresh
		gray = append(gray, fresh)
		return fresh
	}

	for _, rootSlot := range h.collectRoots(roots) {
		if rootSlot.Type == ValueList {
			rootSlot.List = relocate(rootSlot.List)
		}
	}

	for len(gray) > 0 {
		ref := gray[0]
		gray = gray[1:]
		obj := &compacted.objects[ref.Index]
		for _, slot := range referenceSlots(obj) {
			if slot.Type != ValueList {
				continue
			}
			slot.List = relocate(slot.List)
		}
	}

	h.old = compacted
	h.eden.reset()
	h.surv0.reset()
	h.surv1.reset()
	h.toIsSurv1 = false

	h.Events = append(h.Events, CollectionEvent{ID: uuid.New(), Major: true, Before: before, After: len(compacted.objects), Objects: len(compacted.objects)})
}
