package wisp

import "github.com/google/uuid"

// minorCollect runs a copying collection over Eden plus the current
// from-space survivor: live objects are copied into the to-space survivor
// (or promoted straight to the old generation once their age crosses the
// configured threshold, with the age zeroed on promotion), roots are
// rewritten to the new locations, and both source regions are then reset
// wholesale — nothing in them survives uncopied, so there is nothing left
// to reclaim piecemeal.
//
// There is no write barrier or remembered set: every old-generation object
// is conservatively rescanned for references into from-space on each minor
// collection. Correct, O(old-gen-size) per collection.
//
// It reports StatusOutOfMemory rather than silently growing a region past
// its configured capacity: neither the promotion target nor the to-space
// survivor is ever bumped without first checking it fits.
func (h *Heap) minorCollect(roots RootSource) StatusCode {
	if h.collecting {
		return StatusOK
	}
	h.collecting = true
	defer func() { h.collecting = false }()

	from := h.fromSurvivor()
	to := h.toSurvivor()

	before := len(h.eden.objects) + len(from.objects)

	var gray []Ref // copied objects whose reference slots still need rewriting

	// copyLive evacuates one from-space object, leaving the forwarding
	// address in the original's header so a second visit (shared structure,
	// cycles) resolves to the same copy.
	copyLive := func(ref Ref) (Ref, StatusCode) {
		if ref.IsNil() || (ref.Region != RegionEden && ref.Region != from.kind) {
			return ref, StatusOK // already stable (old gen or nil), nothing to move
		}
		orig := &h.region(ref.Region).objects[ref.Index]
		if orig.forwarded {
			return orig.forward, StatusOK
		}

		obj := *orig
		obj.age++

		var fresh Ref
		switch {
		case obj.age >= h.promotionThreshold && h.old.fits(obj.size):
			obj.generation = 1
			obj.age = 0
			fresh = h.old.bump(obj)
		case to.fits(obj.size):
			fresh = to.bump(obj)
		default:
			return NilRef, StatusOutOfMemory
		}

		orig.forwarded = true
		orig.forward = fresh
		gray = append(gray, fresh)
		return fresh, StatusOK
	}

	for _, rootSlot := range h.collectRoots(roots) {
		if rootSlot.Type == ValueList {
			fresh, code := copyLive(rootSlot.List)
			if code != StatusOK {
				return code
			}
			rootSlot.List = fresh
		}
	}

	// Old-generation objects may hold the only reference into from-space;
	// with no remembered set, every one of them is a root candidate. The
	// index loop also covers objects promoted by copyLive above — their
	// slots are rewritten here or by the gray drain, whichever reaches
	// them first; both resolve through the same forwarding headers.
	for i := 0; i < len(h.old.objects); i++ {
		for _, slot := range referenceSlots(&h.old.objects[i]) {
			if slot.Type != ValueList {
				continue
			}
			fresh, code := copyLive(slot.List)
			if code != StatusOK {
				return code
			}
			slot.List = fresh
		}
	}

	for len(gray) > 0 {
		ref := gray[0]
		gray = gray[1:]

		// Bump never reallocates a region's backing array (fits bounds the
		// object count by the preallocated capacity), so this pointer stays
		// valid across the copyLive calls below.
		obj := &h.region(ref.Region).objects[ref.Index]
		for _, slot := range referenceSlots(obj) {
			if slot.Type != ValueList {
				continue
			}
			fresh, code := copyLive(slot.List)
			if code != StatusOK {
				return code
			}
			slot.List = fresh
		}
	}

	h.eden.reset()
	from.reset()
	h.toIsSurv1 = !h.toIsSurv1

	after := len(to.objects)
	h.Events = append(h.Events, CollectionEvent{ID: uuid.New(), Major: false, Before: before, After: after, Objects: after})
	return StatusOK
}
