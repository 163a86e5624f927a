package wisp

// referenceSlots returns pointers to every Value field of obj that may hold
// a traceable Ref, dispatched per object kind. Each pointer field is listed
// exactly once: a missed field is a use-after-free, a duplicate is merely
// redundant work. Cons is the only kind this dialect heap-allocates (see
// gc.go's doc comment on objKind); adding a second structured kind later
// means adding one case here and nowhere else.
func referenceSlots(obj *gcObject) []*Value {
	switch obj.kind {
	case objCons:
		return []*Value{&obj.car, &obj.cdr}
	default:
		return nil
	}
}

// ReachableFrom walks the heap breadth-first from a single root ref,
// returning every Ref reachable from it (itself included). It exists for
// diagnostics and tests rather than the collectors, which do their own
// walk using the forwarding fields in each object's header.
func (h *Heap) ReachableFrom(root Ref) []Ref {
	if root.IsNil() {
		return nil
	}
	seen := map[Ref]bool{root: true}
	queue := []Ref{root}
	var out []Ref
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		out = append(out, ref)

		obj := &h.region(ref.Region).objects[ref.Index]
		for _, slot := range referenceSlots(obj) {
			if slot.Type != ValueList || slot.List.IsNil() || seen[slot.List] {
				continue
			}
			seen[slot.List] = true
			queue = append(queue, slot.List)
		}
	}
	return out
}

// LiveObjects returns the total object count resident across all four
// regions, for diagnostics.
func (h *Heap) LiveObjects() int {
	return len(h.eden.objects) + len(h.surv0.objects) + len(h.surv1.objects) + len(h.old.objects)
}

// BytesUsed returns the total accounted byte usage across all four regions,
// for the CLI driver's out-of-memory diagnostic (cmd/wisp formats this with
// humanize.Bytes).
func (h *Heap) BytesUsed() uint64 {
	return uint64(h.eden.used + h.surv0.used + h.surv1.used + h.old.used)
}
