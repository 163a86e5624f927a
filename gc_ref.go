package wisp

// Ref is an index-based "pointer" into a GC region: stable identity,
// forwarded on copy, without holding a real memory address. Regions are
// contiguous slices, so (region, index) addresses an object the way a raw
// pointer into a contiguous heap block would, minus the unsafe.
type Ref struct {
	Region RegionKind
	Index  int32
}

// RegionKind names which of the four GC regions a Ref points into.
type RegionKind uint8

const (
	RegionNone RegionKind = iota
	RegionEden
	RegionSurvivor0
	RegionSurvivor1
	RegionOld
)

// NilRef is the canonical "empty list" / "no object" reference, comparable
// with ==.
var NilRef = Ref{Region: RegionNone, Index: -1}

func (r Ref) IsNil() bool { return r.Region == RegionNone }
