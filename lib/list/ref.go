package list

import (
	"github.com/Aatch/dynalist/lib/arena"
)

// rawRef is a two-word reference into a node slab, the address word
// naming the slot and the tag word carrying the generation the slot
// had when the reference was minted. The zero value is the null
// reference. Both words take part in XOR folding, so a folded pair of
// references stays reversible word by word and never hides a machine
// pointer from the runtime.
type rawRef struct {
	addr uint32
	tag  uint32
}

func mintRef(idx, gen uint32) rawRef {
	return rawRef{addr: idx, tag: gen}
}

func (r rawRef) isNull() bool {
	return r.addr == 0
}

// xor folds two references word by word. Folding with the null
// reference is the identity, folding a reference with itself yields
// null, which is what lets one link word stand for two neighbors.
func (r rawRef) xor(o rawRef) rawRef {
	return rawRef{addr: r.addr ^ o.addr, tag: r.tag ^ o.tag}
}

// eq compares the address word only. Two references to the same slot
// are the same node even if one of them has already gone stale.
func (r rawRef) eq(o rawRef) bool {
	return r.addr == o.addr
}

// deref resolves a reference against its slab, or nil when the
// reference is null, stale or out of range.
func deref[T any](ar *arena.Arena[T], r rawRef) *T {
	return ar.View(r.addr, r.tag)
}

// take is the destructive read. It moves the value out of the slot,
// releases the slot and nulls the reference in place. Taking a null or
// stale reference returns the zero value and false, the reference is
// nulled either way.
func take[T any](ar *arena.Arena[T], r *rawRef) (T, bool) {
	v, ok := ar.Reclaim(r.addr, r.tag)
	*r = rawRef{}
	return v, ok
}
