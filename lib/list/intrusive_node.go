package list

// sentinelCount marks a list's sentinel record. A real node can never
// reach it, so the marker doubles as the "never release me" count.
const sentinelCount = ^uint32(0)

// inode is the slab record behind one intrusive list node. count is
// the number of owners, one per live handle plus one while the node is
// linked into a list. The sentinel closes the ring, so a linked node
// never has null links and a detached node has both links null.
type inode[E any] struct {
	count uint32
	next  rawRef
	prev  rawRef
	data  E
}

func (rec *inode[E]) isSentinel() bool {
	return rec.count == sentinelCount
}

func (rec *inode[E]) linked() bool {
	return !rec.next.isNull()
}

func (na *NodeArena[E]) retainINode(ref rawRef) {
	rec := deref(na.intrusiveSlab(), ref)
	if rec == nil || rec.isSentinel() {
		return
	}
	rec.count++
}

// releaseINode gives up one count share. The last share destroys the
// element through the arena finalizer and frees the slot.
func (na *NodeArena[E]) releaseINode(ref rawRef) {
	rec := deref(na.intrusiveSlab(), ref)
	if rec == nil || rec.isSentinel() {
		return
	}
	rec.count--
	if rec.count == 0 {
		r := ref
		if dead, ok := na.reclaimINode(&r); ok {
			na.finalize(dead.data)
		}
	}
}

// INode is a counted handle to one intrusive list node. Mint more
// handles with Clone, give each one back with Release. The zero INode
// is unusable, handles come from NewINode, a list or another handle.
type INode[E any] struct {
	alloc *NodeArena[E]
	ref   rawRef
}

// NewINode allocates a detached node holding v and returns the first
// handle to it.
func NewINode[E any](na *NodeArena[E], v E) (*INode[E], error) {
	if na == nil {
		panic("[ilist] nil node arena")
	}
	ref, _, err := na.allocINode(v)
	if err != nil {
		return nil, err
	}
	return &INode[E]{alloc: na, ref: ref}, nil
}

func (n *INode[E]) record() *inode[E] {
	return deref(n.alloc.intrusiveSlab(), n.ref)
}

// Value returns the element behind the handle, or nil once the handle
// has been released or the node destroyed.
func (n *INode[E]) Value() *E {
	rec := n.record()
	if rec == nil {
		return nil
	}
	return &rec.data
}

// InList reports whether the node is currently linked into a list.
func (n *INode[E]) InList() bool {
	rec := n.record()
	return rec != nil && rec.linked()
}

// RemoveFromList unlinks the node from whatever list holds it and
// gives up the list's count share. A detached node is left untouched.
func (n *INode[E]) RemoveFromList() {
	rec := n.record()
	if rec == nil || !rec.linked() {
		return
	}
	next, prev := rec.next, rec.prev
	rec.next, rec.prev = rawRef{}, rawRef{}

	slab := n.alloc.intrusiveSlab()
	prevRec := deref(slab, prev)
	nextRec := deref(slab, next)
	prevRec.next = next
	nextRec.prev = prev
	// Removing the last node links the sentinel to itself. Put the
	// empty shape back so emptiness stays a null test.
	if prevRec.isSentinel() && prev.eq(next) {
		prevRec.next, prevRec.prev = rawRef{}, rawRef{}
	}

	n.alloc.releaseINode(n.ref)
}

// InsertAfter links val immediately after this node. The receiver must
// itself be in a list, inserting relative to a detached node is a
// caller bug. val is pulled out of any list it was in first. The list
// takes its own count share of val, the caller's handle stays the
// caller's.
func (n *INode[E]) InsertAfter(val *INode[E]) {
	rec := n.record()
	if rec == nil || !rec.linked() {
		panic("[ilist] insert after a node that is not in a list")
	}
	if val.ref.eq(n.ref) {
		panic("[ilist] insert a node relative to itself")
	}
	n.alloc.mustShare(val.alloc)
	val.RemoveFromList()
	valRec := val.record()
	if valRec == nil {
		panic("[ilist] insert through a released handle")
	}
	spliceAfter(n.alloc, n.ref, val)
}

// InsertBefore links val immediately before this node. Same contract
// as InsertAfter.
func (n *INode[E]) InsertBefore(val *INode[E]) {
	rec := n.record()
	if rec == nil || !rec.linked() {
		panic("[ilist] insert before a node that is not in a list")
	}
	if val.ref.eq(n.ref) {
		panic("[ilist] insert a node relative to itself")
	}
	n.alloc.mustShare(val.alloc)
	val.RemoveFromList()
	valRec := val.record()
	if valRec == nil {
		panic("[ilist] insert through a released handle")
	}
	spliceBefore(n.alloc, n.ref, val)
}

// Next returns a fresh handle to the node after this one, or nil at
// the end of the list and on detached nodes. The sentinel is never
// handed out.
func (n *INode[E]) Next() *INode[E] {
	rec := n.record()
	if rec == nil || !rec.linked() {
		return nil
	}
	nextRec := deref(n.alloc.intrusiveSlab(), rec.next)
	if nextRec == nil || nextRec.isSentinel() {
		return nil
	}
	n.alloc.retainINode(rec.next)
	return &INode[E]{alloc: n.alloc, ref: rec.next}
}

// Prev returns a fresh handle to the node before this one, or nil at
// the start of the list and on detached nodes.
func (n *INode[E]) Prev() *INode[E] {
	rec := n.record()
	if rec == nil || !rec.linked() {
		return nil
	}
	prevRec := deref(n.alloc.intrusiveSlab(), rec.prev)
	if prevRec == nil || prevRec.isSentinel() {
		return nil
	}
	n.alloc.retainINode(rec.prev)
	return &INode[E]{alloc: n.alloc, ref: rec.prev}
}

// Clone mints another handle to the same node, or nil when this handle
// is already dead.
func (n *INode[E]) Clone() *INode[E] {
	rec := n.record()
	if rec == nil {
		return nil
	}
	n.alloc.retainINode(n.ref)
	return &INode[E]{alloc: n.alloc, ref: n.ref}
}

// Release gives up this handle's count share. The last share destroys
// the element and frees the node. Releasing twice is a no-op.
func (n *INode[E]) Release() {
	if n.ref.isNull() {
		return
	}
	n.alloc.releaseINode(n.ref)
	n.ref = rawRef{}
}

// spliceAfter links val's node between anchor and anchor's current
// next and hands the list its count share. The anchor must be linked
// and val detached.
func spliceAfter[E any](na *NodeArena[E], anchor rawRef, val *INode[E]) {
	slab := na.intrusiveSlab()
	anchorRec := deref(slab, anchor)
	valRec := deref(slab, val.ref)
	next := anchorRec.next
	nextRec := deref(slab, next)

	valRec.prev = anchor
	valRec.next = next
	nextRec.prev = val.ref
	anchorRec.next = val.ref
	na.retainINode(val.ref)
}

func spliceBefore[E any](na *NodeArena[E], anchor rawRef, val *INode[E]) {
	slab := na.intrusiveSlab()
	anchorRec := deref(slab, anchor)
	valRec := deref(slab, val.ref)
	prev := anchorRec.prev
	prevRec := deref(slab, prev)

	valRec.next = anchor
	valRec.prev = prev
	prevRec.next = val.ref
	anchorRec.prev = val.ref
	na.retainINode(val.ref)
}
