package list

// IList is an intrusive doubly linked list. The list allocates one
// sentinel record and the live nodes close a ring through it, so
// every linked node has two non-null links and membership costs one
// count share on top of whatever handles are outstanding. Nodes move
// between lists of the same arena without reallocating.
//
// The erasure to the element type happens once, at the call that hands
// a concrete value to NewINode or PushFrontValue. Everything after
// that moves node references around.
type IList[E any] struct {
	noCopy noCopy
	alloc  *NodeArena[E]
	sent   rawRef
}

// NewIList allocates the sentinel for a fresh empty list.
func NewIList[E any](na *NodeArena[E]) (*IList[E], error) {
	if na == nil {
		panic("[ilist] nil node arena")
	}
	ref, _, err := na.allocSentinel()
	if err != nil {
		return nil, err
	}
	return &IList[E]{alloc: na, sent: ref}, nil
}

func (l *IList[E]) sentinel() *inode[E] {
	return deref(l.alloc.intrusiveSlab(), l.sent)
}

func (l *IList[E]) mustLive() *inode[E] {
	rec := l.sentinel()
	if rec == nil {
		panic("[ilist] use of a destroyed list")
	}
	return rec
}

// IsEmpty reports whether the list holds no nodes.
func (l *IList[E]) IsEmpty() bool {
	rec := l.sentinel()
	return rec == nil || rec.next.isNull()
}

// Len walks the ring and counts the nodes.
func (l *IList[E]) Len() int64 {
	rec := l.sentinel()
	if rec == nil {
		return 0
	}
	slab := l.alloc.intrusiveSlab()
	count := int64(0)
	for ref := rec.next; !ref.isNull() && !ref.eq(l.sent); {
		count++
		ref = deref(slab, ref).next
	}
	return count
}

// PushFront moves val to the front of the list, pulling it out of any
// list it was in first. The caller's handle stays valid.
func (l *IList[E]) PushFront(val *INode[E]) {
	sentRec := l.mustLive()
	l.alloc.mustShare(val.alloc)
	val.RemoveFromList()
	if sentRec.next.isNull() {
		l.linkFirst(sentRec, val)
		return
	}
	valRec := val.record()
	if valRec == nil {
		panic("[ilist] push through a released handle")
	}
	spliceAfter(l.alloc, l.sent, val)
}

// PushBack moves val to the back of the list, pulling it out of any
// list it was in first. The caller's handle stays valid.
func (l *IList[E]) PushBack(val *INode[E]) {
	sentRec := l.mustLive()
	l.alloc.mustShare(val.alloc)
	val.RemoveFromList()
	if sentRec.next.isNull() {
		l.linkFirst(sentRec, val)
		return
	}
	valRec := val.record()
	if valRec == nil {
		panic("[ilist] push through a released handle")
	}
	spliceBefore(l.alloc, l.sent, val)
}

// linkFirst establishes the two-element ring between the sentinel and
// the first node.
func (l *IList[E]) linkFirst(sentRec *inode[E], val *INode[E]) {
	valRec := val.record()
	if valRec == nil {
		panic("[ilist] push through a released handle")
	}
	valRec.next, valRec.prev = l.sent, l.sent
	sentRec.next, sentRec.prev = val.ref, val.ref
	l.alloc.retainINode(val.ref)
}

// PushFrontValue allocates a node for v and links it at the front,
// returning the handle.
func (l *IList[E]) PushFrontValue(v E) (*INode[E], error) {
	n, err := NewINode(l.alloc, v)
	if err != nil {
		return nil, err
	}
	l.PushFront(n)
	return n, nil
}

// PushBackValue allocates a node for v and links it at the back,
// returning the handle.
func (l *IList[E]) PushBackValue(v E) (*INode[E], error) {
	n, err := NewINode(l.alloc, v)
	if err != nil {
		return nil, err
	}
	l.PushBack(n)
	return n, nil
}

// Front returns a fresh handle to the first node, or nil when the list
// is empty.
func (l *IList[E]) Front() *INode[E] {
	rec := l.mustLive()
	if rec.next.isNull() {
		return nil
	}
	l.alloc.retainINode(rec.next)
	return &INode[E]{alloc: l.alloc, ref: rec.next}
}

// Back returns a fresh handle to the last node, or nil when the list
// is empty.
func (l *IList[E]) Back() *INode[E] {
	rec := l.mustLive()
	if rec.prev.isNull() {
		return nil
	}
	l.alloc.retainINode(rec.prev)
	return &INode[E]{alloc: l.alloc, ref: rec.prev}
}

// ForEach visits the elements in list order without minting handles.
// The element pointers are only good for the duration of the call and
// fn must not mutate the list.
func (l *IList[E]) ForEach(fn func(idx int64, v *E)) {
	rec := l.sentinel()
	if rec == nil {
		return
	}
	slab := l.alloc.intrusiveSlab()
	idx := int64(0)
	for ref := rec.next; !ref.isNull() && !ref.eq(l.sent); {
		cur := deref(slab, ref)
		fn(idx, &cur.data)
		idx++
		ref = cur.next
	}
}

// Iter returns an iterator yielding one fresh handle per node. Every
// handle the iterator returns belongs to the caller and must be
// released.
func (l *IList[E]) Iter() *IListIter[E] {
	l.mustLive()
	return &IListIter[E]{curr: l.Front()}
}

// Destroy detaches every node, dropping the list's count share of
// each, and frees the sentinel. Nodes kept alive by outstanding
// handles survive as detached nodes, the rest are destroyed. The list
// must not be used afterwards, Destroy itself is idempotent.
func (l *IList[E]) Destroy() {
	sentRec := l.sentinel()
	if sentRec == nil {
		return
	}
	slab := l.alloc.intrusiveSlab()
	node := sentRec.next
	for !node.isNull() && !node.eq(l.sent) {
		rec := deref(slab, node)
		next := rec.next
		rec.next, rec.prev = rawRef{}, rawRef{}
		l.alloc.releaseINode(node)
		node = next
	}
	sent := l.sent
	l.alloc.reclaimINode(&sent)
	l.sent = rawRef{}
}

// IListIter walks a list front to back, handing out one counted handle
// per node.
type IListIter[E any] struct {
	curr *INode[E]
}

// Next returns the next handle, or nil once the list is exhausted.
func (it *IListIter[E]) Next() *INode[E] {
	n := it.curr
	if n != nil {
		it.curr = n.Next()
	}
	return n
}
