package list

// References:
// https://en.wikipedia.org/wiki/XOR_linked_list

// xnode is the slab record behind one XOR list node. link folds the
// references of both neighbors into a single word pair, the null
// reference standing in at the boundaries.
type xnode[E any] struct {
	link rawRef
	data E
}

// XorList is a doubly linked list spending one link per node, the XOR
// fold of its two neighbor references. Walking in either direction
// needs the reference you came from and nothing else.
//
// Three shapes keep the fold honest at the edges. An empty list has a
// null head. A one-node list parks the node in head and leaves tail
// null. From two nodes up head and tail both point at real nodes and
// every link folds its true neighbors, null included.
type XorList[E any] struct {
	noCopy noCopy
	alloc  *NodeArena[E]
	head   rawRef
	tail   rawRef
}

// NewXorList builds an empty list on na. Nothing is allocated until
// the first push.
func NewXorList[E any](na *NodeArena[E]) *XorList[E] {
	if na == nil {
		panic("[xorlist] nil node arena")
	}
	return &XorList[E]{alloc: na}
}

// IsEmpty reports whether the list holds no nodes.
func (l *XorList[E]) IsEmpty() bool {
	return l.head.isNull()
}

// Len walks the list and counts the nodes.
func (l *XorList[E]) Len() int64 {
	slab := l.alloc.xorSlab()
	count := int64(0)
	prev, curr := rawRef{}, l.head
	for !curr.isNull() {
		count++
		rec := deref(slab, curr)
		prev, curr = curr, prev.xor(rec.link)
	}
	return count
}

// PushFront links a node holding v at the front of the list.
func (l *XorList[E]) PushFront(v E) error {
	ref, rec, err := l.alloc.allocXNode(v)
	if err != nil {
		return err
	}
	l.pushFrontNode(ref, rec)
	return nil
}

// PushBack links a node holding v at the back of the list.
func (l *XorList[E]) PushBack(v E) error {
	ref, rec, err := l.alloc.allocXNode(v)
	if err != nil {
		return err
	}
	l.pushBackNode(ref, rec)
	return nil
}

// Extend pushes the values onto the back in order. On allocation
// failure the already linked prefix stays in place.
func (l *XorList[E]) Extend(vals ...E) error {
	for _, v := range vals {
		if err := l.PushBack(v); err != nil {
			return err
		}
	}
	return nil
}

func (l *XorList[E]) pushFrontNode(ref rawRef, rec *xnode[E]) {
	if l.head.isNull() {
		rec.link = rawRef{}
		l.head = ref
		return
	}
	slab := l.alloc.xorSlab()
	headRec := deref(slab, l.head)
	if l.tail.isNull() {
		// one node grows to two, both links are the other node
		rec.link = l.head
		headRec.link = ref
		l.tail = l.head
		l.head = ref
		return
	}
	rec.link = l.head
	headRec.link = headRec.link.xor(ref)
	l.head = ref
}

func (l *XorList[E]) pushBackNode(ref rawRef, rec *xnode[E]) {
	if l.head.isNull() {
		rec.link = rawRef{}
		l.head = ref
		return
	}
	slab := l.alloc.xorSlab()
	if l.tail.isNull() {
		headRec := deref(slab, l.head)
		rec.link = l.head
		headRec.link = ref
		l.tail = ref
		return
	}
	tailRec := deref(slab, l.tail)
	rec.link = l.tail
	tailRec.link = tailRec.link.xor(ref)
	l.tail = ref
}

// PopFront unlinks the first node and returns it as an owned Elem, or
// nil when the list is empty.
func (l *XorList[E]) PopFront() *Elem[E] {
	if l.head.isNull() {
		return nil
	}
	slab := l.alloc.xorSlab()
	node := l.head
	rec := deref(slab, node)
	if l.tail.isNull() {
		l.head = rawRef{}
		rec.link = rawRef{}
		return &Elem[E]{alloc: l.alloc, ref: node}
	}
	headRec := rec
	tailRec := deref(slab, l.tail)
	if headRec.link.eq(l.tail) && tailRec.link.eq(l.head) {
		// two nodes shrink to one
		l.head = l.tail
		l.tail = rawRef{}
		tailRec.link = rawRef{}
		headRec.link = rawRef{}
		return &Elem[E]{alloc: l.alloc, ref: node}
	}
	next := rec.link
	rec.link = rawRef{}
	nextRec := deref(slab, next)
	nextRec.link = nextRec.link.xor(node)
	l.head = next
	return &Elem[E]{alloc: l.alloc, ref: node}
}

// PopBack unlinks the last node and returns it as an owned Elem, or
// nil when the list is empty.
func (l *XorList[E]) PopBack() *Elem[E] {
	if l.head.isNull() {
		return nil
	}
	slab := l.alloc.xorSlab()
	if l.tail.isNull() {
		node := l.head
		rec := deref(slab, node)
		l.head = rawRef{}
		rec.link = rawRef{}
		return &Elem[E]{alloc: l.alloc, ref: node}
	}
	headRec := deref(slab, l.head)
	tailRec := deref(slab, l.tail)
	if headRec.link.eq(l.tail) && tailRec.link.eq(l.head) {
		node := l.tail
		l.tail = rawRef{}
		headRec.link = rawRef{}
		tailRec.link = rawRef{}
		return &Elem[E]{alloc: l.alloc, ref: node}
	}
	node := l.tail
	rec := tailRec
	prev := rec.link
	rec.link = rawRef{}
	prevRec := deref(slab, prev)
	prevRec.link = prevRec.link.xor(node)
	l.tail = prev
	return &Elem[E]{alloc: l.alloc, ref: node}
}

// PeekFront returns the first element in place, or nil when the list
// is empty.
func (l *XorList[E]) PeekFront() *E {
	rec := deref(l.alloc.xorSlab(), l.head)
	if rec == nil {
		return nil
	}
	return &rec.data
}

// PeekBack returns the last element in place, or nil when the list is
// empty.
func (l *XorList[E]) PeekBack() *E {
	ref := l.tail
	if ref.isNull() {
		ref = l.head
	}
	rec := deref(l.alloc.xorSlab(), ref)
	if rec == nil {
		return nil
	}
	return &rec.data
}

// ForEach visits the elements front to back. The pointers are only
// good for the duration of the call and fn must not mutate the list.
func (l *XorList[E]) ForEach(fn func(idx int64, v *E)) {
	slab := l.alloc.xorSlab()
	idx := int64(0)
	prev, curr := rawRef{}, l.head
	for !curr.isNull() {
		rec := deref(slab, curr)
		fn(idx, &rec.data)
		idx++
		prev, curr = curr, prev.xor(rec.link)
	}
}

// Iter returns a forward iterator over the elements. The list must not
// be mutated while the iterator is in use.
func (l *XorList[E]) Iter() *XorIter[E] {
	return &XorIter[E]{alloc: l.alloc, curr: l.head}
}

// Clear pops and destroys every element, running the finalizer once
// per element.
func (l *XorList[E]) Clear() {
	for {
		e := l.PopBack()
		if e == nil {
			return
		}
		e.Destroy()
	}
}

// Cursor opens a cursor sitting before the first element. One cursor
// at a time, the cursor writes through the list it came from.
func (l *XorList[E]) Cursor() *XorCursor[E] {
	return &XorCursor[E]{list: l, curr: l.head}
}

// insertBetween splices a fresh node between two neighbors, either of
// which may be null at a boundary.
func (l *XorList[E]) insertBetween(prev, next, ref rawRef, rec *xnode[E]) {
	slab := l.alloc.xorSlab()
	rec.link = prev.xor(next)
	if prevRec := deref(slab, prev); prevRec != nil {
		prevRec.link = prevRec.link.xor(next).xor(ref)
	}
	if nextRec := deref(slab, next); nextRec != nil {
		nextRec.link = nextRec.link.xor(prev).xor(ref)
	}
}

// XorIter walks a list front to back, carrying the pair of references
// the XOR fold needs.
type XorIter[E any] struct {
	alloc *NodeArena[E]
	prev  rawRef
	curr  rawRef
}

// Next returns the next element in place, or false once the walk is
// done.
func (it *XorIter[E]) Next() (*E, bool) {
	rec := deref(it.alloc.xorSlab(), it.curr)
	if rec == nil {
		return nil, false
	}
	v := &rec.data
	it.prev, it.curr = it.curr, it.prev.xor(rec.link)
	return v, true
}

// Elem owns one node popped off a list. The slot stays allocated until
// the element is taken or destroyed, an Elem dropped on the floor
// leaks its slot and the arena close report will say so.
type Elem[E any] struct {
	alloc *NodeArena[E]
	ref   rawRef
}

// Value returns the element, or nil once it has been taken or
// destroyed.
func (e *Elem[E]) Value() *E {
	rec := deref(e.alloc.xorSlab(), e.ref)
	if rec == nil {
		return nil
	}
	return &rec.data
}

// Take moves the element out and frees the node without running the
// finalizer, ownership of the value passes to the caller. The second
// take reports false.
func (e *Elem[E]) Take() (E, bool) {
	rec, ok := e.alloc.reclaimXNode(&e.ref)
	if !ok {
		var zero E
		return zero, false
	}
	return rec.data, true
}

// Destroy runs the finalizer on the element and frees the node.
// Destroying twice, or after Take, is a no-op.
func (e *Elem[E]) Destroy() {
	rec, ok := e.alloc.reclaimXNode(&e.ref)
	if ok {
		e.alloc.finalize(rec.data)
	}
}
