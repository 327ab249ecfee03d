package list

// XorCursor sits between two elements of a XOR list, carrying the
// (prev, curr) reference pair the fold needs to move either way. A
// null prev means the cursor is at the start, a null curr means the
// end, on an empty list it is both at once. Inserts, removes, splices
// and splits all happen at the seam the cursor marks.
//
// The cursor writes through its list. At most one cursor should be
// live per list at a time and the list must not be mutated behind it.
type XorCursor[E any] struct {
	list *XorList[E]
	prev rawRef
	curr rawRef
}

// AtStart reports whether no element precedes the cursor.
func (c *XorCursor[E]) AtStart() bool {
	return c.prev.isNull()
}

// AtEnd reports whether no element follows the cursor.
func (c *XorCursor[E]) AtEnd() bool {
	return c.curr.isNull()
}

// Next steps over the element after the cursor and returns it, or
// false at the end. A failed step leaves the cursor where it was.
func (c *XorCursor[E]) Next() (*E, bool) {
	rec := deref(c.list.alloc.xorSlab(), c.curr)
	if rec == nil {
		return nil, false
	}
	v := &rec.data
	c.prev, c.curr = c.curr, c.prev.xor(rec.link)
	return v, true
}

// Prev steps back over the element before the cursor and returns it,
// or false at the start. A failed step leaves the cursor where it was.
func (c *XorCursor[E]) Prev() (*E, bool) {
	rec := deref(c.list.alloc.xorSlab(), c.prev)
	if rec == nil {
		return nil, false
	}
	v := &rec.data
	c.curr, c.prev = c.prev, c.curr.xor(rec.link)
	return v, true
}

// Peek returns the element after the cursor without moving, or nil at
// the end.
func (c *XorCursor[E]) Peek() *E {
	rec := deref(c.list.alloc.xorSlab(), c.curr)
	if rec == nil {
		return nil
	}
	return &rec.data
}

// SeekToStart rewinds the cursor to before the first element.
func (c *XorCursor[E]) SeekToStart() {
	c.prev = rawRef{}
	c.curr = c.list.head
}

// SeekToEnd forwards the cursor to after the last element.
func (c *XorCursor[E]) SeekToEnd() {
	l := c.list
	c.curr = rawRef{}
	if !l.tail.isNull() {
		c.prev = l.tail
	} else {
		c.prev = l.head
	}
}

// SkipForwards advances up to n steps and reports how many it took.
func (c *XorCursor[E]) SkipForwards(n int) int {
	moved := 0
	for ; moved < n; moved++ {
		if _, ok := c.Next(); !ok {
			break
		}
	}
	return moved
}

// SkipBackwards steps back up to n steps and reports how many it took.
func (c *XorCursor[E]) SkipBackwards(n int) int {
	moved := 0
	for ; moved < n; moved++ {
		if _, ok := c.Prev(); !ok {
			break
		}
	}
	return moved
}

// InsertBefore puts v into the list at the cursor and leaves the
// cursor after it.
func (c *XorCursor[E]) InsertBefore(v E) error {
	l := c.list
	switch {
	case c.curr.eq(l.head):
		if err := l.PushFront(v); err != nil {
			return err
		}
		c.prev = l.head
	case c.curr.isNull():
		if err := l.PushBack(v); err != nil {
			return err
		}
		c.prev = l.tail
	default:
		ref, rec, err := l.alloc.allocXNode(v)
		if err != nil {
			return err
		}
		l.insertBetween(c.prev, c.curr, ref, rec)
		c.prev = ref
	}
	return nil
}

// InsertAfter puts v into the list at the cursor and leaves the cursor
// before it.
func (c *XorCursor[E]) InsertAfter(v E) error {
	l := c.list
	switch {
	case c.curr.eq(l.head):
		if err := l.PushFront(v); err != nil {
			return err
		}
		c.curr = l.head
	case c.curr.isNull():
		if err := l.PushBack(v); err != nil {
			return err
		}
		c.curr = l.tail
	default:
		ref, rec, err := l.alloc.allocXNode(v)
		if err != nil {
			return err
		}
		l.insertBetween(c.prev, c.curr, ref, rec)
		c.curr = ref
	}
	return nil
}

// Remove unlinks the element after the cursor and returns it as an
// owned Elem, or nil at the end. The cursor stays put, the element
// that followed the removed one follows the cursor now.
func (c *XorCursor[E]) Remove() *Elem[E] {
	l := c.list
	if c.curr.isNull() {
		return nil
	}
	if c.curr.eq(l.head) {
		e := l.PopFront()
		c.curr = l.head
		return e
	}
	if c.curr.eq(l.tail) {
		c.curr = rawRef{}
		return l.PopBack()
	}

	// interior removal, both neighbors fold the far side in
	//
	//    A   B   C   D
	//      ^   x   ^
	//   B gets D folded where C was, D gets B
	slab := l.alloc.xorSlab()
	node := c.curr
	rec := deref(slab, node)
	next := c.prev.xor(rec.link)
	rec.link = rawRef{}
	prevRec := deref(slab, c.prev)
	nextRec := deref(slab, next)
	prevRec.link = prevRec.link.xor(node).xor(next)
	nextRec.link = nextRec.link.xor(node).xor(c.prev)
	c.curr = next
	return &Elem[E]{alloc: l.alloc, ref: node}
}

// Splice moves every element of other into the list at the cursor,
// leaving other empty and the cursor before the first moved element.
// Both lists must live on the same arena.
func (c *XorCursor[E]) Splice(other *XorList[E]) {
	l := c.list
	if other == l {
		panic("[xorlist] splice a list into itself")
	}
	l.alloc.mustShare(other.alloc)
	if other.head.isNull() {
		return
	}
	slab := l.alloc.xorSlab()

	if other.tail.isNull() {
		// single node donor, a plain insert plus boundary fixups
		ref := other.head
		rec := deref(slab, ref)
		other.head = rawRef{}
		l.insertBetween(c.prev, c.curr, ref, rec)
		if c.prev.isNull() {
			l.head = ref
			if l.tail.isNull() && !c.curr.isNull() {
				l.tail = c.curr
			}
		} else if c.curr.isNull() {
			l.tail = ref
		}
		c.curr = ref
		return
	}

	head, tail := other.head, other.tail
	other.head, other.tail = rawRef{}, rawRef{}

	if l.head.isNull() {
		l.head, l.tail = head, tail
		c.curr = head
		return
	}

	headRec := deref(slab, head)
	tailRec := deref(slab, tail)
	headRec.link = headRec.link.xor(c.prev)
	tailRec.link = tailRec.link.xor(c.curr)
	if prevRec := deref(slab, c.prev); prevRec != nil {
		prevRec.link = prevRec.link.xor(c.curr).xor(head)
	} else {
		l.head = head
	}
	if currRec := deref(slab, c.curr); currRec != nil {
		currRec.link = currRec.link.xor(c.prev).xor(tail)
	} else {
		l.tail = tail
	}
	// splicing in front of the lone node of a one-node list leaves
	// tail unset, the old head is the new tail
	if l.tail.isNull() {
		l.tail = c.curr
	}
	c.curr = head
}

// Split cuts the list at the cursor. Everything after the cursor moves
// to the returned list, the cursor ends up at the end of what remains.
// Only the head and tail fields and the two links at the cut change,
// the interior fold is relative and survives as it is.
func (c *XorCursor[E]) Split() *XorList[E] {
	l := c.list
	out := NewXorList[E](l.alloc)
	if c.curr.isNull() {
		return out
	}
	if c.prev.isNull() {
		out.head, out.tail = l.head, l.tail
		l.head, l.tail = rawRef{}, rawRef{}
		c.curr = rawRef{}
		return out
	}

	slab := l.alloc.xorSlab()
	prevRec := deref(slab, c.prev)
	currRec := deref(slab, c.curr)
	prevRec.link = prevRec.link.xor(c.curr)
	currRec.link = currRec.link.xor(c.prev)

	out.head = c.curr
	out.tail = l.tail
	if out.head.eq(out.tail) {
		out.tail = rawRef{}
	}
	l.tail = c.prev
	if l.head.eq(l.tail) {
		l.tail = rawRef{}
	}
	c.curr = rawRef{}
	return out
}
