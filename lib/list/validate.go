package list

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Aatch/dynalist/lib/infra"
)

// Validate walks the ring both ways and cross-checks it against the
// slab. Meant for tests and debugging, every violation found is
// combined into one error.
func (l *IList[E]) Validate() error {
	rec := l.sentinel()
	if rec == nil {
		return infra.NewErrorStack("[ilist] validate a destroyed list")
	}
	var merr error
	if rec.next.isNull() != rec.prev.isNull() {
		merr = multierr.Append(merr, infra.NewErrorStack("[ilist] sentinel links disagree about emptiness"))
	}
	if rec.next.isNull() {
		return merr
	}

	slab := l.alloc.intrusiveSlab()
	limit := slab.Live() + 1
	steps := int64(0)
	prev, curr := l.sent, rec.next
	for !curr.eq(l.sent) {
		if steps++; steps > limit {
			return multierr.Append(merr, infra.NewErrorStack("[ilist] forward walk does not close the ring"))
		}
		cur := deref(slab, curr)
		if cur == nil {
			return multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[ilist] stale reference %d on the ring", curr.addr)))
		}
		if cur.isSentinel() {
			merr = multierr.Append(merr, infra.NewErrorStack("[ilist] second sentinel on the ring"))
		}
		if !cur.prev.eq(prev) {
			merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[ilist] node %d back link does not return", curr.addr)))
		}
		if cur.count == 0 {
			merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[ilist] linked node %d without a count share", curr.addr)))
		}
		prev, curr = curr, cur.next
	}
	if !rec.prev.eq(prev) {
		merr = multierr.Append(merr, infra.NewErrorStack("[ilist] sentinel back link misses the last node"))
	}
	return merr
}

// Validate walks the chain from both ends and checks that the fold
// unwinds cleanly, that the shape fields match the node count and that
// every reference on the chain is still live.
func (l *XorList[E]) Validate() error {
	var merr error
	if l.head.isNull() {
		if !l.tail.isNull() {
			merr = multierr.Append(merr, infra.NewErrorStack("[xorlist] tail set on an empty list"))
		}
		return merr
	}
	slab := l.alloc.xorSlab()
	if l.tail.isNull() {
		rec := deref(slab, l.head)
		if rec == nil {
			return multierr.Append(merr, infra.NewErrorStack("[xorlist] stale head reference"))
		}
		if !rec.link.isNull() {
			merr = multierr.Append(merr, infra.NewErrorStack("[xorlist] lone node carries a link"))
		}
		return merr
	}

	limit := slab.Live() + 1
	forward := int64(0)
	prev, curr := rawRef{}, l.head
	last := rawRef{}
	for !curr.isNull() {
		if forward++; forward > limit {
			return multierr.Append(merr, infra.NewErrorStack("[xorlist] forward walk does not terminate"))
		}
		rec := deref(slab, curr)
		if rec == nil {
			return multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[xorlist] stale reference %d on the chain", curr.addr)))
		}
		last = curr
		prev, curr = curr, prev.xor(rec.link)
	}
	if !last.eq(l.tail) {
		merr = multierr.Append(merr, infra.NewErrorStack("[xorlist] forward walk ends off the tail"))
	}

	backward := int64(0)
	prev, curr = rawRef{}, l.tail
	last = rawRef{}
	for !curr.isNull() {
		if backward++; backward > limit {
			return multierr.Append(merr, infra.NewErrorStack("[xorlist] backward walk does not terminate"))
		}
		rec := deref(slab, curr)
		if rec == nil {
			return multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[xorlist] stale reference %d on the chain", curr.addr)))
		}
		last = curr
		prev, curr = curr, prev.xor(rec.link)
	}
	if !last.eq(l.head) {
		merr = multierr.Append(merr, infra.NewErrorStack("[xorlist] backward walk ends off the head"))
	}
	if forward != backward {
		merr = multierr.Append(merr, infra.NewErrorStack("[xorlist] forward and backward walks disagree on length"))
	}
	return merr
}
