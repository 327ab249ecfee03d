package arena

import (
	"errors"
	"log/slog"
	"reflect"
	"sync/atomic"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/cpu"

	ibits "github.com/Aatch/dynalist/lib/bits"
	"github.com/Aatch/dynalist/lib/infra"
)

// References:
// https://github.com/ortuman/nuke
// https://github.com/dgraph-io/badger/blob/master/skl/arena.go
// https://yizhang82.dev/generational-arena

var (
	ErrArenaExhausted    = errors.New("[arena] live object limit reached")
	ErrArenaIndexSpace   = errors.New("[arena] slab index space exhausted")
	ErrArenaBadPageCap   = errors.New("[arena] page capacity must be greater than zero")
	ErrArenaBadMaxObject = errors.New("[arena] max live objects must be greater than zero")
)

const (
	defaultPageCapacity = uint32(256)

	// nullIndex is the reserved slot index standing for the absent
	// address. Slot 0 of page 0 is never handed out, so a successful
	// Allocate can never be mistaken for null.
	nullIndex = uint32(0)
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// slot generation protocol: a fresh slot starts at generation 0 and the
// generation is bumped on every allocate and every reclaim. Odd means
// live, even means free, and a reference is valid only while its tag
// equals the slot generation, so references into reclaimed or reused
// slots resolve to nothing instead of aliasing a stranger.
type slot[T any] struct {
	gen uint32
	val T
}

type slabPage[T any] struct {
	slots []slot[T]
	used  uint32
	cap   uint32
}

func newSlabPage[T any](cap uint32) *slabPage[T] {
	return &slabPage[T]{cap: cap}
}

func (pg *slabPage[T]) allocate() (uint32, bool) {
	if /* lazy init */ pg.slots == nil {
		pg.slots = make([]slot[T], pg.cap)
	}
	if pg.used >= pg.cap {
		return 0, false
	}
	i := pg.used
	pg.used++
	pg.slots[i].gen++
	return i, true
}

// Arena is a paged, typed slab allocator addressed by (index, generation)
// pairs instead of machine pointers. Pages never move once created, the
// element storage stays visible to the GC, and indices can be combined
// bitwise without hiding anything from the runtime. Not safe for
// concurrent use; the live counter alone is atomic because metrics
// readers may observe it from their own goroutine.
type Arena[T any] struct {
	noCopy   noCopy
	pages    []*slabPage[T]
	recycled []uint32

	pageCap   uint32
	pageShift uint8
	maxLive   uint32

	objSize  uintptr
	objAlign uintptr

	_    [cacheLinePadSize - unsafe.Sizeof(*new(int64))]byte // padding for CPU cache line, avoid false sharing
	live atomic.Int64
	_    [cacheLinePadSize - unsafe.Sizeof(*new(int64))]byte // padding for CPU cache line, avoid false sharing
}

type arenaOpts struct {
	pageCapacity uint32
	maxLive      uint32
}

type ArenaOption func(*arenaOpts)

// WithArenaPageCapacity sets how many slots each slab page holds. The
// value is rounded up to a power of two so slot lookup stays a shift
// and a mask.
func WithArenaPageCapacity(cap uint32) ArenaOption {
	if cap == 0 {
		panic(ErrArenaBadPageCap)
	}
	return func(o *arenaOpts) {
		o.pageCapacity = cap
	}
}

// WithArenaMaxObjects bounds the number of live objects. Allocations
// beyond the bound fail with ErrArenaExhausted.
func WithArenaMaxObjects(n uint32) ArenaOption {
	if n == 0 {
		panic(ErrArenaBadMaxObject)
	}
	return func(o *arenaOpts) {
		o.maxLive = n
	}
}

func NewArena[T any](opts ...ArenaOption) *Arena[T] {
	if reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Ptr {
		panic("forbid to pass ptr generic type for slab arena")
	}

	o := &arenaOpts{pageCapacity: defaultPageCapacity}
	for _, opt := range opts {
		opt(o)
	}
	if rounded := ibits.RoundupPowOf2(o.pageCapacity); rounded != o.pageCapacity {
		slog.Warn("[arena] page capacity rounded up to the next power of two",
			"old", o.pageCapacity, "new", rounded)
		o.pageCapacity = rounded
	}

	obj := *new(T)
	arena := &Arena[T]{
		pages:     make([]*slabPage[T], 0, 8),
		pageCap:   o.pageCapacity,
		pageShift: ibits.CeilPowOf2(o.pageCapacity),
		maxLive:   o.maxLive,
		objSize:   unsafe.Sizeof(obj),
		objAlign:  unsafe.Alignof(obj),
	}
	pg := newSlabPage[T](arena.pageCap)
	pg.slots = make([]slot[T], pg.cap)
	pg.used = 1 // non-zero offset, slot 0 is the null address
	arena.pages = append(arena.pages, pg)
	return arena
}

// Allocate hands out a zeroed slot and the (index, generation) pair that
// addresses it. Bump allocation from the newest page is tried first,
// then the recycled list, then a fresh page.
func (a *Arena[T]) Allocate() (idx uint32, gen uint32, ptr *T, err error) {
	if a.maxLive > 0 && a.live.Load() >= int64(a.maxLive) {
		return nullIndex, 0, nil, infra.WrapErrorStack(ErrArenaExhausted)
	}

	pageIdx := uint32(len(a.pages) - 1)
	pg := a.pages[pageIdx]
	slotIdx, allocated := pg.allocate()
	if !allocated && len(a.recycled) > 0 {
		idx = a.recycled[0]
		a.recycled = a.recycled[1:]
		pg = a.pages[idx>>a.pageShift]
		s := &pg.slots[idx&(a.pageCap-1)]
		s.gen++
		a.live.Add(1)
		return idx, s.gen, &s.val, nil
	} else if !allocated {
		if uint64(len(a.pages)) >= uint64(1)<<(32-a.pageShift) {
			return nullIndex, 0, nil, infra.WrapErrorStack(ErrArenaIndexSpace)
		}
		pg = newSlabPage[T](a.pageCap)
		a.pages = append(a.pages, pg)
		pageIdx = uint32(len(a.pages) - 1)
		slotIdx, _ = pg.allocate()
	}

	idx = pageIdx<<a.pageShift | slotIdx
	s := &pg.slots[slotIdx]
	a.live.Add(1)
	return idx, s.gen, &s.val, nil
}

func (a *Arena[T]) resolve(idx, gen uint32) *slot[T] {
	if idx == nullIndex {
		return nil
	}
	pageIdx := idx >> a.pageShift
	if pageIdx >= uint32(len(a.pages)) {
		return nil
	}
	pg := a.pages[pageIdx]
	slotIdx := idx & (a.pageCap - 1)
	if slotIdx >= pg.used {
		return nil
	}
	s := &pg.slots[slotIdx]
	if s.gen != gen || gen&1 == 0 {
		return nil
	}
	return s
}

// View resolves a reference to the value it addresses, or nil when the
// reference is null, stale, or out of range.
func (a *Arena[T]) View(idx, gen uint32) *T {
	s := a.resolve(idx, gen)
	if s == nil {
		return nil
	}
	return &s.val
}

// Reclaim takes the value out of a live slot, frees the slot onto the
// recycled list, and reports whether the reference was live. A second
// reclaim of the same reference is a no-op.
func (a *Arena[T]) Reclaim(idx, gen uint32) (T, bool) {
	var zero T
	s := a.resolve(idx, gen)
	if s == nil {
		return zero, false
	}
	val := s.val
	// Drop the value eagerly so the GC does not keep it alive through
	// the slab.
	s.val = zero
	s.gen++
	a.recycled = append(a.recycled, idx)
	a.live.Add(-1)
	return val, true
}

// Reset reclaims every live slot at once, keeping the pages for reuse.
// Outstanding references all turn stale.
func (a *Arena[T]) Reset() {
	var zero T
	a.recycled = a.recycled[:0]
	for pageIdx, pg := range a.pages {
		start := uint32(0)
		if pageIdx == 0 {
			start = 1
		}
		for i := start; i < pg.used; i++ {
			s := &pg.slots[i]
			if s.gen&1 == 1 {
				s.val = zero
				s.gen++
			}
			a.recycled = append(a.recycled, uint32(pageIdx)<<a.pageShift|i)
		}
	}
	a.live.Store(0)
}

func (a *Arena[T]) Live() int64 {
	return a.live.Load()
}

func (a *Arena[T]) Capacity() int64 {
	return int64(len(a.pages))*int64(a.pageCap) - 1
}

func (a *Arena[T]) Pages() int {
	return len(a.pages)
}

func (a *Arena[T]) RecycledSlots() int {
	return len(a.recycled)
}

func (a *Arena[T]) ObjectSize() uintptr {
	return a.objSize
}

func (a *Arena[T]) ObjectAlign() uintptr {
	return a.objAlign
}

func (a *Arena[T]) AllocatedBytes() int64 {
	total := int64(0)
	for _, pg := range a.pages {
		if pg.slots != nil {
			total += int64(pg.cap) * int64(unsafe.Sizeof(slot[T]{}))
		}
	}
	return total
}

// LiveIndexes collects the indices of live slots, up to max (max <= 0
// means all). Used by leak reports at close time.
func (a *Arena[T]) LiveIndexes(max int) []uint32 {
	indexes := make([]uint32, 0, 8)
	for pageIdx, pg := range a.pages {
		for i := uint32(0); i < pg.used; i++ {
			if pg.slots[i].gen&1 == 1 {
				indexes = append(indexes, uint32(pageIdx)<<a.pageShift|i)
				if max > 0 && len(indexes) >= max {
					return indexes
				}
			}
		}
	}
	return indexes
}

// Validate cross-checks the slab bookkeeping and combines every
// violation it finds into one error.
func (a *Arena[T]) Validate() error {
	var merr error
	if len(a.pages) == 0 {
		return infra.NewErrorStack("[arena] no pages")
	}

	liveSlots := int64(0)
	freeSlots := 0
	for pageIdx, pg := range a.pages {
		if pg.cap != a.pageCap {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] page capacity mismatch"))
		}
		if pg.used > pg.cap {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] page used beyond capacity"))
		}
		if pg.slots == nil {
			if pg.used > 0 && !(pageIdx == 0 && pg.used == 1) {
				merr = multierr.Append(merr, infra.NewErrorStack("[arena] page marked used but never materialized"))
			}
			continue
		}
		for i := uint32(0); i < pg.used; i++ {
			if pageIdx == 0 && i == 0 {
				if pg.slots[0].gen != 0 {
					merr = multierr.Append(merr, infra.NewErrorStack("[arena] reserved null slot was handed out"))
				}
				continue
			}
			if pg.slots[i].gen&1 == 1 {
				liveSlots++
			} else if pg.slots[i].gen > 0 {
				freeSlots++
			}
		}
	}

	if liveSlots != a.live.Load() {
		merr = multierr.Append(merr, infra.NewErrorStack("[arena] live counter drifted from slot generations"))
	}

	seen := make(map[uint32]struct{}, len(a.recycled))
	for _, idx := range a.recycled {
		if idx == nullIndex {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] null index on the recycled list"))
			continue
		}
		if _, dup := seen[idx]; dup {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] duplicated index on the recycled list"))
			continue
		}
		seen[idx] = struct{}{}
		pageIdx := idx >> a.pageShift
		if pageIdx >= uint32(len(a.pages)) || idx&(a.pageCap-1) >= a.pages[pageIdx].used {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] recycled index out of range"))
			continue
		}
		if a.pages[pageIdx].slots[idx&(a.pageCap-1)].gen&1 == 1 {
			merr = multierr.Append(merr, infra.NewErrorStack("[arena] live slot on the recycled list"))
		}
	}
	if freeSlots != len(seen) {
		merr = multierr.Append(merr, infra.NewErrorStack("[arena] free slots missing from the recycled list"))
	}
	return merr
}
