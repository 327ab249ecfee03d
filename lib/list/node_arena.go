package list

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Aatch/dynalist/lib/arena"
	"github.com/Aatch/dynalist/lib/infra"
	"github.com/Aatch/dynalist/lib/xlog"
)

var (
	ErrNodeArenaLeak = errors.New("[node-arena] nodes still live at close")
)

const (
	intrusiveShape = "intrusive"
	xorShape       = "xor"
)

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// NodeArena owns the slab storage behind every list built on top of it.
// There is one slab per node shape and each is materialized lazily, so
// an arena used only for XOR lists never pays for intrusive slots.
// Lists carved from the same arena may exchange nodes with each other
// and with nobody else.
//
// The arena and all of its lists belong to a single goroutine.
type NodeArena[E any] struct {
	noCopy noCopy

	inodes *arena.Arena[inode[E]]
	xnodes *arena.Arena[xnode[E]]

	finalizer func(E)
	logger    xlog.XLogger
	stats     *nodeArenaStats

	pageCap  uint32
	maxNodes uint32
}

type NodeArenaOption[E any] func(*NodeArena[E])

// WithFinalizer installs the destructor run when an element is
// destroyed through the arena, once per element no matter how many
// handles pointed at it.
func WithFinalizer[E any](fn func(E)) NodeArenaOption[E] {
	if fn == nil {
		panic("[node-arena] nil finalizer")
	}
	return func(na *NodeArena[E]) {
		na.finalizer = fn
	}
}

// WithLeakLogger routes the close-time leak report to lg. Without it
// Close stays silent and only returns the error.
func WithLeakLogger[E any](lg xlog.XLogger) NodeArenaOption[E] {
	if lg == nil {
		panic("[node-arena] nil leak logger")
	}
	return func(na *NodeArena[E]) {
		na.logger = lg
	}
}

// WithNodeArenaPageCapacity sets the slab page size for both node
// shapes. The slabs round it up to a power of two.
func WithNodeArenaPageCapacity[E any](n uint32) NodeArenaOption[E] {
	if n == 0 {
		panic(arena.ErrArenaBadPageCap)
	}
	return func(na *NodeArena[E]) {
		na.pageCap = n
	}
}

// WithNodeArenaMaxNodes bounds how many nodes of each shape may be
// live at once. Allocations beyond the bound fail with
// arena.ErrArenaExhausted.
func WithNodeArenaMaxNodes[E any](n uint32) NodeArenaOption[E] {
	if n == 0 {
		panic(arena.ErrArenaBadMaxObject)
	}
	return func(na *NodeArena[E]) {
		na.maxNodes = n
	}
}

// WithNodeArenaStats publishes allocation, reclaim and finalize
// counters plus a live-nodes gauge through the global OTel meter.
func WithNodeArenaStats[E any]() NodeArenaOption[E] {
	return func(na *NodeArena[E]) {
		na.stats = newNodeArenaStats(func() (int64, int64) {
			return na.intrusiveLive(), na.xorLive()
		})
	}
}

func NewNodeArena[E any](opts ...NodeArenaOption[E]) *NodeArena[E] {
	na := &NodeArena[E]{}
	for _, o := range opts {
		o(na)
	}
	return na
}

func (na *NodeArena[E]) slabOptions() []arena.ArenaOption {
	opts := make([]arena.ArenaOption, 0, 2)
	if na.pageCap > 0 {
		opts = append(opts, arena.WithArenaPageCapacity(na.pageCap))
	}
	if na.maxNodes > 0 {
		opts = append(opts, arena.WithArenaMaxObjects(na.maxNodes))
	}
	return opts
}

func (na *NodeArena[E]) intrusiveSlab() *arena.Arena[inode[E]] {
	if /* lazy init */ na.inodes == nil {
		na.inodes = arena.NewArena[inode[E]](na.slabOptions()...)
	}
	return na.inodes
}

func (na *NodeArena[E]) xorSlab() *arena.Arena[xnode[E]] {
	if /* lazy init */ na.xnodes == nil {
		na.xnodes = arena.NewArena[xnode[E]](na.slabOptions()...)
	}
	return na.xnodes
}

func (na *NodeArena[E]) allocINode(v E) (rawRef, *inode[E], error) {
	idx, gen, n, err := na.intrusiveSlab().Allocate()
	if err != nil {
		return rawRef{}, nil, err
	}
	n.count = 1
	n.next, n.prev = rawRef{}, rawRef{}
	n.data = v
	na.stats.recordAlloc(intrusiveShape)
	return mintRef(idx, gen), n, nil
}

func (na *NodeArena[E]) allocSentinel() (rawRef, *inode[E], error) {
	idx, gen, n, err := na.intrusiveSlab().Allocate()
	if err != nil {
		return rawRef{}, nil, err
	}
	n.count = sentinelCount
	n.next, n.prev = rawRef{}, rawRef{}
	na.stats.recordAlloc(intrusiveShape)
	return mintRef(idx, gen), n, nil
}

func (na *NodeArena[E]) allocXNode(v E) (rawRef, *xnode[E], error) {
	idx, gen, n, err := na.xorSlab().Allocate()
	if err != nil {
		return rawRef{}, nil, err
	}
	n.link = rawRef{}
	n.data = v
	na.stats.recordAlloc(xorShape)
	return mintRef(idx, gen), n, nil
}

// reclaimINode releases the slot behind r and nulls r. The record is
// returned by value so the caller can still reach the element and the
// neighbor references after the slot is gone.
func (na *NodeArena[E]) reclaimINode(r *rawRef) (inode[E], bool) {
	rec, ok := take(na.intrusiveSlab(), r)
	if ok {
		na.stats.recordReclaim(intrusiveShape)
	}
	return rec, ok
}

func (na *NodeArena[E]) reclaimXNode(r *rawRef) (xnode[E], bool) {
	rec, ok := take(na.xorSlab(), r)
	if ok {
		na.stats.recordReclaim(xorShape)
	}
	return rec, ok
}

func (na *NodeArena[E]) finalize(v E) {
	if na.finalizer != nil {
		na.finalizer(v)
		na.stats.recordFinalize()
	}
}

func (na *NodeArena[E]) mustShare(other *NodeArena[E]) {
	if other != na {
		panic("[node-arena] nodes from different arenas cannot be linked")
	}
}

func (na *NodeArena[E]) intrusiveLive() int64 {
	if na.inodes == nil {
		return 0
	}
	return na.inodes.Live()
}

func (na *NodeArena[E]) xorLive() int64 {
	if na.xnodes == nil {
		return 0
	}
	return na.xnodes.Live()
}

// Live reports how many nodes are currently allocated across both
// slabs.
func (na *NodeArena[E]) Live() int64 {
	return na.intrusiveLive() + na.xorLive()
}

// AllocatedBytes reports how much slab memory the arena holds, whether
// live or recycled.
func (na *NodeArena[E]) AllocatedBytes() int64 {
	total := int64(0)
	if na.inodes != nil {
		total += na.inodes.AllocatedBytes()
	}
	if na.xnodes != nil {
		total += na.xnodes.AllocatedBytes()
	}
	return total
}

// Close checks that nothing is left alive in the slabs. A nonzero
// count means some handle, element or list was never released. The
// indexes of a few offenders go to the leak logger when one is
// configured.
func (na *NodeArena[E]) Close() error {
	iLive, xLive := na.intrusiveLive(), na.xorLive()
	if iLive == 0 && xLive == 0 {
		return nil
	}
	if na.logger != nil {
		fields := []zap.Field{
			zap.Int64("intrusiveLive", iLive),
			zap.Int64("xorLive", xLive),
		}
		if iLive > 0 {
			fields = append(fields, zap.Uint32s("intrusiveIndexes", na.inodes.LiveIndexes(8)))
		}
		if xLive > 0 {
			fields = append(fields, zap.Uint32s("xorIndexes", na.xnodes.LiveIndexes(8)))
		}
		na.logger.Warn("[node-arena] leaked nodes at close", fields...)
	}
	return infra.WrapErrorStackWithMessage(ErrNodeArenaLeak,
		fmt.Sprintf("%d intrusive, %d xor", iLive, xLive))
}

// Validate cross-checks the bookkeeping of both slabs and combines
// every violation into one error.
func (na *NodeArena[E]) Validate() error {
	var merr error
	if na.inodes != nil {
		merr = multierr.Append(merr, na.inodes.Validate())
	}
	if na.xnodes != nil {
		merr = multierr.Append(merr, na.xnodes.Validate())
	}
	return merr
}
