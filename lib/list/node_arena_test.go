package list

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aatch/dynalist/lib/arena"
	"github.com/Aatch/dynalist/lib/xlog"
)

func TestNodeArenaLazySlabs(t *testing.T) {
	na := NewNodeArena[int]()
	assert.EqualValues(t, 0, na.Live())
	assert.EqualValues(t, 0, na.AllocatedBytes())
	require.NoError(t, na.Close())

	l := NewXorList(na)
	require.NoError(t, l.PushBack(1))
	assert.EqualValues(t, 1, na.Live())
	assert.Greater(t, na.AllocatedBytes(), int64(0))

	l.Clear()
	require.NoError(t, na.Close())
}

func TestNodeArenaCloseReportsLeaks(t *testing.T) {
	na := NewNodeArena[int](WithLeakLogger[int](xlog.NewXLogger()))
	n, err := NewINode(na, 7)
	require.NoError(t, err)

	err = na.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeArenaLeak))
	assert.Contains(t, err.Error(), "1 intrusive")

	n.Release()
	require.NoError(t, na.Close())
}

func TestNodeArenaFinalizerRunsOncePerElement(t *testing.T) {
	destroyed := 0
	na := NewNodeArena(WithFinalizer(func(int) { destroyed++ }))

	n, err := NewINode(na, 1)
	require.NoError(t, err)
	dup := n.Clone()
	require.NotNil(t, dup)

	n.Release()
	assert.Zero(t, destroyed)
	n.Release() // no-op
	assert.Zero(t, destroyed)

	dup.Release()
	assert.Equal(t, 1, destroyed)
	require.NoError(t, na.Close())
}

func TestNodeArenaMaxNodes(t *testing.T) {
	na := NewNodeArena[int](WithNodeArenaMaxNodes[int](2))
	l := NewXorList(na)
	require.NoError(t, l.PushBack(1))
	require.NoError(t, l.PushBack(2))

	err := l.PushBack(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, arena.ErrArenaExhausted))
	assert.EqualValues(t, 2, l.Len())

	// the bound applies per shape, intrusive nodes still fit
	in, err := NewINode(na, 9)
	require.NoError(t, err)

	in.Release()
	l.Clear()
	require.NoError(t, na.Close())
}

func TestNodeArenaOptionPanics(t *testing.T) {
	assert.Panics(t, func() { WithFinalizer[int](nil) })
	assert.Panics(t, func() { WithLeakLogger[int](nil) })
	assert.Panics(t, func() { WithNodeArenaPageCapacity[int](0) })
	assert.Panics(t, func() { WithNodeArenaMaxNodes[int](0) })
}

func TestNodeArenaMixedArenasPanic(t *testing.T) {
	na1 := NewNodeArena[int]()
	na2 := NewNodeArena[int]()

	l1, err := NewIList(na1)
	require.NoError(t, err)
	foreign, err := NewINode(na2, 1)
	require.NoError(t, err)

	assert.Panics(t, func() { l1.PushBack(foreign) })

	x1 := NewXorList(na1)
	x2 := NewXorList(na2)
	require.NoError(t, x2.PushBack(5))
	assert.Panics(t, func() { x1.Cursor().Splice(x2) })

	foreign.Release()
	x2.Clear()
	l1.Destroy()
	require.NoError(t, na1.Close())
	require.NoError(t, na2.Close())
}

func TestNodeArenaValidate(t *testing.T) {
	na := NewNodeArena[int](WithNodeArenaPageCapacity[int](8))
	require.NoError(t, na.Validate())

	l := NewXorList(na)
	il, err := NewIList(na)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.NoError(t, l.PushBack(i))
		_, err = il.PushBackValue(i)
		require.NoError(t, err)
	}
	require.NoError(t, na.Validate())

	l.Clear()
	il.ForEach(func(idx int64, v *int) {})
	il.Destroy()
	require.NoError(t, na.Validate())
	// handles from PushBackValue were never released, the nodes survive
	assert.EqualValues(t, 20, na.Live())
}
