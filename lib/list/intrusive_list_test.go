package list

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type displayInt int

func (i displayInt) String() string { return strconv.Itoa(int(i)) }

type displayStr string

func (s displayStr) String() string { return string(s) }

func collectStrings(l *IList[fmt.Stringer]) []string {
	out := make([]string, 0, 8)
	l.ForEach(func(idx int64, v *fmt.Stringer) {
		out = append(out, (*v).String())
	})
	return out
}

func TestIListSmoke(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)

	node1, err := list.PushBackValue(displayInt(1))
	require.NoError(t, err)
	node2, err := list.PushBackValue(displayInt(2))
	require.NoError(t, err)

	node3, err := NewINode[fmt.Stringer](na, displayInt(3))
	require.NoError(t, err)
	node2.InsertAfter(node3)

	node4, err := NewINode[fmt.Stringer](na, displayStr("I'm a string"))
	require.NoError(t, err)
	node2.InsertBefore(node4)

	assert.Equal(t, []string{"1", "I'm a string", "2", "3"}, collectStrings(list))

	// walk by handle, each hop mints a fresh one
	node := list.Front()
	for _, want := range []string{"1", "I'm a string", "2", "3"} {
		require.NotNil(t, node)
		assert.Equal(t, want, (*node.Value()).String())
		next := node.Next()
		node.Release()
		node = next
	}
	assert.Nil(t, node)

	for _, n := range []*INode[fmt.Stringer]{node1, node2, node3, node4} {
		n.Release()
	}
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestIListMoveBetweenLists(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list1, err := NewIList(na)
	require.NoError(t, err)
	list2, err := NewIList(na)
	require.NoError(t, err)

	node1, err := list1.PushBackValue(displayInt(1))
	require.NoError(t, err)
	node2, err := list1.PushBackValue(displayInt(2))
	require.NoError(t, err)

	node3, err := NewINode[fmt.Stringer](na, displayInt(3))
	require.NoError(t, err)
	list2.PushBack(node3)
	// pushing an already linked node moves it
	list2.PushBack(node2)

	assert.Equal(t, []string{"1"}, collectStrings(list1))
	assert.Equal(t, []string{"3", "2"}, collectStrings(list2))
	assert.EqualValues(t, 1, list1.Len())
	assert.EqualValues(t, 2, list2.Len())
	require.NoError(t, list1.Validate())
	require.NoError(t, list2.Validate())

	for _, n := range []*INode[fmt.Stringer]{node1, node2, node3} {
		n.Release()
	}
	list1.Destroy()
	list2.Destroy()
	require.NoError(t, na.Close())
}

func TestINodeNextPrevSkipSentinel(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)

	first, err := list.PushBackValue(displayInt(1))
	require.NoError(t, err)
	last, err := list.PushBackValue(displayInt(2))
	require.NoError(t, err)

	assert.Nil(t, first.Prev())
	assert.Nil(t, last.Next())

	mid := first.Next()
	require.NotNil(t, mid)
	assert.Equal(t, "2", (*mid.Value()).String())
	back := mid.Prev()
	require.NotNil(t, back)
	assert.Equal(t, "1", (*back.Value()).String())

	for _, n := range []*INode[fmt.Stringer]{first, last, mid, back} {
		n.Release()
	}
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestINodeDetachedBehaviour(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	n, err := NewINode[fmt.Stringer](na, displayInt(5))
	require.NoError(t, err)

	assert.False(t, n.InList())
	assert.Nil(t, n.Next())
	assert.Nil(t, n.Prev())
	n.RemoveFromList() // detached, nothing happens
	assert.Equal(t, "5", (*n.Value()).String())

	n.Release()
	assert.Nil(t, n.Value())
	require.NoError(t, na.Close())
}

func TestINodeInsertPreconditions(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	detached, err := NewINode[fmt.Stringer](na, displayInt(1))
	require.NoError(t, err)
	other, err := NewINode[fmt.Stringer](na, displayInt(2))
	require.NoError(t, err)

	assert.Panics(t, func() { detached.InsertAfter(other) })
	assert.Panics(t, func() { detached.InsertBefore(other) })

	list, err := NewIList(na)
	require.NoError(t, err)
	list.PushBack(detached)
	assert.Panics(t, func() { detached.InsertAfter(detached) })

	detached.Release()
	other.Release()
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestIListRemoveLastRestoresEmptyShape(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)

	n, err := list.PushBackValue(displayInt(1))
	require.NoError(t, err)
	assert.False(t, list.IsEmpty())

	n.RemoveFromList()
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Front())
	assert.Nil(t, list.Back())
	require.NoError(t, list.Validate())

	// the ring comes back from the empty shape
	list.PushFront(n)
	assert.False(t, list.IsEmpty())
	assert.Equal(t, []string{"1"}, collectStrings(list))
	require.NoError(t, list.Validate())

	n.Release()
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestIListDestroyKeepsHandledNodes(t *testing.T) {
	destroyed := 0
	na := NewNodeArena(WithFinalizer(func(fmt.Stringer) { destroyed++ }))
	list, err := NewIList(na)
	require.NoError(t, err)

	kept, err := list.PushBackValue(displayInt(1))
	require.NoError(t, err)
	dropped, err := list.PushBackValue(displayInt(2))
	require.NoError(t, err)
	dropped.Release()

	list.Destroy()
	// node 2 had only the list's share left and went with the list
	assert.Equal(t, 1, destroyed)
	assert.False(t, kept.InList())
	assert.Equal(t, "1", (*kept.Value()).String())

	kept.Release()
	assert.Equal(t, 2, destroyed)
	require.NoError(t, na.Close())
}

func TestIListFrontBackHandles(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)
	assert.Nil(t, list.Front())
	assert.Nil(t, list.Back())

	a, err := list.PushBackValue(displayInt(1))
	require.NoError(t, err)
	b, err := list.PushBackValue(displayInt(2))
	require.NoError(t, err)

	front := list.Front()
	back := list.Back()
	require.NotNil(t, front)
	require.NotNil(t, back)
	assert.Equal(t, "1", (*front.Value()).String())
	assert.Equal(t, "2", (*back.Value()).String())

	for _, n := range []*INode[fmt.Stringer]{a, b, front, back} {
		n.Release()
	}
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestIListIterOwnsItsHandles(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)
	handles := make([]*INode[fmt.Stringer], 0, 3)
	for i := 1; i <= 3; i++ {
		n, err := list.PushBackValue(displayInt(i))
		require.NoError(t, err)
		handles = append(handles, n)
	}

	got := make([]string, 0, 3)
	it := list.Iter()
	for n := it.Next(); n != nil; n = it.Next() {
		got = append(got, (*n.Value()).String())
		n.Release()
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)

	for _, n := range handles {
		n.Release()
	}
	list.Destroy()
	require.NoError(t, na.Close())
}

func TestIListUseAfterDestroyPanics(t *testing.T) {
	na := NewNodeArena[fmt.Stringer]()
	list, err := NewIList(na)
	require.NoError(t, err)
	list.Destroy()
	list.Destroy() // idempotent

	assert.True(t, list.IsEmpty())
	assert.Panics(t, func() { list.Front() })

	n, err := NewINode[fmt.Stringer](na, displayInt(1))
	require.NoError(t, err)
	assert.Panics(t, func() { list.PushBack(n) })

	n.Release()
	require.NoError(t, na.Close())
}
