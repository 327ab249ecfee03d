package list

import (
	stdlist "container/list"
	"testing"

	_ "go.uber.org/automaxprocs"
)

func BenchmarkXorListPushBack(b *testing.B) {
	na := NewNodeArena[int]()
	l := NewXorList(na)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.PushBack(i)
	}
}

func BenchmarkXorListPushPopFront(b *testing.B) {
	na := NewNodeArena[int]()
	l := NewXorList(na)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.PushBack(i)
		e := l.PopFront()
		_, _ = e.Take()
	}
}

func BenchmarkContainerListPushBack(b *testing.B) {
	l := stdlist.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.PushBack(i)
	}
}

func BenchmarkContainerListPushPopFront(b *testing.B) {
	l := stdlist.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.PushBack(i)
		l.Remove(l.Front())
	}
}

func BenchmarkIListPushBackValue(b *testing.B) {
	na := NewNodeArena[int]()
	l, err := NewIList(na)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := l.PushBackValue(i)
		if err != nil {
			b.Fatal(err)
		}
		n.Release()
	}
}

func BenchmarkXorCursorInsertBefore(b *testing.B) {
	na := NewNodeArena[int]()
	l := NewXorList(na)
	c := l.Cursor()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.InsertBefore(i); err != nil {
			b.Fatal(err)
		}
	}
}
