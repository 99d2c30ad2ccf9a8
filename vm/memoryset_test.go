package vm

import (
	"testing"

	"github.com/rv39core/kernel/mem"
)

func TestPushMapsEveryPage(t *testing.T) {
	ms := NewMemorySet()
	area := &MemoryArea{
		Start:   0x10000,
		End:     0x10000 + 3*uintptr(PGSIZE),
		Attr:    MemoryAttr{User: true},
		Handler: NewByFrameHandler(),
	}
	ms.Push(area)
	for va := area.Start; va < area.End; va += uintptr(PGSIZE) {
		if _, ok := ms.PageTable.Lookup(va); !ok {
			t.Fatalf("page at %#x not mapped after Push", va)
		}
	}
}

func TestPushOverlapPanics(t *testing.T) {
	ms := NewMemorySet()
	ms.Push(&MemoryArea{
		Start:   0x20000,
		End:     0x20000 + uintptr(PGSIZE)*4,
		Handler: NewByFrameHandler(),
	})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overlapping area")
		}
	}()
	ms.Push(&MemoryArea{
		Start:   0x20000 + uintptr(PGSIZE)*2,
		End:     0x20000 + uintptr(PGSIZE)*6,
		Handler: NewByFrameHandler(),
	})
}

func TestLookupFindsContainingArea(t *testing.T) {
	ms := NewMemorySet()
	a := &MemoryArea{Start: 0x30000, End: 0x30000 + uintptr(PGSIZE)*2, Handler: NewByFrameHandler()}
	ms.Push(a)

	if got, ok := ms.Lookup(a.Start); !ok || got != a {
		t.Fatalf("Lookup(start) = (%v, %v), want (%v, true)", got, ok, a)
	}
	if got, ok := ms.Lookup(a.End - 1); !ok || got != a {
		t.Fatalf("Lookup(end-1) = (%v, %v), want (%v, true)", got, ok, a)
	}
	if _, ok := ms.Lookup(a.End); ok {
		t.Fatal("Lookup(end) should not find the area (half-open range)")
	}
}

func TestAreasAscendingOrder(t *testing.T) {
	ms := NewMemorySet()
	starts := []uintptr{0x50000, 0x40000, 0x60000}
	for _, s := range starts {
		ms.Push(&MemoryArea{Start: s, End: s + uintptr(PGSIZE), Handler: NewByFrameHandler()})
	}
	got := ms.sortedStarts()
	want := []uintptr{0x40000, 0x50000, 0x60000}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedStarts = %v, want %v", got, want)
		}
	}
}

func TestCloneDeepCopiesByFrameContent(t *testing.T) {
	ms := NewMemorySet()
	area := &MemoryArea{
		Start:   0x70000,
		End:     0x70000 + uintptr(PGSIZE),
		Attr:    MemoryAttr{User: true},
		Handler: NewByFrameHandler(),
	}
	ms.Push(area)

	srcFrame := frameFor(t, area, area.Start)
	srcFrame[0] = 0x99

	clone := ms.Clone()
	clonedArea, ok := clone.Lookup(area.Start)
	if !ok {
		t.Fatal("cloned set missing area")
	}
	cloneFrame := frameFor(t, clonedArea, area.Start)
	if cloneFrame[0] != 0x99 {
		t.Fatal("Clone did not copy backing frame content")
	}

	// mutating the clone must not affect the original (independent frames).
	cloneFrame[0] = 0x11
	if srcFrame[0] != 0x99 {
		t.Fatal("Clone shares backing frames instead of deep-copying them")
	}
}

func TestCloneLinearHandlerSharesOffset(t *testing.T) {
	ms := NewMemorySet()
	area := &MemoryArea{
		Start:   0x80000,
		End:     0x80000 + uintptr(PGSIZE),
		Handler: &LinearHandler{Offset: 0x1000},
	}
	ms.Push(area)
	clone := ms.Clone()
	ca, ok := clone.Lookup(area.Start)
	if !ok {
		t.Fatal("cloned set missing linear area")
	}
	lh, ok := ca.Handler.(*LinearHandler)
	if !ok || lh.Offset != 0x1000 {
		t.Fatalf("cloned LinearHandler offset = %+v, want Offset 0x1000", ca.Handler)
	}
}

// frameFor returns a []byte view of va's backing frame, for content
// assertions against a ByFrameHandler-backed area.
func frameFor(t *testing.T, area *MemoryArea, va uintptr) []byte {
	t.Helper()
	h, ok := area.Handler.(*ByFrameHandler)
	if !ok {
		t.Fatal("area is not backed by a ByFrameHandler")
	}
	pa, ok := h.frames[va]
	if !ok {
		t.Fatalf("no frame recorded for %#x", va)
	}
	pg := mem.Physmem.Dmap(pa)
	return pg[:]
}
