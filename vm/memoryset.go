// Memory areas, memory handlers, and the per-address-space MemorySet that
// owns them, per spec.md §4.1. Grounded on the shape of biscuit's
// Vm_t/Vmregion_t (a mutex-guarded region list sitting on top of a page
// table), generalized from x86's COW/mmap-file design — which spec.md's
// Non-goals exclude — down to the eager Linear/ByFrame handler pair
// rCore's os/src/memory/memory_set.rs describes.
package vm

import (
	"fmt"

	"github.com/google/btree"
	"github.com/rv39core/kernel/mem"
)

// MemoryAttr is the permission bitset carried by a memory area: whether
// user mode may touch it, whether it is read-only, and whether it may be
// executed.
type MemoryAttr struct {
	User     bool
	Readonly bool
	Execute  bool
}

// flags returns the Sv39 PTE bits this attribute set implies, not
// including PTE_V (added by the page table layer on insertion).
func (a MemoryAttr) flags() uintptr {
	f := uintptr(PTE_R)
	if !a.Readonly {
		f |= PTE_W
	}
	if a.Execute {
		f |= PTE_X
	}
	if a.User {
		f |= PTE_U
	}
	return f
}

// MemoryHandler maps and unmaps the pages of one memory area into a page
// table, and knows how to reproduce its mapping into a second table
// during MemorySet.Clone.
type MemoryHandler interface {
	// Map installs the mapping for one page at va into pt.
	Map(pt *PageTable_t, va uintptr, attr MemoryAttr)
	// Unmap removes the mapping for one page at va from pt and releases
	// any physical frame it owned.
	Unmap(pt *PageTable_t, va uintptr)
	// CloneMap is called on a freshly constructed handler (the receiver)
	// to reproduce src's mapping for va from pt into newPt, deep-copying
	// any backing frame content (spec.md excludes copy-on-write, so every
	// clone is an eager, independent copy).
	CloneMap(src MemoryHandler, pt, newPt *PageTable_t, va uintptr, attr MemoryAttr)
}

// LinearHandler maps virtual addresses to physical addresses at a fixed
// offset, used for the kernel's own identity-style mapping of memory it
// already owns outright (the kernel image and the direct-mapped physical
// window). It owns no frames and so frees none on Unmap.
type LinearHandler struct {
	// Offset is subtracted from a virtual address to get its physical
	// address: pa = va - Offset.
	Offset uintptr
}

func (h *LinearHandler) Map(pt *PageTable_t, va uintptr, attr MemoryAttr) {
	pt.Map(va, mem.Pa_t(va-h.Offset), attr.flags())
}

func (h *LinearHandler) Unmap(pt *PageTable_t, va uintptr) {
	pt.Unmap(va)
}

func (h *LinearHandler) CloneMap(src MemoryHandler, pt, newPt *PageTable_t, va uintptr, attr MemoryAttr) {
	newPt.Map(va, mem.Pa_t(va-h.Offset), attr.flags())
}

// ByFrameHandler maps each virtual page in its area to an independently
// allocated physical frame, used for ordinary process heap/stack/code
// pages. It tracks which frame backs which page so Unmap and CloneMap can
// find them again.
type ByFrameHandler struct {
	frames map[uintptr]mem.Pa_t
}

// NewByFrameHandler constructs an empty ByFrameHandler.
func NewByFrameHandler() *ByFrameHandler {
	return &ByFrameHandler{frames: make(map[uintptr]mem.Pa_t)}
}

func (h *ByFrameHandler) Map(pt *PageTable_t, va uintptr, attr MemoryAttr) {
	_, p_pg, ok := mem.Physmem.Refpg_new()
	if !ok {
		panic("out of memory mapping area")
	}
	h.frames[va] = p_pg
	pt.Map(va, p_pg, attr.flags())
}

func (h *ByFrameHandler) Unmap(pt *PageTable_t, va uintptr) {
	pt.Unmap(va)
	if p_pg, ok := h.frames[va]; ok {
		mem.Physmem.Free(p_pg)
		delete(h.frames, va)
	}
}

func (h *ByFrameHandler) CloneMap(src MemoryHandler, pt, newPt *PageTable_t, va uintptr, attr MemoryAttr) {
	srcH, ok := src.(*ByFrameHandler)
	if !ok {
		panic("cloning ByFrameHandler area from a different handler type")
	}
	_, p_pg, ok := mem.Physmem.Refpg_new()
	if !ok {
		panic("out of memory cloning area")
	}
	srcPg := mem.Physmem.Dmap(srcH.frames[va])
	dstPg := mem.Physmem.Dmap(p_pg)
	*dstPg = *srcPg
	h.frames[va] = p_pg
	newPt.Map(va, p_pg, attr.flags())
}

// MemoryArea is one contiguous, page-aligned virtual range within a
// MemorySet, mapped by a single handler with a single permission set.
// Areas within one address space never overlap (spec.md §4.1).
type MemoryArea struct {
	Start   uintptr
	End     uintptr
	Attr    MemoryAttr
	Handler MemoryHandler
}

func (a *MemoryArea) overlaps(b *MemoryArea) bool {
	return a.Start < b.End && b.Start < a.End
}

func (a *MemoryArea) contains(va uintptr) bool {
	return va >= a.Start && va < a.End
}

func areaLess(a, b *MemoryArea) bool {
	return a.Start < b.Start
}

// MemorySet is a process's or the kernel's full address space: a page
// table plus the ordered set of areas mapped into it. The area index is
// a github.com/google/btree.BTreeG keyed by start address so push's
// overlap check and Lookup run in O(log n) instead of biscuit's linear
// vmregion scan, while keeping the same "areas never overlap" invariant
// and iteration order.
type MemorySet struct {
	PageTable *PageTable_t
	areas     *btree.BTreeG[*MemoryArea]
}

// NewMemorySet allocates a fresh, empty address space with its own page
// table.
func NewMemorySet() *MemorySet {
	return &MemorySet{
		PageTable: NewPageTable(),
		areas:     btree.NewG[*MemoryArea](32, areaLess),
	}
}

// Push adds area to the set, mapping every page it covers immediately
// (spec.md's MemoryHandler operations are eager, not fault-driven: there
// is no lazy-mapping page-fault path in this kernel). It panics if area
// overlaps an existing one.
func (ms *MemorySet) Push(area *MemoryArea) {
	var conflict *MemoryArea
	// existing areas never overlap each other, so only the one starting
	// closest below area.End can overlap area.
	ms.areas.DescendLessOrEqual(&MemoryArea{Start: area.End - 1}, func(existing *MemoryArea) bool {
		if existing.overlaps(area) {
			conflict = existing
		}
		return false
	})
	if conflict != nil {
		panic(fmt.Sprintf("overlapping memory areas: [%#x,%#x) and [%#x,%#x)",
			area.Start, area.End, conflict.Start, conflict.End))
	}
	for va := area.Start; va < area.End; va += uintptr(PGSIZE) {
		area.Handler.Map(ms.PageTable, va, area.Attr)
	}
	ms.areas.ReplaceOrInsert(area)
}

// Lookup returns the area containing va, if any.
func (ms *MemorySet) Lookup(va uintptr) (*MemoryArea, bool) {
	var found *MemoryArea
	ms.areas.DescendLessOrEqual(&MemoryArea{Start: va}, func(a *MemoryArea) bool {
		if a.contains(va) {
			found = a
		}
		return false
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

// Areas returns every area in ascending start-address order.
func (ms *MemorySet) Areas() []*MemoryArea {
	out := make([]*MemoryArea, 0, ms.areas.Len())
	ms.areas.Ascend(func(a *MemoryArea) bool {
		out = append(out, a)
		return true
	})
	return out
}

// Clone produces an independent copy of ms: a fresh page table and, for
// every area, a freshly allocated handler whose pages are deep copies of
// the originals (spec.md excludes copy-on-write, so fork is always an
// eager clone — spec.md §4.3/§4.4).
func (ms *MemorySet) Clone() *MemorySet {
	out := NewMemorySet()
	for _, area := range ms.Areas() {
		var nh MemoryHandler
		switch h := area.Handler.(type) {
		case *LinearHandler:
			nh = &LinearHandler{Offset: h.Offset}
		case *ByFrameHandler:
			nh = NewByFrameHandler()
		default:
			panic(fmt.Sprintf("unknown memory handler type %T", area.Handler))
		}
		na := &MemoryArea{Start: area.Start, End: area.End, Attr: area.Attr, Handler: nh}
		for va := na.Start; va < na.End; va += uintptr(PGSIZE) {
			nh.CloneMap(area.Handler, ms.PageTable, out.PageTable, va, area.Attr)
		}
		out.areas.ReplaceOrInsert(na)
	}
	return out
}

// Token returns the satp-format value activating this address space's
// page table.
func (ms *MemorySet) Token() uintptr {
	return ms.PageTable.Token()
}

// sortedStarts returns the area start addresses in the order Areas()
// yields them, so tests can assert push maintains area ordering without
// reaching into the btree internals.
func (ms *MemorySet) sortedStarts() []uintptr {
	areas := ms.Areas()
	starts := make([]uintptr, len(areas))
	for i, a := range areas {
		starts[i] = a.Start
	}
	return starts
}
