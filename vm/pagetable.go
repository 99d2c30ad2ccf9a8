// Sv39 page table primitives: PTE bit layout, the three-level walk, and
// the satp token format. Grounded on biscuit's vm/as.go and mem/mem.go for
// the general "page table page is a Dmap'd Pg_t of Pa_t entries" shape,
// reworked for RV64 Sv39's bit layout (biscuit targets x86-64's 4-level
// format) per spec.md §4.1. rCore's os/src/memory/address.rs and
// os/src/memory/paging/page_table.rs supply the exact Sv39 constants
// (9-bit VPN per level, 10-bit PTE flags field, mode field 8 in satp).
package vm

import (
	"unsafe"

	"github.com/rv39core/kernel/mem"
)

// PGSHIFT/PGSIZE/PGOFFSET mirror mem's, re-exported for callers that only
// import vm.
const (
	PGSHIFT = mem.PGSHIFT
	PGSIZE  = mem.PGSIZE
)

// PGOFFSET masks the in-page offset of a virtual address.
const PGOFFSET = uintptr(PGSIZE - 1)

// Sv39 PTE flag bits.
const (
	PTE_V = 1 << 0 // valid
	PTE_R = 1 << 1 // readable
	PTE_W = 1 << 2 // writable
	PTE_X = 1 << 3 // executable
	PTE_U = 1 << 4 // user-accessible
	PTE_G = 1 << 5 // global
	PTE_A = 1 << 6 // accessed
	PTE_D = 1 << 7 // dirty
)

const ptePPNShift = 10

// vpnBits is the bit width of one VPN level index.
const vpnBits = 9

// vpnMask isolates one 9-bit VPN field.
const vpnMask = (1 << vpnBits) - 1

// vpn returns the level-th VPN field of va (level 2 is the top level).
func vpn(va uintptr, level uint) uintptr {
	shift := PGSHIFT + vpnBits*level
	return (va >> shift) & vpnMask
}

// pa2pte packs a physical page address and flag bits into a PTE value.
func pa2pte(pa mem.Pa_t, flags uintptr) mem.Pa_t {
	return mem.Pa_t(uintptr(pa>>PGSHIFT)<<ptePPNShift) | mem.Pa_t(flags)
}

// pte2pa extracts the physical page address a PTE points to.
func pte2pa(pte mem.Pa_t) mem.Pa_t {
	return mem.Pa_t(uintptr(pte)>>ptePPNShift) << PGSHIFT
}

// PageTable_t is a three-level Sv39 page table, rooted at a physical
// page. Intermediate and leaf levels are ordinary physical pages fetched
// through the direct map, the same technique biscuit's pmap_walk uses on
// its 4-level x86 tables.
type PageTable_t struct {
	Root mem.Pa_t
}

// NewPageTable allocates a fresh, empty top-level table.
func NewPageTable() *PageTable_t {
	_, p_pg, ok := mem.Physmem.Refpg_new()
	if !ok {
		panic("out of memory allocating page table root")
	}
	return &PageTable_t{Root: p_pg}
}

func ptesOf(p mem.Pa_t) *[PGSIZE / 8]mem.Pa_t {
	pg := mem.Physmem.Dmap(p)
	return (*[PGSIZE / 8]mem.Pa_t)(unsafe.Pointer(pg))
}

// Walk returns a pointer to the leaf PTE for va, allocating intermediate
// table pages along the way if alloc is true. It returns nil, false if
// the leaf doesn't exist and alloc is false.
func (pt *PageTable_t) Walk(va uintptr, alloc bool) (*mem.Pa_t, bool) {
	table := pt.Root
	for level := uint(2); level > 0; level-- {
		ptes := ptesOf(table)
		idx := vpn(va, level)
		pte := &ptes[idx]
		if *pte&PTE_V == 0 {
			if !alloc {
				return nil, false
			}
			_, p_pg, ok := mem.Physmem.Refpg_new()
			if !ok {
				return nil, false
			}
			*pte = pa2pte(p_pg, PTE_V)
		}
		table = pte2pa(*pte)
	}
	ptes := ptesOf(table)
	return &ptes[vpn(va, 0)], true
}

// Map installs a leaf mapping from va to pa with the given Sv39 flag
// bits (PTE_V is added automatically). It panics if va is already mapped:
// callers are expected to Unmap first, matching the "areas never overlap"
// invariant the memory-area layer enforces above this one.
func (pt *PageTable_t) Map(va uintptr, pa mem.Pa_t, flags uintptr) {
	pte, ok := pt.Walk(va, true)
	if !ok {
		panic("out of memory walking page table")
	}
	if *pte&PTE_V != 0 {
		panic("remapping already-mapped page")
	}
	*pte = pa2pte(pa, flags|PTE_V)
}

// Unmap clears the leaf mapping for va and returns the physical page it
// referenced. It panics if va was not mapped.
func (pt *PageTable_t) Unmap(va uintptr) mem.Pa_t {
	pte, ok := pt.Walk(va, false)
	if !ok || *pte&PTE_V == 0 {
		panic("unmapping unmapped page")
	}
	pa := pte2pa(*pte)
	*pte = 0
	return pa
}

// Lookup returns the physical address va translates to and whether a
// valid mapping exists.
func (pt *PageTable_t) Lookup(va uintptr) (mem.Pa_t, bool) {
	pte, ok := pt.Walk(va, false)
	if !ok || *pte&PTE_V == 0 {
		return 0, false
	}
	return pte2pa(*pte), true
}

// Sv39Mode is the satp MODE field value selecting Sv39 paging.
const Sv39Mode = 8

// Token returns the satp CSR value that activates this page table, per
// spec.md §4.1's MODE|ASID|PPN layout. ASID is always 0: spec.md excludes
// multi-address-space TLB tagging along with SMP.
func (pt *PageTable_t) Token() uintptr {
	return uintptr(Sv39Mode)<<60 | uintptr(pt.Root)>>PGSHIFT
}
