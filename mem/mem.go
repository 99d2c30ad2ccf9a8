// Package mem is the physical-memory layer: frame numbers, the free-list
// frame allocator, and the direct-mapped window the page-table code and the
// memory-area handlers use to touch physical pages by content instead of by
// address translation. Adapted from biscuit's mem package (Pa_t, PGSIZE,
// Physmem_t, Dmap): biscuit's version additionally carries refcounting and
// per-CPU free lists to support COW sharing across multiple harts, both of
// which spec.md's Non-goals rule out (no COW, no SMP — spec.md §1), so this
// version keeps the free-list/Dmap shape and drops the refcount and
// per-CPU bookkeeping around it.
package mem

import (
	"fmt"
	"sync"
)

// PGSHIFT is the base-2 exponent of the page size.
const PGSHIFT uint = 12

// PGSIZE is the size of a single page in bytes.
const PGSIZE int = 1 << PGSHIFT

// PGOFFSET masks the offset within a page.
const PGOFFSET Pa_t = Pa_t(PGSIZE - 1)

// PGMASK masks the frame number bits of an address.
const PGMASK Pa_t = ^PGOFFSET

// Pa_t is a physical address.
type Pa_t uintptr

// Pg_t is one page's worth of memory, addressed as bytes.
type Pg_t [PGSIZE]uint8

// Page_i is the physical page allocator interface the paging and pipe code
// depend on, mirroring biscuit's mem.Page_i so vm and fd can be written
// against an interface rather than the concrete allocator.
type Page_i interface {
	Refpg_new() (*Pg_t, Pa_t, bool)
	Dmap(Pa_t) *Pg_t
	Free(Pa_t)
}

func pg2pgn(p Pa_t) uint32 {
	return uint32(p >> PGSHIFT)
}

// physpg_t tracks one physical page's position on the free list.
type physpg_t struct {
	free  bool
	nexti uint32
}

// Physmem_t is the single-hart free-list frame allocator. Unlike biscuit's
// Physmem_t, there is exactly one free list: spec.md's Non-goals exclude
// SMP, so there is no per-CPU contention to shard away.
type Physmem_t struct {
	sync.Mutex
	backing []Pg_t     // simulated physical memory, addressed by frame index
	pgs     []physpg_t // metadata parallel to backing
	startn  uint32      // frame number backing[0] corresponds to
	freei   uint32
	freelen int
}

// Physmem is the global physical memory allocator instance, constructed by
// Phys_init during boot (spec.md §2).
var Physmem = &Physmem_t{}

// Zeropg is a zero-filled page allocated once by Phys_init; freshly
// mapped pages get their own zeroed frames and do not reference it.
var Zeropg *Pg_t

// Phys_init reserves npages frames starting at frame number startn. It
// mirrors the signature of the boot-time call the original rCore kernel
// makes in rust_main (kernel_end_pfn, memory_end_pfn), generalized to a
// frame count instead of raw end-of-kernel/end-of-memory page numbers,
// since this reimplementation simulates physical memory as a Go slice
// rather than mapping real DRAM.
func Phys_init(startn uint32, npages int) *Physmem_t {
	phys := Physmem
	phys.backing = make([]Pg_t, npages)
	phys.pgs = make([]physpg_t, npages)
	phys.startn = startn
	for i := 0; i < npages; i++ {
		phys.pgs[i].free = true
		if i == npages-1 {
			phys.pgs[i].nexti = ^uint32(0)
		} else {
			phys.pgs[i].nexti = uint32(i + 1)
		}
	}
	phys.freei = 0
	phys.freelen = npages
	fmt.Printf("reserved %d pages (%dKB)\n", npages, npages*PGSIZE/1024)

	var ok bool
	Zeropg, _, ok = phys.Refpg_new()
	if !ok {
		panic("oom during mem init")
	}
	return phys
}

// Refpg_new allocates a zeroed page and returns its kernel mapping and
// physical address. On exhaustion it returns ok=false rather than
// panicking; the vm page-table and memory-area code that calls it panics
// on that result (spec.md §7: allocator exhaustion panics, there being no
// reserve pool in the core).
func (phys *Physmem_t) Refpg_new() (*Pg_t, Pa_t, bool) {
	phys.Lock()
	if phys.freei == ^uint32(0) {
		phys.Unlock()
		return nil, 0, false
	}
	idx := phys.freei
	phys.freei = phys.pgs[idx].nexti
	phys.pgs[idx].free = false
	phys.freelen--
	phys.Unlock()

	p_pg := Pa_t(idx+phys.startn) << PGSHIFT
	pg := &phys.backing[idx]
	for i := range pg {
		pg[i] = 0
	}
	return pg, p_pg, true
}

// Free returns p_pg to the free list.
func (phys *Physmem_t) Free(p_pg Pa_t) {
	idx := pg2pgn(p_pg) - phys.startn
	phys.Lock()
	defer phys.Unlock()
	if phys.pgs[idx].free {
		panic("double free")
	}
	phys.pgs[idx].free = true
	phys.pgs[idx].nexti = phys.freei
	phys.freei = idx
	phys.freelen++
}

// Dmap returns the direct mapping of physical address p: the Pg_t backing
// the frame p lies within, aligned to the start of that frame. It is the
// "physical window" area handlers use to byte-copy page contents without
// needing the destination address space active (spec.md §4.1).
func (phys *Physmem_t) Dmap(p Pa_t) *Pg_t {
	idx := pg2pgn(p) - phys.startn
	return &phys.backing[idx]
}

// Dmap8 returns a byte slice into the direct map starting at the exact
// (possibly unaligned) physical address p.
func (phys *Physmem_t) Dmap8(p Pa_t) []uint8 {
	pg := phys.Dmap(p)
	off := p & PGOFFSET
	return pg[off:]
}

// Freecount reports the number of free frames.
func (phys *Physmem_t) Freecount() int {
	phys.Lock()
	defer phys.Unlock()
	return phys.freelen
}
