// Package replace implements the FIFO-with-second-chance page-replacement
// policy spec.md describes: push_frame/choose_victim/tick, selecting a
// victim frame without ever evicting it (spec.md's Non-goals exclude
// swap-out — the policy only ever nominates a victim; eviction is a hook
// left for a caller that does not exist in this kernel). Grounded on
// original_source's os/src/memory/page_replace/fifo.rs, which walks a
// FIFO queue of (vaddr, page-table) pairs checking each candidate's
// accessed bit before evicting it. The original wraps each page table in
// Arc<Mutex<_>> for safe sharing between the MemorySet that owns it and
// the replacement queue that references it without owning it (spec.md §9
// calls this out explicitly as a "shared-mutable cyclic reference");
// Go's garbage collector makes the Arc unnecessary; the Mutex carries
// over as vm.PageTable_t has no internal lock of its own, and two
// goroutines could in principle inspect the same page table's entries
// concurrently with the scheduler moving threads around.
package replace

import (
	"sync"

	"github.com/rv39core/kernel/vm"
)

// Frame is one candidate this policy is tracking: a virtual address
// inside a particular address space's page table.
type Frame struct {
	Vaddr uintptr
	PT    *vm.PageTable_t
}

// FifoReplacer_t is a FIFO queue of pushed frames with second-chance
// promotion: a candidate whose accessed bit is set is cleared and moved
// to the back instead of being chosen.
type FifoReplacer_t struct {
	sync.Mutex
	frames []Frame
}

// PushFrame records a newly mapped frame as a replacement candidate.
func (r *FifoReplacer_t) PushFrame(vaddr uintptr, pt *vm.PageTable_t) {
	r.Lock()
	defer r.Unlock()
	r.frames = append(r.frames, Frame{Vaddr: vaddr, PT: pt})
}

// ChooseVictim scans the queue from its oldest entry, giving any
// recently-accessed page a second chance (clearing PTE_A and requeuing it
// at the back) before settling on the first candidate it finds with
// PTE_A already clear. It returns false if there are no candidates left.
func (r *FifoReplacer_t) ChooseVictim() (Frame, bool) {
	r.Lock()
	defer r.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	for {
		cand := r.frames[0]
		pte, ok := cand.PT.Walk(cand.Vaddr, false)
		if !ok || *pte&vm.PTE_V == 0 {
			// the mapping is gone (unmapped since being queued); drop it
			// and keep looking.
			r.frames = r.frames[1:]
			if len(r.frames) == 0 {
				return Frame{}, false
			}
			continue
		}
		if *pte&vm.PTE_A != 0 {
			*pte &^= vm.PTE_A
			r.frames = append(r.frames[1:], cand)
			continue
		}
		r.frames = r.frames[1:]
		return cand, true
	}
}

// Tick is called once per timer interrupt; the FIFO policy itself needs
// no periodic bookkeeping (unlike the Stride scheduler's per-tick stride
// update), but the hook exists so callers can treat every replacement
// policy uniformly.
func (r *FifoReplacer_t) Tick() {}

// Len reports the number of candidate frames currently tracked.
func (r *FifoReplacer_t) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.frames)
}
