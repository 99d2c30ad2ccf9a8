// Package console is fd 0's stdin: an SBI-console-backed circbuf filled
// by a background kernel thread and drained one byte at a time by
// read(2), sleeping-and-retrying on empty exactly like a pipe read
// (spec.md §4.6: "fd=0: one byte from console stdin (blocking)").
// Grounded on biscuit's circbuf package (reassigned here from its
// original network-buffer role to this one, per SPEC_FULL.md) plus
// gopher-os's ISR-fills-ring-buffer/reader-drains-it split, adapted to a
// cooperative single-hart scheduler where the "ISR" is a polling kernel
// thread rather than a real interrupt handler (the legacy SBI console
// has no interrupt of its own — ConsoleGetchar is a poll).
package console

import (
	"sync"

	"github.com/rv39core/kernel/circbuf"
	"github.com/rv39core/kernel/condvar"
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/mem"
	"github.com/rv39core/kernel/sbi"
	"github.com/rv39core/kernel/vm"
)

// stdinBufBytes is the backing ring buffer's capacity; one page is far
// more than a teaching kernel's interactive shell ever needs buffered.
const stdinBufBytes = mem.PGSIZE

type stdin_t struct {
	sync.Mutex
	buf   circbuf.Circbuf_t
	ready condvar.Condvar_t
}

var stdin stdin_t

// Init allocates stdin's backing page and wires it to sched, the same
// condvar.Scheduler_i a pipe's dataready condvar uses.
func Init(sched condvar.Scheduler_i, phys mem.Page_i) {
	if err := stdin.buf.Init(stdinBufBytes, phys); err != 0 {
		panic("allocating stdin ring buffer")
	}
	stdin.ready.Init(sched)
}

// Poll never returns: it is the body of the dedicated kernel thread that
// repeatedly polls the SBI console and appends whatever byte arrives to
// the ring buffer, yielding the hart on every miss so other threads make
// progress between bytes.
func Poll(yield func()) {
	for {
		c, ok := (sbi.Console{}).ReadByte()
		if !ok {
			yield()
			continue
		}
		stdin.Lock()
		stdin.buf.Copyin(&vm.KernelUio_t{Buf: []uint8{c}})
		stdin.Unlock()
		stdin.ready.Notify()
	}
}

// ReadByte blocks until a byte is available from the console and returns
// it.
func ReadByte() (uint8, defs.Err_t) {
	stdin.Lock()
	for stdin.buf.Empty() {
		stdin.Unlock()
		stdin.ready.Wait()
		stdin.Lock()
	}
	dst := &vm.KernelUio_t{Buf: make([]uint8, 1)}
	if _, err := stdin.buf.Copyout(dst); err != 0 {
		stdin.Unlock()
		return 0, err
	}
	stdin.Unlock()
	return dst.Buf[0], 0
}
