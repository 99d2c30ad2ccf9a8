package proc

import (
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/trap"
	"github.com/rv39core/kernel/vm"
)

// forkEcallSize is the width of the ecall instruction the syscall
// dispatcher's own trap.Sepc advance (syscalls.ecallSize) accounts for.
// Fork copies parent.Tf before that advance runs, so it must apply the
// same correction to the child's copy itself, or the child resumes
// straight back on top of the fork ecall and re-enters fork in a loop.
const forkEcallSize = 4

// Fork builds a child thread that is an eager, independent copy of
// parent: its address space is a deep clone (vm.MemorySet.Clone — no
// copy-on-write, per spec.md's Non-goals) and its open-file table is
// duplicated fd-by-fd. The child's saved trap frame is a copy of the
// parent's with a0 zeroed and sepc advanced past the fork ecall, so that
// when it is first scheduled it resumes just after the same ecall the
// parent is about to resume past, observing a fork(2) return value of 0;
// the parent's own a0 (the tid of the new child) is set by the syscall
// dispatcher, not here. Its saved context is pointed at the user-return
// trampoline exactly as NewUserThread's is, since this is also a thread
// that has never yet been switched to.
func Fork(parent *Thread) (defs.Tid_t, defs.Err_t) {
	ofile, err := parent.Ofile.Clone()
	if err != 0 {
		return 0, err
	}
	child := newThread()
	child.Ofile = ofile
	child.Vm = vm.NewVm(parent.Vm.Ms.Clone())
	child.Tf = parent.Tf
	child.Tf.X[trap.A0] = 0
	child.Tf.Sepc += forkEcallSize
	setUserEntry(child)

	tid, ok := Get().AddThread(child)
	if !ok {
		return 0, -defs.ENOMEM
	}
	return tid, 0
}
