// Package proc is the thread-multiplexing core: Thread, the fixed-slot
// ThreadPool, and the singleton Processor scheduling loop spec.md §3/§4
// describe. biscuit's own proc package ships no source in this retrieval
// pack (an empty stub module), so this package is grounded instead on
// original_source's os/src/process/mod.rs (Thread/ThreadPool/Processor's
// responsibilities and init/execute/run/exit/yield_now/wake_up/spawn
// surface) and on the teacher's general code shape seen elsewhere
// (mutex-embedded _t types, exported doc-commented methods, panics for
// programmer errors) plus gopher-os's bodyless-assembly-boundary pattern
// for the trap/context-switch primitives trap.SwitchTo/trap.TrapReturn.
package proc

import (
	"reflect"
	"unsafe"

	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fd"
	"github.com/rv39core/kernel/trap"
	"github.com/rv39core/kernel/vm"
)

// KstackPages is the number of pages allocated for each thread's kernel
// stack.
const KstackPages = 2

// State_t is a thread's scheduling state (spec.md §3: "fixed-capacity
// slot table with Ready/Running/Sleeping states").
type State_t int

const (
	Unused State_t = iota
	Ready
	Running
	Sleeping
	Dead
)

// Thread is one schedulable execution context: either a kernel thread
// (Vm is nil, runs against the kernel's own address space) or a user
// thread (Vm is the process's MemorySet wrapper, Tf holds the saved user
// register state a trap into the kernel preserved).
type Thread struct {
	Tid   defs.Tid_t
	State State_t

	Vm    *vm.Vm_t
	Ofile *fd.Table_t

	Tf  trap.TrapFrame
	Ctx trap.Context

	kstack []uint64

	Accnt Accnt_t

	// hostWake, when non-nil, is invoked by Processor.Exit when this
	// thread exits, so the thread that launched it via exec(2) and parked
	// can be resumed.
	hostWake func()

	// pendingKernelFn is the closure a freshly built kernel thread should
	// run once trampoline hands control to Go; runPendingKernelFn invokes
	// it, called from trampoline the first time this thread is switched
	// to.
	pendingKernelFn func()
	started         bool
}

// SetHostWake installs the callback invoked when this thread exits
// (spec.md §4.6's exec(2) contract: the caller that launched this thread
// parks until it exits, then is woken).
func (t *Thread) SetHostWake(f func()) {
	t.hostWake = f
}

func newThread() *Thread {
	return &Thread{
		Ofile:  &fd.Table_t{},
		kstack: make([]uint64, KstackPages*vm.PGSIZE/8),
		State:  Ready,
	}
}

// trampoline is the address every freshly created kernel thread's saved
// context resumes at; in a real build it is a small assembly stub that
// loads the function pointer and argument SwitchTo left on the new
// stack and calls into Go. Declared the same way trap.SwitchTo is:
// gopher-os's bodyless-function-plus-assembly pattern, because the very
// first instructions a new kernel thread executes run before any Go
// stack frame exists to call into.
func trampoline()

// NewKernelThread builds a thread that begins executing fn with no user
// address space, used for the idle thread and for proc.Spawn.
func NewKernelThread(fn func()) *Thread {
	t := newThread()
	t.Ctx.Sp = uint64(uintptr(kstackTop(t.kstack)))
	t.Ctx.Ra = uint64(funcAddr(trampoline))
	t.pendingKernelFn = fn
	return t
}

// NewUserThread builds a thread whose first instruction, once scheduled,
// is entry in user mode with the stack pointer set to sp, running against
// the given address space (exec(2) and the boot-time init thread produce
// threads this way, from a freshly loaded Vm and its ELF entry point;
// fork's child is built by Fork instead and resumes at its parent's
// saved Tf with a0 cleared to 0).
func NewUserThread(as *vm.Vm_t, entry, sp uint64) *Thread {
	t := newThread()
	t.Vm = as
	t.Tf.Sepc = entry
	t.Tf.X[trap.SP] = sp
	t.Tf.Sstatus = sstatusSPIE
	setUserEntry(t)
	return t
}

// userTrampoline is the address every freshly built user thread's saved
// context resumes at, the user-mode analogue of trampoline: a small
// assembly stub that calls runPendingUserFn, which drops the hart into
// user mode at the thread's staged Tf. Declared bodyless for the same
// reason trampoline is.
func userTrampoline()

// runPendingUserFn is what userTrampoline calls into once a freshly
// scheduled user thread's context has been restored for the first time.
// It never returns to its caller: trap.TrapReturn executes sret, and the
// thread's next entry into Go is the next trap into the kernel.
func runPendingUserFn(t *Thread) {
	trap.TrapReturn(&t.Tf)
}

// setUserEntry points t's saved context at userTrampoline, with Ctx.Sp
// set just below the staged Tf, mirroring NewKernelThread's Ctx.Ra =
// trampoline wiring. Both fresh user threads (NewUserThread) and fork
// children need this, since both resume for the first time via
// trap.TrapReturn rather than by returning into arbitrary Go code.
func setUserEntry(t *Thread) {
	t.Ctx.Sp = uint64(uintptr(unsafe.Pointer(&t.Tf)))
	t.Ctx.Ra = uint64(funcAddr(userTrampoline))
}

// sstatusSPIE is the sstatus bit that re-enables interrupts once sret
// drops into user mode (SPP is left clear, which is what selects user
// mode rather than supervisor mode on the subsequent sret).
const sstatusSPIE = 1 << 5

func kstackTop(stack []uint64) uintptr {
	return uintptr(unsafe.Pointer(&stack[len(stack)-1])) + 8
}

// funcAddr returns the entry address of a Go function value, used to seed
// a fresh kernel thread's saved return address.
func funcAddr(f func()) uintptr {
	return reflect.ValueOf(f).Pointer()
}
