// Package trap is the declared-but-not-defined boundary spec.md §6 treats
// as a black box: the trap vector that builds a TrapFrame on entry to
// supervisor mode and the context-switch primitive that swaps one
// kernel-mode register set for another. Neither is implementable in Go
// source — a trap vector must be the very first instruction executed
// after an exception, with no Go calling convention or stack in place
// yet — so, following gopher-os's cpu_amd64.go precedent (bodyless Go
// function declarations whose bodies live in architecture-specific
// assembly outside this module's scope), this package only declares the
// primitives the rest of the kernel calls against.
package trap

// TrapFrame is the supervisor-mode register save area the trap vector
// builds on entry and restores on sret: the 31 general-purpose registers
// other than the hardwired x0, plus sstatus, sepc, and scause (spec.md
// §6's 34-doubleword layout).
type TrapFrame struct {
	X      [31]uint64 // x1 (ra) through x31; X[0] is x1, X[9] is a0 (x10)
	Sstatus uint64
	Sepc    uint64
	Scause  uint64
}

// General-purpose register indices into TrapFrame.X, named for the ones
// the syscall dispatcher and thread setup touch directly.
const (
	RA = 0  // x1: return address
	SP = 1  // x2: stack pointer
	A0 = 9  // x10: syscall return value / first argument
	A1 = 10 // x11
	A2 = 11 // x12
	A3 = 12 // x13
	A4 = 13 // x14
	A5 = 14 // x15
	A7 = 16 // x17: syscall number
)

// Context is the callee-saved register set a kernel-to-kernel switch
// must preserve: ra, sp, and the twelve saved registers s0-s11.
type Context struct {
	Ra uint64
	Sp uint64
	S  [12]uint64
}

// SwitchTo saves the currently running context into old and restores new,
// resuming execution at whatever point new was last switched away from.
// It is the kernel-mode half of spec.md's "trap-driven context switch":
// the trap vector gets a thread into the kernel, SwitchTo moves the hart
// from one kernel stack to another.
func SwitchTo(old, new *Context)

// TrapReturn restores tf into the hart's registers and executes sret,
// dropping to user mode at tf.Sepc. It does not return to its Go caller
// in the normal sense: control resumes wherever the next trap vector
// entry delivers it.
func TrapReturn(tf *TrapFrame)

// SetSATP writes token to the satp CSR and issues a full sfence.vma,
// activating the page table the token encodes (spec.md §4.1's
// MODE|ASID|PPN format, built by vm.PageTable_t.Token).
func SetSATP(token uintptr)

