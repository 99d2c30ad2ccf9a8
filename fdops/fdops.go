// Package fdops holds the small interfaces that decouple the file
// descriptor table from the concrete things a descriptor can refer to
// (an inode reader, a pipe end) and that decouple a byte-moving operation
// from where its other side lives (user virtual memory, a kernel buffer).
// Mirrors biscuit's fdops package, trimmed to the subset spec.md's
// syscall surface exercises: no select/poll, no out-of-band fcntl.
package fdops

import "github.com/rv39core/kernel/defs"

// Userio_i is one side of a copy: something that can read bytes out of
// itself into dst, or write bytes from src into itself. vm.Vm_t implements
// it over a user address space; a plain byte slice implements it for
// kernel-internal callers (e.g. the console's stdin ring buffer).
type Userio_i interface {
	// Uioread copies into dst, returning the number of bytes copied.
	Uioread(dst []uint8) (int, defs.Err_t)
	// Uiowrite copies from src, returning the number of bytes copied.
	Uiowrite(src []uint8) (int, defs.Err_t)
	// Remain reports how many bytes are left to move.
	Remain() int
	// Totalsz reports the total size of the transfer.
	Totalsz() int
}

// Fdops_i is the operation set every open file descriptor exposes,
// regardless of whether it backs a root-fs inode or a pipe end.
type Fdops_i interface {
	// Close releases any resources the descriptor holds.
	Close() defs.Err_t
	// Read copies into dst from the descriptor's current offset.
	Read(dst Userio_i) (int, defs.Err_t)
	// Write copies from src at the descriptor's current offset.
	Write(src Userio_i) (int, defs.Err_t)
	// Reopen is called when a descriptor slot is duplicated (fork).
	Reopen() defs.Err_t
}
