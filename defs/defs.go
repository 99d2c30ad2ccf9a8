// Package defs holds the small cross-cutting types shared by every kernel
// package: the error and identifier types, and the fixed syscall numbers.
package defs

// Err_t is a negative errno-style result. Zero means success. Every
// user-recoverable failure (spec.md §7) is surfaced this way; programmer
// errors panic instead of returning an Err_t.
type Err_t int

// Error constants returned by syscalls on user-recoverable failure.
const (
	ENOENT       Err_t = 2
	ESRCH        Err_t = 3
	EBADF        Err_t = 9
	ENOMEM       Err_t = 12
	EFAULT       Err_t = 14
	EEXIST       Err_t = 17
	EINVAL       Err_t = 22
	EMFILE       Err_t = 24
	EPIPE        Err_t = 32
	ENAMETOOLONG Err_t = 36
	EROFS        Err_t = 30
)

// Tid_t is a thread identifier, equal to the thread's slot index in the
// ThreadPool (glossary: Tid).
type Tid_t int

// Syscall numbers. Fixed and compatible with a small subset of the Linux
// RV64 numbering (spec.md §4.6, §6).
const (
	SYS_OPEN        = 56
	SYS_CLOSE       = 57
	SYS_PIPE        = 59
	SYS_READ        = 63
	SYS_WRITE       = 64
	SYS_EXIT        = 93
	SYS_SETPRIORITY = 140
	SYS_TIMES       = 153
	SYS_FORK        = 220
	SYS_EXEC        = 221
)
