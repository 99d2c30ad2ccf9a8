// Package limits centralizes the fixed-capacity numbers the rest of the
// kernel is built around, the way biscuit's limits package centralizes its
// Syslimit_t. A teaching kernel on a single hart has no dynamic resource
// accounting (no rlimits, no OOM handling — spec.md's allocator exhausts by
// panicking); what it does have is a handful of compile-time table sizes
// that several packages need to agree on.
package limits

// NOFILE is the number of fd slots in a thread's ofile table.
const NOFILE = 32

// NPROC is the thread pool's fixed slot-table capacity (spec.md §3,
// "Thread pool").
const NPROC = 100

// MaxPathLen bounds a Userstr copy of an open(2)/exec(2) path.
const MaxPathLen = 128
