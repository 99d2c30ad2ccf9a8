package proc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rv39core/kernel/util"
)

// Accnt_t accumulates per-thread CPU accounting: nanoseconds spent
// running in user mode versus nanoseconds spent in the kernel on this
// thread's behalf. spec.md's times(2) only requires the raw tick count
// (cycle_counter/200000); Accnt_t is the supplemental bookkeeping
// SPEC_FULL.md adds for a user/system split. times(2) does not read it:
// it returns only the raw tick count. Adapted from biscuit's accnt
// package, dropping the Io_time/Sleep_time adjustments (no disk or
// network I/O exists in this kernel to charge time against).
type Accnt_t struct {
	Userns int64
	Sysns  int64
	sync.Mutex
}

// Utadd adds delta nanoseconds to the user-time counter.
func (a *Accnt_t) Utadd(delta int64) {
	atomic.AddInt64(&a.Userns, delta)
}

// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt_t) Systadd(delta int64) {
	atomic.AddInt64(&a.Sysns, delta)
}

// Now returns the current time in nanoseconds, the clock Utadd/Systadd
// deltas are measured against.
func (a *Accnt_t) Now() int64 {
	return time.Now().UnixNano()
}

// To_rusage serializes the accounting record as two timeval pairs
// (user, then system), each field an 8-byte little-endian integer.
func (a *Accnt_t) To_rusage() []uint8 {
	a.Lock()
	defer a.Unlock()
	ret := make([]uint8, 4*8)
	totv := func(nano int64) (int, int) {
		return int(nano / 1e9), int((nano % 1e9) / 1000)
	}
	off := 0
	for _, ns := range []int64{a.Userns, a.Sysns} {
		s, us := totv(ns)
		util.Writen(ret, 8, off, s)
		off += 8
		util.Writen(ret, 8, off, us)
		off += 8
	}
	return ret
}
