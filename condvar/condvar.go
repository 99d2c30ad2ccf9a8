// Package condvar is the wait-queue-of-tids primitive spec.md's pipes and
// sleep-capable syscalls are built on: a thread parks itself on a
// Condvar_t and some other thread wakes it. It is a standalone package
// (rather than living in proc, which would be the more obvious home) so
// that fd/pipe can depend on it without creating an import cycle back to
// proc, which itself depends on fd for a thread's open-file table; proc's
// Processor satisfies the Scheduler_i interface structurally, with no
// import in either direction. Grounded on the wait/notify shape of
// biscuit's condvar usage in its fs/pipe code and on the original
// source's os/src/sync/condvar.rs.
package condvar

import "github.com/rv39core/kernel/defs"

// Scheduler_i is the subset of the scheduler's thread-pool control a
// condition variable needs: the ability to park the calling thread and to
// move a specific thread back onto the ready queue.
type Scheduler_i interface {
	// Sleep blocks the calling thread (tid) until a matching Wakeup.
	// It must be called on the thread's own execution context, and must
	// not return until that thread has been rescheduled.
	Sleep(tid defs.Tid_t)
	// Wakeup moves tid from sleeping to ready.
	Wakeup(tid defs.Tid_t)
	// Current returns the tid of the calling thread.
	Current() defs.Tid_t
}

// Condvar_t is a FIFO queue of threads waiting on some condition
// (spec.md: "wait queue of tids").
type Condvar_t struct {
	sched   Scheduler_i
	waiters []defs.Tid_t
}

// Init binds the condition variable to the scheduler that can park and
// wake its threads.
func (cv *Condvar_t) Init(sched Scheduler_i) {
	cv.sched = sched
}

// Wait parks the calling thread on the condvar. The caller is responsible
// for releasing any lock protecting the condition before calling Wait and
// reacquiring it after Wait returns, exactly as with a standard condition
// variable.
func (cv *Condvar_t) Wait() {
	tid := cv.sched.Current()
	cv.waiters = append(cv.waiters, tid)
	cv.sched.Sleep(tid)
}

// Notify wakes every thread currently waiting on the condvar.
func (cv *Condvar_t) Notify() {
	for _, tid := range cv.waiters {
		cv.sched.Wakeup(tid)
	}
	cv.waiters = cv.waiters[:0]
}

// NotifyOne wakes at most one waiting thread, in FIFO order.
func (cv *Condvar_t) NotifyOne() {
	if len(cv.waiters) == 0 {
		return
	}
	tid := cv.waiters[0]
	cv.waiters = cv.waiters[1:]
	cv.sched.Wakeup(tid)
}
