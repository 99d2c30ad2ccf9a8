package proc

import (
	"sync"

	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/limits"
	"github.com/rv39core/kernel/sched"
)

// ThreadPool_t is the fixed-capacity slot table of every thread in the
// system (spec.md §3) combined with the scheduling policy that decides
// which Ready thread runs next. Slot index doubles as tid, exactly like
// original_source's ThreadPool::new(100, scheduler) sizing both the slot
// table and the scheduler's internal vectors off the same capacity.
type ThreadPool_t struct {
	sync.Mutex
	slots [limits.NPROC]*Thread
	sched sched.Scheduler
}

// NewThreadPool constructs an empty pool driven by the given policy.
func NewThreadPool(policy sched.Scheduler) *ThreadPool_t {
	return &ThreadPool_t{sched: policy}
}

// Add installs t into the lowest free slot, assigns its tid, and marks it
// ready. It returns false if the pool is full (spec.md §7: a full thread
// table is a user-recoverable condition for fork(2), not a panic).
func (tp *ThreadPool_t) Add(t *Thread) (defs.Tid_t, bool) {
	tp.Lock()
	defer tp.Unlock()
	for i := range tp.slots {
		if tp.slots[i] == nil {
			tid := defs.Tid_t(i)
			t.Tid = tid
			t.State = Ready
			tp.slots[i] = t
			tp.sched.Push(tid)
			return tid, true
		}
	}
	return 0, false
}

// Get returns the thread installed at tid, or nil.
func (tp *ThreadPool_t) Get(tid defs.Tid_t) *Thread {
	tp.Lock()
	defer tp.Unlock()
	if int(tid) < 0 || int(tid) >= len(tp.slots) {
		return nil
	}
	return tp.slots[tid]
}

// Remove clears tid's slot, freeing it for reuse by a later thread.
func (tp *ThreadPool_t) Remove(tid defs.Tid_t) {
	tp.Lock()
	defer tp.Unlock()
	tp.slots[tid] = nil
}

// Pop asks the scheduling policy for the next ready tid and returns its
// Thread.
func (tp *ThreadPool_t) Pop() *Thread {
	tp.Lock()
	defer tp.Unlock()
	tid, ok := tp.sched.Pop()
	if !ok {
		return nil
	}
	return tp.slots[tid]
}

// Requeue marks t ready again and pushes it back onto the scheduling
// policy, used both for a preempted thread (quantum expired) and a woken
// sleeper.
func (tp *ThreadPool_t) Requeue(t *Thread) {
	tp.Lock()
	defer tp.Unlock()
	t.State = Ready
	tp.sched.Push(t.Tid)
}

// Tick advances the policy's per-tick accounting for whichever thread it
// last popped, returning true if that thread's quantum/stride budget
// says it should be preempted now.
func (tp *ThreadPool_t) Tick() bool {
	tp.Lock()
	defer tp.Unlock()
	return tp.sched.Tick()
}

// Exit tells the scheduling policy tid is no longer a participant.
func (tp *ThreadPool_t) Exit(tid defs.Tid_t) {
	tp.Lock()
	defer tp.Unlock()
	tp.sched.Exit(tid)
}

// SetPriority forwards to the underlying policy's SetPass when it is a
// Stride scheduler, or reports that the active policy doesn't support
// priorities (spec.md §4.4: setpriority only has meaning under stride
// scheduling).
func (tp *ThreadPool_t) SetPriority(tid defs.Tid_t, priority int) defs.Err_t {
	tp.Lock()
	defer tp.Unlock()
	st, ok := tp.sched.(*sched.Stride)
	if !ok {
		return -defs.EINVAL
	}
	if priority <= 0 {
		return -defs.EINVAL
	}
	st.SetPass(tid, 65536/uint64(priority))
	return 0
}
