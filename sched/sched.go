// Package sched implements the two scheduling policies spec.md describes:
// round-robin and stride scheduling, both satisfying the same small
// Scheduler interface so proc.ThreadPool can be built against either one.
// Grounded directly on original_source's os/src/process/scheduler.rs,
// translated field-for-field from its Vec<RRInfo>/Vec<StridePassInfo>
// representation into Go slices; the algorithms (the RR sentinel-at-index-0
// circular list, the stride scheduler's linear min-stride scan) are kept
// unchanged from the original.
package sched

import "github.com/rv39core/kernel/defs"

// Scheduler is the policy interface proc.ThreadPool drives: push a
// newly-runnable thread, pop the next one to run, advance the current
// thread's accounting by one tick (reporting whether its quantum/stride
// budget says it should yield), and drop a thread that has exited.
type Scheduler interface {
	Push(tid defs.Tid_t)
	Pop() (defs.Tid_t, bool)
	Tick() bool
	Exit(tid defs.Tid_t)
}

// rrInfo is one thread's position in the RR circular list plus its
// remaining quantum.
type rrInfo struct {
	valid bool
	time  int
	prev  int
	next  int
}

// RR implements round-robin scheduling over a fixed quantum
// (max_time_slice). Slot 0 is a permanent sentinel so the list is
// circular without a nil check at either end, exactly as the original
// Rust implementation's RRScheduler does.
type RR struct {
	threads     []rrInfo
	maxTime     int
	current     int
}

// NewRR constructs a round-robin scheduler with the given per-thread
// quantum, measured in timer ticks.
func NewRR(maxTimeSlice int) *RR {
	return &RR{threads: []rrInfo{{}}, maxTime: maxTimeSlice}
}

// Push inserts tid at the back of the ready list. If the thread has not
// run before (or has fully exhausted its quantum), its time slice is
// refilled to the full maxTime; a thread pushed back after only a
// partial quantum (e.g. after being woken mid-slice) resumes with
// whatever quantum it had left. This mirrors the original scheduler.rs
// exactly and is the resolution to spec.md's open question about
// mid-quantum resumption: a thread's unused quantum is preserved across a
// sleep/wake cycle rather than being reset to the maximum every time it
// becomes ready again.
func (r *RR) Push(tid defs.Tid_t) {
	i := int(tid) + 1
	if i+1 > len(r.threads) {
		grown := make([]rrInfo, i+1)
		copy(grown, r.threads)
		r.threads = grown
	}
	if r.threads[i].time == 0 {
		r.threads[i].time = r.maxTime
	}
	prev := r.threads[0].prev
	r.threads[i].valid = true
	r.threads[prev].next = i
	r.threads[i].prev = prev
	r.threads[0].prev = i
	r.threads[i].next = 0
}

// Pop removes and returns the thread at the front of the ready list.
func (r *RR) Pop() (defs.Tid_t, bool) {
	ret := r.threads[0].next
	if ret == 0 {
		return 0, false
	}
	next := r.threads[ret].next
	prev := r.threads[ret].prev
	r.threads[next].prev = prev
	r.threads[prev].next = next
	r.threads[ret].prev = 0
	r.threads[ret].next = 0
	r.threads[ret].valid = false
	r.current = ret
	return defs.Tid_t(ret - 1), true
}

// Tick decrements the current thread's remaining quantum and reports
// whether it has just been exhausted (signalling the caller should
// preempt it back onto the ready list).
func (r *RR) Tick() bool {
	tid := r.current
	if tid == 0 {
		return true
	}
	r.threads[tid].time--
	return r.threads[tid].time == 0
}

// Exit forgets tid as the current thread, if it was.
func (r *RR) Exit(tid defs.Tid_t) {
	i := int(tid) + 1
	if r.current == i {
		r.current = 0
	}
}

// strideInfo is one thread's stride-scheduling bookkeeping.
type strideInfo struct {
	valid  bool
	stride uint64
	pass   uint64
}

// defaultPass is the pass value a newly created thread starts with,
// matching the original's StridePassInfo default of 65536 (spec.md §4.4:
// setpriority divides this constant by the requested priority).
const defaultPass uint64 = 65536

// Stride implements stride scheduling: each ready thread advances its
// stride by its pass on every tick it runs, and Pop always picks the
// thread with the smallest stride, giving threads with a smaller pass
// (set via SetPass, i.e. higher priority) a proportionally larger share
// of ticks.
type Stride struct {
	threads []strideInfo
	current int
	hasCur  bool
}

// NewStride constructs an empty stride scheduler.
func NewStride() *Stride {
	return &Stride{}
}

func (s *Stride) ensure(tid defs.Tid_t) {
	if int(tid) >= len(s.threads) {
		grown := make([]strideInfo, tid+1)
		copy(grown, s.threads)
		for i := len(s.threads); i <= int(tid); i++ {
			grown[i] = strideInfo{pass: defaultPass}
		}
		s.threads = grown
	}
}

// Push marks tid ready. A thread's stride and pass survive across
// repeated pushes (sleep/wake, quantum expiry); only a thread seen for
// the first time gets the default pass.
func (s *Stride) Push(tid defs.Tid_t) {
	s.ensure(tid)
	s.threads[tid].valid = true
}

// Pop returns the ready thread with the smallest stride, ties broken by
// lowest tid (the original's linear left-to-right scan has this same
// tie-breaking behavior incidentally, by always keeping the
// first-encountered minimum).
func (s *Stride) Pop() (defs.Tid_t, bool) {
	idx := -1
	for i := range s.threads {
		if s.threads[i].valid && (idx == -1 || s.threads[i].stride < s.threads[idx].stride) {
			idx = i
		}
	}
	if idx == -1 {
		return 0, false
	}
	s.threads[idx].valid = false
	s.current = idx
	s.hasCur = true
	return defs.Tid_t(idx), true
}

// Tick advances the current thread's stride by its pass. Stride
// scheduling has no fixed quantum, so it always reports true: the caller
// preempts the current thread on every tick and the next Pop picks the
// smallest stride again.
func (s *Stride) Tick() bool {
	if s.hasCur {
		s.threads[s.current].stride += s.threads[s.current].pass
	}
	return true
}

// Exit forgets tid as the current thread, if it was.
func (s *Stride) Exit(tid defs.Tid_t) {
	if s.hasCur && defs.Tid_t(s.current) == tid {
		s.hasCur = false
	}
}

// SetPass sets tid's pass value directly, the mechanism setpriority(2)
// uses (spec.md §4.4: pass = 65536/priority). This is the resolution to
// spec.md's open question about how setpriority should reach the
// scheduler's internal state: as a method on Stride rather than by
// exposing the threads slice itself, keeping the representation private.
func (s *Stride) SetPass(tid defs.Tid_t, pass uint64) {
	s.ensure(tid)
	s.threads[tid].pass = pass
}
