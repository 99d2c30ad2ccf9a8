package proc

import (
	"sync"

	"github.com/rv39core/kernel/caller"
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/kstat"
	"github.com/rv39core/kernel/trap"
	"github.com/rv39core/kernel/vm"
)

// Processor is the single hart's scheduling loop: a singleton (spec.md
// excludes SMP, so there is exactly one) that always returns to an idle
// thread between switches, the same shape original_source's
// Processor/CPU::run()/idle_main pairing describes. The idle thread's
// context is the hub every other switch passes through: a ready thread is
// switched to from idle, and switches back to idle (rather than directly
// to the next ready thread) whenever it yields, sleeps, or exits.
type Processor struct {
	sync.Mutex
	pool    *ThreadPool_t
	idle    *Thread
	current *Thread
	ticks   uint64
	timer   timerWheel
}

// global is the kernel-wide Processor instance.
var global = &Processor{}

// Init installs the idle thread and the thread pool the scheduling loop
// will run against. Called once during boot (spec.md §2).
func Init(idle *Thread, pool *ThreadPool_t) {
	global.idle = idle
	global.pool = pool
}

// Get returns the kernel-wide Processor.
func Get() *Processor { return global }

// AddThread installs t into the pool and returns its tid.
func (p *Processor) AddThread(t *Thread) (defs.Tid_t, bool) {
	return p.pool.Add(t)
}

// CurrentTid returns the tid of the thread currently running on the hart.
func (p *Processor) CurrentTid() defs.Tid_t {
	if p.current == nil {
		return -1
	}
	return p.current.Tid
}

// Current satisfies condvar.Scheduler_i.
func (p *Processor) Current() defs.Tid_t { return p.CurrentTid() }

// CurrentThread returns the Thread currently running on the hart.
func (p *Processor) CurrentThread() *Thread { return p.current }

// runOne switches from idle into t, returning once t has switched back
// (yielded, slept, or exited).
func (p *Processor) runOne(t *Thread) {
	p.current = t
	t.State = Running
	kstat.Global.Switches.Inc()
	if !t.started {
		t.started = true
	}
	trap.SwitchTo(&p.idle.Ctx, &t.Ctx)
	p.current = nil
}

// Run is the hart's main scheduling loop, entered once at boot after the
// kernel's own initialization and never returning. It repeatedly pops the
// next ready thread and runs it until that thread hands control back.
func (p *Processor) Run() {
	for {
		t := p.pool.Pop()
		if t == nil {
			// no ready thread: spin in place, identical in spirit to the
			// original idle_main's busy loop while waiting for a timer
			// interrupt to wake something.
			continue
		}
		p.runOne(t)
	}
}

// YieldNow voluntarily gives up the hart: the calling thread (which must
// be p.current) is requeued as Ready and control returns to idle, from
// where the scheduling loop will eventually run it again.
func (p *Processor) YieldNow() {
	cur := p.current
	if cur == nil {
		panic("yield with no current thread")
	}
	p.pool.Requeue(cur)
	trap.SwitchTo(&cur.Ctx, &p.idle.Ctx)
}

// Sleep parks tid, which must be the calling thread (a cooperative
// scheduler can only put its own caller to sleep), until a matching
// Wakeup. It satisfies condvar.Scheduler_i.
func (p *Processor) Sleep(tid defs.Tid_t) {
	cur := p.current
	if cur == nil || cur.Tid != tid {
		panic("sleeping a thread other than the current one")
	}
	cur.State = Sleeping
	trap.SwitchTo(&cur.Ctx, &p.idle.Ctx)
}

// Wakeup moves tid from Sleeping back to Ready, re-entering it into the
// scheduling policy. Waking a thread that isn't sleeping is a no-op
// (matches original_source's wake_up, which only acts if the tid is
// actually parked).
func (p *Processor) Wakeup(tid defs.Tid_t) {
	t := p.pool.Get(tid)
	if t == nil || t.State != Sleeping {
		return
	}
	p.pool.Requeue(t)
}

// Park is the no-argument form Sleep-on-self calls use when there is no
// separate condvar bookkeeping: it simply yields the hart without
// requeuing the caller, so the thread stays off the ready list until an
// explicit Wakeup(tid) call brings it back.
func (p *Processor) Park() {
	cur := p.current
	if cur == nil {
		panic("park with no current thread")
	}
	cur.State = Sleeping
	trap.SwitchTo(&cur.Ctx, &p.idle.Ctx)
}

// Exit terminates the calling thread: its resources are released, the
// scheduling policy forgets it, its slot is freed, and the hart returns
// to idle for good (an exited thread's context is never switched back
// to).
func (p *Processor) Exit(code int) {
	defer caller.Recover("thread exit")
	cur := p.current
	if cur == nil {
		panic("exit with no current thread")
	}
	kstat.Global.Exits.Inc()
	cur.State = Dead
	if cur.Vm != nil {
		// releasing a process's address space frees every ByFrameHandler
		// page it owns; nothing further to do since this kernel carries
		// no COW refcounts to drop (spec.md's Non-goals exclude COW).
		ms := cur.Vm.Ms
		for _, a := range ms.Areas() {
			for va := a.Start; va < a.End; va += uintptr(vm.PGSIZE) {
				a.Handler.Unmap(ms.PageTable, va)
			}
		}
	}
	if cur.hostWake != nil {
		cur.hostWake()
	}
	p.pool.Exit(cur.Tid)
	p.pool.Remove(cur.Tid)
	trap.SwitchTo(&cur.Ctx, &p.idle.Ctx)
}

// Tick is called once per timer interrupt (spec.md §6): it advances the
// scheduling policy's per-tick accounting, preempting the current thread
// if its quantum/stride budget says to, and fires any sleep-timer
// callbacks whose deadline has arrived.
func (p *Processor) Tick() {
	p.ticks++
	kstat.Global.Ticks.Inc()
	kstat.Record(int64(p.ticks), "tick", 1)
	p.timer.tick(p.ticks)
	if p.current != nil && p.pool.Tick() {
		p.YieldNow()
	}
}

// SetPriority forwards to the pool's SetPriority, spec.md §4.6's
// setpriority(p) syscall.
func (p *Processor) SetPriority(tid defs.Tid_t, priority int) defs.Err_t {
	return p.pool.SetPriority(tid, priority)
}

// Now returns the current tick count, the clock SleepTicks measures
// deadlines against.
func (p *Processor) Now() uint64 { return p.ticks }

// SleepTicks arms cb to run after delta ticks have elapsed, the
// {deadline_tick, callback} timer wheel entry spec.md describes.
func (p *Processor) SleepTicks(delta uint64, cb func()) {
	p.timer.add(p.ticks+delta, cb)
}
