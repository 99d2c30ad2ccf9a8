// Command kernel is the boot entry point spec.md §2/§6 describes:
// entry64.asm sets up an initial stack and jumps here with
// (kernel_end_pfn, memory_end_pfn); this reimplementation simulates that
// with a fixed page count instead of real DRAM geometry, since mem.Pg_t
// is a Go slice rather than physical memory. Grounded on original_source's
// rust_main (init.rs): memory, then interrupts/timer, then filesystem,
// then process, then run forever.
package main

import (
	"github.com/rv39core/kernel/config"
	"github.com/rv39core/kernel/console"
	"github.com/rv39core/kernel/elf"
	"github.com/rv39core/kernel/fs"
	"github.com/rv39core/kernel/klog"
	"github.com/rv39core/kernel/mem"
	"github.com/rv39core/kernel/proc"
	"github.com/rv39core/kernel/sbi"
	"github.com/rv39core/kernel/sched"
)

// totalPages is how many simulated physical pages Phys_init reserves;
// chosen generously for a teaching kernel's handful of threads and one
// bundled binary.
const totalPages = 8192

func main() {
	mem.Phys_init(0, totalPages)
	klog.Banner("memory")

	policy := newPolicy(config.SchedulerPolicy)
	pool := proc.NewThreadPool(policy)
	idle := proc.NewKernelThread(idleBody)
	proc.Init(idle, pool)
	if _, ok := proc.Get().AddThread(idle); !ok {
		klog.Fatal("installing idle thread")
	}
	klog.Banner("process")

	console.Init(proc.Get(), mem.Physmem)
	proc.Spawn(func() { console.Poll(proc.Get().YieldNow) })
	klog.Banner("console")

	sbi.SetTimer(sbi.ReadTime() + sbi.TimeBase)
	klog.Banner("timer")

	root := fs.Mount()
	for _, path := range config.RootfsEntries {
		if _, err := root.Lookup([]byte(path)); err != 0 {
			klog.Fatal("bundled rootfs missing required entry %q", path)
		}
	}
	klog.Banner("fs")

	spawnInit(root)
	proc.Get().Run()
}

// newPolicy builds the scheduling policy named by config.SchedulerPolicy
// (spec.md §4.4 names round-robin and stride; any other value is a build
// misconfiguration, not a runtime condition, so it panics).
func newPolicy(name string) sched.Scheduler {
	switch name {
	case "rr":
		return sched.NewRR(config.RRQuantumTicks)
	case "stride":
		return sched.NewStride()
	default:
		klog.Fatal("unknown scheduler_policy %q in kernel.yaml", name)
		panic("unreachable")
	}
}

// idleBody is the hart's idle kernel thread: spec.md §4.5 describes it
// as "enable interrupts, loop { acquire(); if None -> wait-for-interrupt;
// else switch }" — Processor.Run already is that loop, so the idle
// thread's own body never runs in steady state; it exists only to give
// runOne somewhere to switch from on the very first schedule.
func idleBody() {}

// spawnInit execs the bundled shell as the system's first user thread by
// reusing the same exec(2) machinery a running shell would call on
// itself, with no host to park a caller against: rv39core's cmd/kernel
// has no shell of its own to call exec from, so it builds the first user
// thread directly instead of going through the syscalls.Dispatch path,
// grounded on original_source's process::execute(path, host: None) call
// in rust_main.
func spawnInit(root *fs.Root_t) {
	inode, err := root.Lookup([]byte("rust/user_shell"))
	if err != 0 {
		klog.Fatal("bundled rootfs has no init binary")
	}
	img, lerr := elf.Load(inode.ReadAsVec())
	if lerr != nil {
		klog.Fatal("loading init binary: %v", lerr)
	}
	t := proc.NewUserThread(img.Vm, img.Entry, img.StackSp)
	if _, ok := proc.Get().AddThread(t); !ok {
		klog.Fatal("installing init thread: thread pool full")
	}
}
