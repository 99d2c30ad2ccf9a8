// Spawn starts a kernel thread from a host closure instead of an ELF
// image. SUPPLEMENTED FEATURE: spec.md doesn't mention this, and no
// Non-goal excludes it; original_source's os/src/process/mod.rs exposes
// it (`pub fn spawn<F>(f: F)`) and uses it internally for things like
// timer-driven callback dispatch, so it's kept here the same way: wrap
// the closure, hand it to a new kernel thread, and exit(0) when the
// closure returns.
package proc

// Spawn starts a new kernel thread running f, returning once the thread
// has been installed in the pool (not once f has run).
func Spawn(f func()) (t *Thread) {
	t = NewKernelThread(f)
	Get().AddThread(t)
	return t
}

// runPendingKernelFn is what trampoline calls into once a freshly
// scheduled kernel thread's context has been restored for the first
// time; it runs the thread's closure to completion and then exits.
func runPendingKernelFn(t *Thread) {
	defer Get().Exit(0)
	if t.pendingKernelFn != nil {
		t.pendingKernelFn()
	}
}
