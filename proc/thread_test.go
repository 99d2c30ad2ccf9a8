package proc

import (
	"testing"

	"github.com/rv39core/kernel/mem"
	"github.com/rv39core/kernel/trap"
	"github.com/rv39core/kernel/vm"
)

func TestMain(m *testing.M) {
	mem.Phys_init(0, 8192)
	m.Run()
}

func TestNewKernelThreadSetsUpContext(t *testing.T) {
	called := false
	th := NewKernelThread(func() { called = true })
	if th.Ctx.Sp == 0 {
		t.Fatal("NewKernelThread should set a non-zero kernel stack pointer")
	}
	if th.pendingKernelFn == nil {
		t.Fatal("NewKernelThread should record the thread's entry function")
	}
	th.pendingKernelFn()
	if !called {
		t.Fatal("pendingKernelFn should invoke the function passed to NewKernelThread")
	}
}

func TestNewUserThreadSetsEntryAndStack(t *testing.T) {
	ms := vm.NewMemorySet()
	as := vm.NewVm(ms)
	th := NewUserThread(as, 0x1000, 0x2000)
	if th.Tf.Sepc != 0x1000 {
		t.Fatalf("Tf.Sepc = %#x, want 0x1000", th.Tf.Sepc)
	}
	if th.Tf.X[trap.SP] != 0x2000 {
		t.Fatalf("Tf.X[SP] = %#x, want 0x2000", th.Tf.X[trap.SP])
	}
	if th.Tf.Sstatus&sstatusSPIE == 0 {
		t.Fatal("NewUserThread should set SPIE so interrupts are enabled after sret")
	}
	if th.Vm != as {
		t.Fatal("NewUserThread should record the given address space")
	}
	if th.Ctx.Ra != uint64(funcAddr(userTrampoline)) {
		t.Fatal("NewUserThread should point the saved context at the user-return trampoline")
	}
	if th.Ctx.Sp == 0 {
		t.Fatal("NewUserThread should set a non-zero saved stack pointer")
	}
}

func TestSetHostWake(t *testing.T) {
	th := newThread()
	woke := false
	th.SetHostWake(func() { woke = true })
	th.hostWake()
	if !woke {
		t.Fatal("hostWake callback installed by SetHostWake should run when invoked")
	}
}
