package proc

import (
	"testing"

	"github.com/rv39core/kernel/sched"
	"github.com/rv39core/kernel/trap"
	"github.com/rv39core/kernel/vm"
)

func TestForkClonesAddressSpaceAndClearsA0(t *testing.T) {
	Init(NewKernelThread(func() {}), NewThreadPool(sched.NewRR(5)))
	Get().AddThread(Get().idle)

	ms := vm.NewMemorySet()
	ms.Push(&vm.MemoryArea{
		Start:   0x10000,
		End:     0x10000 + uintptr(vm.PGSIZE),
		Attr:    vm.MemoryAttr{User: true},
		Handler: vm.NewByFrameHandler(),
	})
	parent := NewUserThread(vm.NewVm(ms), 0x10000, 0x20000)
	parent.Tf.X[trap.A0] = 42
	if _, ok := Get().AddThread(parent); !ok {
		t.Fatal("AddThread(parent) failed")
	}

	childTid, err := Fork(parent)
	if err != 0 {
		t.Fatalf("Fork: %d", err)
	}
	child := Get().pool.Get(childTid)
	if child == nil {
		t.Fatal("Fork's child was not installed in the pool")
	}
	if child.Tf.X[trap.A0] != 0 {
		t.Fatalf("child.Tf.X[A0] = %d, want 0 (fork(2) returns 0 in the child)", child.Tf.X[trap.A0])
	}
	if child.Tf.Sepc != parent.Tf.Sepc+forkEcallSize {
		t.Fatalf("child.Tf.Sepc = %#x, want %#x (child resumes just past the fork ecall)", child.Tf.Sepc, parent.Tf.Sepc+forkEcallSize)
	}
	if child.Ctx.Ra != uint64(funcAddr(userTrampoline)) {
		t.Fatal("child's saved context should resume at the user-return trampoline")
	}
	if child.Ctx.Sp == 0 {
		t.Fatal("child's saved context should have a non-zero stack pointer")
	}
	if child.Vm.Ms == parent.Vm.Ms {
		t.Fatal("Fork should deep-clone the address space, not share it")
	}
	if _, ok := child.Vm.Ms.Lookup(0x10000); !ok {
		t.Fatal("cloned address space is missing the parent's mapped area")
	}
}
