package proc

import (
	"testing"

	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/sched"
)

func TestAddAssignsTidAndMarksReady(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	th := newThread()
	tid, ok := tp.Add(th)
	if !ok {
		t.Fatal("Add failed on an empty pool")
	}
	if tid != 0 {
		t.Fatalf("first Add assigned tid %d, want 0", tid)
	}
	if th.State != Ready {
		t.Fatalf("thread state after Add = %v, want Ready", th.State)
	}
	if tp.Get(tid) != th {
		t.Fatal("Get did not return the thread installed by Add")
	}
}

func TestAddFullPoolFails(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	var last defs.Tid_t
	var ok bool
	for i := 0; i < 1000; i++ {
		last, ok = tp.Add(newThread())
		if !ok {
			return
		}
	}
	t.Fatalf("pool never reported full (last tid %d)", last)
}

func TestRemoveFreesSlot(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	th := newThread()
	tid, _ := tp.Add(th)
	tp.Remove(tid)
	if tp.Get(tid) != nil {
		t.Fatal("Get after Remove should return nil")
	}
	// the freed slot should be reusable.
	th2 := newThread()
	tid2, ok := tp.Add(th2)
	if !ok || tid2 != tid {
		t.Fatalf("Add after Remove = (%d, %v), want (%d, true)", tid2, ok, tid)
	}
}

func TestPopReturnsAddedThread(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	th := newThread()
	tp.Add(th)
	got := tp.Pop()
	if got != th {
		t.Fatal("Pop did not return the thread pushed by Add")
	}
	if tp.Pop() != nil {
		t.Fatal("Pop on an empty ready list should return nil")
	}
}

func TestRequeueMakesThreadPoppableAgain(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	th := newThread()
	tp.Add(th)
	tp.Pop()
	th.State = Sleeping
	tp.Requeue(th)
	if th.State != Ready {
		t.Fatalf("state after Requeue = %v, want Ready", th.State)
	}
	if tp.Pop() != th {
		t.Fatal("Pop after Requeue should return the requeued thread")
	}
}

func TestSetPriorityRejectedUnderRR(t *testing.T) {
	tp := NewThreadPool(sched.NewRR(5))
	th := newThread()
	tid, _ := tp.Add(th)
	if err := tp.SetPriority(tid, 4); err != -defs.EINVAL {
		t.Fatalf("SetPriority under RR = %d, want -EINVAL", err)
	}
}

func TestSetPriorityAcceptedUnderStride(t *testing.T) {
	tp := NewThreadPool(sched.NewStride())
	th := newThread()
	tid, _ := tp.Add(th)
	if err := tp.SetPriority(tid, 4); err != 0 {
		t.Fatalf("SetPriority under Stride = %d, want 0", err)
	}
	if err := tp.SetPriority(tid, 0); err != -defs.EINVAL {
		t.Fatalf("SetPriority(0) = %d, want -EINVAL", err)
	}
}
