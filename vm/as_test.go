package vm

import "testing"

func newTestVm(t *testing.T, start uintptr, npages int) *Vm_t {
	t.Helper()
	ms := NewMemorySet()
	ms.Push(&MemoryArea{
		Start:   start,
		End:     start + uintptr(npages*PGSIZE),
		Attr:    MemoryAttr{User: true},
		Handler: NewByFrameHandler(),
	})
	return NewVm(ms)
}

func TestK2userUser2kRoundTrip(t *testing.T) {
	v := newTestVm(t, 0x100000, 2)
	want := []byte("hello, kernel")
	if err := v.K2user(want, 0x100000); err != 0 {
		t.Fatalf("K2user: errno %d", err)
	}
	got := make([]byte, len(want))
	if err := v.User2k(got, 0x100000); err != 0 {
		t.Fatalf("User2k: errno %d", err)
	}
	if string(got) != string(want) {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}

func TestK2userCrossesPageBoundary(t *testing.T) {
	v := newTestVm(t, 0x200000, 3)
	payload := make([]byte, PGSIZE+32)
	for i := range payload {
		payload[i] = byte(i)
	}
	start := uintptr(0x200000 + PGSIZE - 16) // spans the second page and into the third
	if err := v.K2user(payload, start); err != 0 {
		t.Fatalf("K2user: errno %d", err)
	}
	got := make([]byte, len(payload))
	if err := v.User2k(got, start); err != 0 {
		t.Fatalf("User2k: errno %d", err)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], payload[i])
		}
	}
}

func TestUser2kUnmappedFaults(t *testing.T) {
	v := newTestVm(t, 0x300000, 1)
	dst := make([]byte, 8)
	if err := v.User2k(dst, 0xdead0000); err == 0 {
		t.Fatal("User2k against an unmapped address should fault")
	}
}

func TestK2userReadonlyFaults(t *testing.T) {
	ms := NewMemorySet()
	ms.Push(&MemoryArea{
		Start:   0x400000,
		End:     0x400000 + uintptr(PGSIZE),
		Attr:    MemoryAttr{User: true, Readonly: true},
		Handler: NewByFrameHandler(),
	})
	v := NewVm(ms)
	if err := v.K2user([]byte("x"), 0x400000); err == 0 {
		t.Fatal("K2user against a read-only area should fault")
	}
}

func TestUserstrStopsAtNUL(t *testing.T) {
	v := newTestVm(t, 0x500000, 1)
	v.K2user([]byte("abc\x00trailing garbage"), 0x500000)
	s, err := v.Userstr(0x500000, 64)
	if err != 0 {
		t.Fatalf("Userstr: errno %d", err)
	}
	if string(s) != "abc" {
		t.Fatalf("Userstr = %q, want %q", s, "abc")
	}
}

func TestUserstrTooLong(t *testing.T) {
	v := newTestVm(t, 0x600000, 1)
	long := make([]byte, 32)
	for i := range long {
		long[i] = 'a'
	}
	v.K2user(long, 0x600000)
	if _, err := v.Userstr(0x600000, 8); err == 0 {
		t.Fatal("Userstr should fail with ENAMETOOLONG when no NUL appears within lenmax")
	}
}

func TestUserbufPartialReadsAdvanceOffset(t *testing.T) {
	v := newTestVm(t, 0x700000, 1)
	v.K2user([]byte("0123456789"), 0x700000)
	ub := v.Mkuserbuf(0x700000, 10)

	first := make([]byte, 4)
	n, err := ub.Uioread(first)
	if err != 0 || n != 4 || string(first) != "0123" {
		t.Fatalf("first Uioread = (%q, %d, %d), want (0123, 4, 0)", first, n, err)
	}
	if ub.Remain() != 6 {
		t.Fatalf("Remain() = %d, want 6", ub.Remain())
	}
	rest := make([]byte, 10)
	n, err = ub.Uioread(rest)
	if err != 0 || n != 6 || string(rest[:6]) != "456789" {
		t.Fatalf("second Uioread = (%q, %d, %d), want (456789, 6, 0)", rest[:n], n, err)
	}
	if ub.Remain() != 0 {
		t.Fatalf("Remain() after full drain = %d, want 0", ub.Remain())
	}
}

func TestKernelUioReadWrite(t *testing.T) {
	ku := &KernelUio_t{Buf: []byte("xyz")}
	dst := make([]byte, 2)
	n, err := ku.Uioread(dst)
	if err != 0 || n != 2 || string(dst) != "xy" {
		t.Fatalf("Uioread = (%q, %d, %d), want (xy, 2, 0)", dst, n, err)
	}
	if ku.Remain() != 1 {
		t.Fatalf("Remain() = %d, want 1", ku.Remain())
	}
}
