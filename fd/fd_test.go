package fd

import (
	"testing"

	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
)

type nopFops struct{ reopens int }

func (f *nopFops) Close() defs.Err_t  { return 0 }
func (f *nopFops) Read(fdops.Userio_i) (int, defs.Err_t)  { return 0, 0 }
func (f *nopFops) Write(fdops.Userio_i) (int, defs.Err_t) { return 0, 0 }
func (f *nopFops) Reopen() defs.Err_t { f.reopens++; return 0 }

func TestInstallLowestFreeSlot(t *testing.T) {
	var tbl Table_t
	a, err := tbl.Install(&Fd_t{Fops: &nopFops{}})
	if err != 0 || a != 0 {
		t.Fatalf("Install #1 = (%d, %d), want (0, 0)", a, err)
	}
	b, err := tbl.Install(&Fd_t{Fops: &nopFops{}})
	if err != 0 || b != 1 {
		t.Fatalf("Install #2 = (%d, %d), want (1, 0)", b, err)
	}
	tbl.Remove(0)
	c, err := tbl.Install(&Fd_t{Fops: &nopFops{}})
	if err != 0 || c != 0 {
		t.Fatalf("Install after Remove(0) = (%d, %d), want (0, 0)", c, err)
	}
}

func TestInstallFullTableReturnsEMFILE(t *testing.T) {
	var tbl Table_t
	for i := 0; i < 64; i++ {
		if _, err := tbl.Install(&Fd_t{Fops: &nopFops{}}); err == -defs.EMFILE {
			if _, err2 := tbl.Install(&Fd_t{Fops: &nopFops{}}); err2 != -defs.EMFILE {
				t.Fatalf("Install on full table = %d, want -EMFILE", err2)
			}
			return
		}
	}
	t.Fatal("table never reported full")
}

func TestRemoveClearsSlot(t *testing.T) {
	var tbl Table_t
	n, _ := tbl.Install(&Fd_t{Fops: &nopFops{}})
	if got := tbl.Remove(n); got == nil {
		t.Fatal("Remove returned nil for an installed slot")
	}
	if got := tbl.Get(n); got != nil {
		t.Fatal("Get after Remove should return nil")
	}
	if got := tbl.Remove(n); got != nil {
		t.Fatal("Remove on an already-empty slot should return nil")
	}
}

func TestInstallAtOutOfRange(t *testing.T) {
	var tbl Table_t
	if err := tbl.InstallAt(-1, &Fd_t{Fops: &nopFops{}}); err != -defs.EINVAL {
		t.Fatalf("InstallAt(-1) = %d, want -EINVAL", err)
	}
}

func TestCloneReopensEveryDescriptor(t *testing.T) {
	var tbl Table_t
	underlying := &nopFops{}
	tbl.Install(&Fd_t{Fops: underlying, Readable: true})

	clone, err := tbl.Clone()
	if err != 0 {
		t.Fatalf("Clone: %d", err)
	}
	if underlying.reopens != 1 {
		t.Fatalf("underlying.reopens = %d, want 1", underlying.reopens)
	}
	if clone.Get(0) == tbl.Get(0) {
		t.Fatal("Clone should produce distinct Fd_t values, not share the same pointer")
	}
	if !clone.Get(0).Readable {
		t.Fatal("Clone should preserve the Readable flag")
	}
}
