package fs

import (
	"testing"

	"github.com/rv39core/kernel/defs"
)

func TestMountFindsBundledEntry(t *testing.T) {
	root := Mount()
	inode, err := root.Lookup([]byte("rust/user_shell"))
	if err != 0 {
		t.Fatalf("Lookup(rust/user_shell) = %d, want 0", err)
	}
	if inode.Size() == 0 {
		t.Fatal("bundled rust/user_shell should be non-empty")
	}
}

func TestLookupMissingReturnsENOENT(t *testing.T) {
	root := Mount()
	if _, err := root.Lookup([]byte("does/not/exist")); err != -defs.ENOENT {
		t.Fatalf("Lookup on a missing path = %d, want -ENOENT", err)
	}
}

func TestInodeReadAtAdvancesWithOffset(t *testing.T) {
	root := Mount()
	inode, err := root.Lookup([]byte("rust/user_shell"))
	if err != 0 {
		t.Fatalf("Lookup: %d", err)
	}
	full := inode.ReadAsVec()
	if len(full) < 4 {
		t.Skip("bundled file too small to test a partial ReadAt")
	}
	dst := &kernelUioStub{buf: make([]byte, 2)}
	n, err := inode.ReadAt(1, dst)
	if err != 0 {
		t.Fatalf("ReadAt: %d", err)
	}
	if n != 2 || string(dst.buf[:n]) != string(full[1:3]) {
		t.Fatalf("ReadAt(1, len 2) = %q, want %q", dst.buf[:n], full[1:3])
	}
}

func TestInodeReadAtOutOfRange(t *testing.T) {
	root := Mount()
	inode, _ := root.Lookup([]byte("rust/user_shell"))
	dst := &kernelUioStub{buf: make([]byte, 2)}
	if _, err := inode.ReadAt(-1, dst); err != -defs.EINVAL {
		t.Fatalf("ReadAt(-1) = %d, want -EINVAL", err)
	}
}

func TestOpenReadWriteIsEROFS(t *testing.T) {
	root := Mount()
	fops, err := OpenRead(root, []byte("rust/user_shell"))
	if err != 0 {
		t.Fatalf("OpenRead: %d", err)
	}
	if _, err := fops.Write(&kernelUioStub{buf: []byte("x")}); err != -defs.EROFS {
		t.Fatalf("Write on a read-only fs fd = %d, want -EROFS", err)
	}
}

func TestOpenReadSequentialReads(t *testing.T) {
	root := Mount()
	fops, err := OpenRead(root, []byte("rust/user_shell"))
	if err != 0 {
		t.Fatalf("OpenRead: %d", err)
	}
	full := mustInode(t, root).ReadAsVec()
	if len(full) < 4 {
		t.Skip("bundled file too small for a sequential-read test")
	}
	first := &kernelUioStub{buf: make([]byte, 2)}
	n1, _ := fops.Read(first)
	second := &kernelUioStub{buf: make([]byte, 2)}
	n2, _ := fops.Read(second)
	got := append(append([]byte{}, first.buf[:n1]...), second.buf[:n2]...)
	if string(got) != string(full[:n1+n2]) {
		t.Fatalf("sequential Read calls = %q, want %q (offset should advance)", got, full[:n1+n2])
	}
}

func mustInode(t *testing.T, root *Root_t) *Inode_t {
	t.Helper()
	inode, err := root.Lookup([]byte("rust/user_shell"))
	if err != 0 {
		t.Fatalf("Lookup: %d", err)
	}
	return inode
}

// kernelUioStub is a minimal fdops.Userio_i over a plain byte slice for
// tests that don't need a real user address space.
type kernelUioStub struct {
	buf []byte
	off int
}

func (k *kernelUioStub) Uioread(dst []uint8) (int, defs.Err_t) {
	n := copy(dst, k.buf[k.off:])
	k.off += n
	return n, 0
}
func (k *kernelUioStub) Uiowrite(src []uint8) (int, defs.Err_t) {
	n := copy(k.buf[k.off:], src)
	k.off += n
	return n, 0
}
func (k *kernelUioStub) Remain() int  { return len(k.buf) - k.off }
func (k *kernelUioStub) Totalsz() int { return len(k.buf) }
