// Vm_t is the per-address-space handle syscall handlers use to move
// bytes to and from user memory, and Userbuf_t is the fdops.Userio_i
// adapter read/write/pipe code copies through. Grounded on biscuit's
// vm/as.go (Userdmap8_inner, Userstr, K2user/User2k, Mkuserbuf) and
// vm/userbuf.go, stripped of the COW fault path, mmap'ed files, and
// multi-CPU TLB shootdown spec.md's Non-goals exclude: every page an
// address space maps is mapped eagerly by MemorySet.Push, so there is no
// lazy fault to resolve here, only a lookup.
package vm

import (
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/mem"
	"github.com/rv39core/kernel/ustr"
)

// Vm_t is a process's address space, as seen by the syscall layer: a
// MemorySet plus the byte-copying operations built on top of it.
type Vm_t struct {
	Ms *MemorySet
}

// NewVm wraps a freshly built MemorySet.
func NewVm(ms *MemorySet) *Vm_t {
	return &Vm_t{Ms: ms}
}

// userdmap8 returns the kernel-visible slice backing the page containing
// va, starting at va's in-page offset, and an error if va isn't mapped or
// (when write is true) isn't writable.
func (vm *Vm_t) userdmap8(va uintptr, write bool) ([]uint8, defs.Err_t) {
	area, ok := vm.Ms.Lookup(va)
	if !ok {
		return nil, -defs.EFAULT
	}
	if write && area.Attr.Readonly {
		return nil, -defs.EFAULT
	}
	pa, ok := vm.Ms.PageTable.Lookup(va)
	if !ok {
		return nil, -defs.EFAULT
	}
	voff := va & PGOFFSET
	pg := mem.Physmem.Dmap(pa)
	return pg[voff:], 0
}

// User2k copies len(dst) bytes from user address uva into dst.
func (vm *Vm_t) User2k(dst []uint8, uva uintptr) defs.Err_t {
	cnt := 0
	for len(dst) != 0 {
		src, err := vm.userdmap8(uva+uintptr(cnt), false)
		if err != 0 {
			return err
		}
		did := copy(dst, src)
		dst = dst[did:]
		cnt += did
	}
	return 0
}

// K2user copies src into user memory starting at uva.
func (vm *Vm_t) K2user(src []uint8, uva uintptr) defs.Err_t {
	cnt := 0
	for cnt != len(src) {
		dst, err := vm.userdmap8(uva+uintptr(cnt), true)
		if err != 0 {
			return err
		}
		n := copy(dst, src[cnt:])
		cnt += n
	}
	return 0
}

// Userstr copies a NUL-terminated string out of user memory at uva, up to
// lenmax bytes. It returns -ENAMETOOLONG if no NUL appears within lenmax
// bytes (spec.md §7: a path that doesn't fit a fixed buffer is a
// user-recoverable error, not a panic).
func (vm *Vm_t) Userstr(uva uintptr, lenmax int) (ustr.Ustr, defs.Err_t) {
	var s ustr.Ustr
	i := uintptr(0)
	for {
		str, err := vm.userdmap8(uva+i, false)
		if err != 0 {
			return nil, err
		}
		for j, c := range str {
			if c == 0 {
				return append(s, str[:j]...), 0
			}
			if len(s)+j+1 >= lenmax {
				return nil, -defs.ENAMETOOLONG
			}
		}
		s = append(s, str...)
		i += uintptr(len(str))
		if len(s) >= lenmax {
			return nil, -defs.ENAMETOOLONG
		}
	}
}

// Userbuf_t adapts a (uva, length) user-memory range to fdops.Userio_i,
// tracking how much of the range remains untouched as successive
// Uioread/Uiowrite calls consume it. Grounded on biscuit's
// vm/userbuf.go's Userbuf_t.
type Userbuf_t struct {
	vm     *Vm_t
	userva uintptr
	len    int
	off    int
}

// Mkuserbuf builds a Userbuf_t over [userva, userva+len) in vm's address
// space.
func (vm *Vm_t) Mkuserbuf(userva uintptr, length int) *Userbuf_t {
	return &Userbuf_t{vm: vm, userva: userva, len: length}
}

// Uioread copies from user memory into dst, advancing past whatever
// portion of the buffer this call consumes.
func (ub *Userbuf_t) Uioread(dst []uint8) (int, defs.Err_t) {
	want := len(dst)
	if rem := ub.len - ub.off; want > rem {
		want = rem
	}
	if want == 0 {
		return 0, 0
	}
	if err := ub.vm.User2k(dst[:want], ub.userva+uintptr(ub.off)); err != 0 {
		return 0, err
	}
	ub.off += want
	return want, 0
}

// Uiowrite copies src into user memory, advancing past whatever portion
// of the buffer this call fills.
func (ub *Userbuf_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	want := len(src)
	if rem := ub.len - ub.off; want > rem {
		want = rem
	}
	if want == 0 {
		return 0, 0
	}
	if err := ub.vm.K2user(src[:want], ub.userva+uintptr(ub.off)); err != 0 {
		return 0, err
	}
	ub.off += want
	return want, 0
}

// Remain reports how many bytes of the range are untouched.
func (ub *Userbuf_t) Remain() int { return ub.len - ub.off }

// Totalsz reports the full size of the range.
func (ub *Userbuf_t) Totalsz() int { return ub.len }

// KernelUio_t adapts a plain byte slice to fdops.Userio_i, used when the
// other side of a copy is kernel memory rather than a user address range
// (e.g. the console moving bytes in and out of its stdin ring buffer).
type KernelUio_t struct {
	Buf []uint8
	off int
}

func (ku *KernelUio_t) Uioread(dst []uint8) (int, defs.Err_t) {
	n := copy(dst, ku.Buf[ku.off:])
	ku.off += n
	return n, 0
}

func (ku *KernelUio_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	n := copy(ku.Buf[ku.off:], src)
	ku.off += n
	return n, 0
}

func (ku *KernelUio_t) Remain() int  { return len(ku.Buf) - ku.off }
func (ku *KernelUio_t) Totalsz() int { return len(ku.Buf) }
