// Package syscalls is the dispatcher and per-call handlers spec.md §4.6
// describes: the trap vector builds a trap frame and hands it here, the
// dispatcher reads the syscall id out of a7 and the first three
// arguments out of a0-a2, and each handler stages its return value into
// tf.a0. Grounded directly, call-for-call, on original_source's
// os/src/syscall.rs, the same way sched mirrors scheduler.rs; panics for
// programmer errors (bad fd, unknown id) and negative defs.Err_t values
// for user-recoverable ones follow spec.md §7's taxonomy exactly as the
// Rust source's asserts versus Result values do.
package syscalls

import (
	"fmt"

	"github.com/rv39core/kernel/console"
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/elf"
	"github.com/rv39core/kernel/fd"
	"github.com/rv39core/kernel/fs"
	"github.com/rv39core/kernel/kstat"
	"github.com/rv39core/kernel/limits"
	"github.com/rv39core/kernel/proc"
	"github.com/rv39core/kernel/sbi"
	"github.com/rv39core/kernel/trap"
)

// ecallSize is the width of the ecall instruction the trap vector's
// sepc must be advanced past (spec.md §4.6).
const ecallSize = 4

// Dispatch runs the syscall named by tf's a7 register against the
// current thread, writes its return value into tf.a0, and advances
// tf.sepc — except for exit, which never returns here because the
// calling thread's context has already switched away.
func Dispatch(tf *trap.TrapFrame) {
	kstat.Global.Syscalls.Inc()
	id := tf.X[trap.A7]
	kstat.Record(int64(proc.Get().Now()), "syscall", int64(id))
	a0, a1, a2 := tf.X[trap.A0], tf.X[trap.A1], tf.X[trap.A2]

	var ret int64
	switch id {
	case defs.SYS_OPEN:
		ret = int64(sysOpen(a0, int32(a1)))
	case defs.SYS_CLOSE:
		ret = int64(sysClose(int32(a0)))
	case defs.SYS_PIPE:
		ret = int64(sysPipe(a0))
	case defs.SYS_READ:
		ret = int64(sysRead(int32(a0), a1, a2))
	case defs.SYS_WRITE:
		ret = int64(sysWrite(int32(a0), a1, a2))
	case defs.SYS_EXIT:
		sysExit(int(a0))
		return
	case defs.SYS_SETPRIORITY:
		ret = int64(sysSetpriority(int(a0)))
	case defs.SYS_TIMES:
		ret = sysTimes()
	case defs.SYS_FORK:
		ret = int64(sysFork(tf))
	case defs.SYS_EXEC:
		ret = int64(sysExec(a0))
	default:
		panic(fmt.Sprintf("unknown syscall id %d", id))
	}
	tf.X[trap.A0] = uint64(ret)
	tf.Sepc += ecallSize
}

func current() *proc.Thread { return proc.Get().CurrentThread() }

// sysOpen implements open(path_cstr, flags): spec.md §4.6.
func sysOpen(uva uint64, flags int32) int {
	cur := current()
	path, err := cur.Vm.Userstr(uintptr(uva), limits.MaxPathLen)
	if err != 0 {
		return int(err)
	}
	fops, err := fs.OpenRead(fs.Root(), path)
	if err != 0 {
		return int(err)
	}
	nf := &fd.Fd_t{
		Fops:     fops,
		Readable: flags&1 == 0,
		Writable: flags&3 != 0,
	}
	fdn, err := cur.Ofile.Install(nf)
	if err != 0 {
		fops.Close()
		return int(err)
	}
	return fdn
}

// sysClose implements close(fd): asserts the fd is open, per spec.md
// §4.6 and §7 (a close of an unopened fd is a programmer error).
func sysClose(fdn int32) int {
	cur := current()
	f := cur.Ofile.Remove(int(fdn))
	if f == nil {
		panic("close: fd not open")
	}
	f.Fops.Close()
	return 0
}

// sysPipe implements pipe(out): allocates a connected read/write fd pair
// and writes both descriptor numbers into the caller's out[2] array.
func sysPipe(outUva uint64) int {
	cur := current()
	rfops, wfops := fd.PipePair(proc.Get())

	rfdn, err := cur.Ofile.Install(&fd.Fd_t{Fops: rfops, Readable: true})
	if err != 0 {
		return int(err)
	}
	wfdn, err := cur.Ofile.Install(&fd.Fd_t{Fops: wfops, Writable: true})
	if err != 0 {
		cur.Ofile.Remove(rfdn)
		return int(err)
	}

	var tmp [8]uint8
	putLE32(tmp[0:4], uint32(rfdn))
	putLE32(tmp[4:8], uint32(wfdn))
	if errc := cur.Vm.K2user(tmp[:], uintptr(outUva)); errc != 0 {
		return int(errc)
	}
	return 0
}

func putLE32(b []uint8, v uint32) {
	b[0] = uint8(v)
	b[1] = uint8(v >> 8)
	b[2] = uint8(v >> 16)
	b[3] = uint8(v >> 24)
}

// sysRead implements read(fd, buf, len): fd 0 is the console, handled
// directly; every other fd dispatches through its Fdops_i, which is
// where spec.md's inode-vs-pipe granularity difference (a full buffer
// versus always one byte) actually lives.
func sysRead(fdn int32, uva, ulen uint64) int {
	cur := current()
	if fdn == 0 {
		c, err := console.ReadByte()
		if err != 0 {
			return int(err)
		}
		if errc := cur.Vm.K2user([]uint8{c}, uintptr(uva)); errc != 0 {
			return int(errc)
		}
		return 1
	}
	f := cur.Ofile.Get(int(fdn))
	if f == nil {
		panic("read: fd not open")
	}
	if !f.Readable {
		panic("read: fd not readable")
	}
	dst := cur.Vm.Mkuserbuf(uintptr(uva), int(ulen))
	n, err := f.Fops.Read(dst)
	if err != 0 {
		return int(err)
	}
	return n
}

// sysWrite implements write(fd, buf, len): fd 1 is the console and
// requires len == 1 (spec.md §4.6), every other fd dispatches through
// its Fdops_i.
func sysWrite(fdn int32, uva, ulen uint64) int {
	cur := current()
	if fdn == 1 {
		if ulen != 1 {
			panic("write: console write must be exactly one byte")
		}
		var b [1]uint8
		if err := cur.Vm.User2k(b[:], uintptr(uva)); err != 0 {
			return int(err)
		}
		sbi.ConsolePutchar(b[0])
		return 1
	}
	f := cur.Ofile.Get(int(fdn))
	if f == nil {
		panic("write: fd not open")
	}
	if !f.Writable {
		panic("write: fd not writable")
	}
	src := cur.Vm.Mkuserbuf(uintptr(uva), int(ulen))
	n, err := f.Fops.Write(src)
	if err != 0 {
		return int(err)
	}
	return n
}

// sysExit implements exit(code): §4.5. Never returns to Dispatch.
func sysExit(code int) {
	proc.Get().Exit(code)
}

// sysSetpriority implements setpriority(p): meaningful only under the
// stride policy (spec.md §4.4/§4.6); -EINVAL under round-robin or for
// p<=0.
func sysSetpriority(p int) int {
	cur := current()
	return int(proc.Get().SetPriority(cur.Tid, p))
}

// sysTimes implements times(): cycle_counter / 200_000 (spec.md §4.6).
func sysTimes() int64 {
	return int64(sbi.ReadTime() / 200000)
}

// sysFork implements fork(): spec.md §4.3. tf is the caller's own trap
// frame, already the one proc.Fork copies into the child.
func sysFork(tf *trap.TrapFrame) int {
	cur := current()
	tid, err := proc.Fork(cur)
	if err != 0 {
		return int(err)
	}
	kstat.Global.Forks.Inc()
	return int(tid)
}

// sysExec implements exec(path_cstr): spec.md §4.6. Loads path as a new
// user thread whose host is the caller, then parks the caller until that
// thread exits.
func sysExec(uva uint64) int {
	cur := current()
	path, err := cur.Vm.Userstr(uintptr(uva), limits.MaxPathLen)
	if err != 0 {
		return int(err)
	}
	inode, err := fs.Root().Lookup(path)
	if err != 0 {
		return int(err)
	}
	img, lerr := elf.Load(inode.ReadAsVec())
	if lerr != nil {
		return int(-defs.ENOENT)
	}

	child := proc.NewUserThread(img.Vm, img.Entry, img.StackSp)
	hostTid := cur.Tid
	child.SetHostWake(func() { proc.Get().Wakeup(hostTid) })
	if _, ok := proc.Get().AddThread(child); !ok {
		return int(-defs.ENOMEM)
	}

	kstat.Global.Execs.Inc()
	proc.Get().Park()
	return 0
}
