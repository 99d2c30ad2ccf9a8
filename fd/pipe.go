// Pipe is pipe(2)'s shared-mutable byte queue: a write end and a read end
// over one unbounded byte buffer. Writers never block (spec.md: "writers
// append unconditionally"); readers sleep-and-retry when the buffer is
// empty, waking whenever a writer adds bytes or every writer has closed
// its end. Grounded on circbuf's head/tail bookkeeping discipline, but
// using a growable slice instead of circbuf's fixed single-page backing:
// a fixed page would force the write side to block or drop bytes on a
// full buffer, which spec.md's "writers append unconditionally" rules
// out (circbuf's fixed page remains the right fit for fd 0's console
// input ring, which has no such guarantee).
package fd

import (
	"sync"

	"github.com/rv39core/kernel/condvar"
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
)

// pipe_t is the shared state between a pipe's two ends.
type pipe_t struct {
	sync.Mutex
	buf       []uint8
	nreaders  int
	nwriters  int
	dataready condvar.Condvar_t
}

// PipePair constructs the two Fdops_i ends pipe(2) installs into the
// caller's descriptor table: fds[0] is the read end, fds[1] the write
// end.
func PipePair(sched condvar.Scheduler_i) (fdops.Fdops_i, fdops.Fdops_i) {
	p := &pipe_t{nreaders: 1, nwriters: 1}
	p.dataready.Init(sched)
	return &pipeReader{p: p}, &pipeWriter{p: p}
}

type pipeReader struct{ p *pipe_t }
type pipeWriter struct{ p *pipe_t }

func (r *pipeReader) Reopen() defs.Err_t {
	r.p.Lock()
	r.p.nreaders++
	r.p.Unlock()
	return 0
}

func (r *pipeReader) Close() defs.Err_t {
	r.p.Lock()
	r.p.nreaders--
	r.p.Unlock()
	return 0
}

func (r *pipeReader) Write(src fdops.Userio_i) (int, defs.Err_t) {
	panic("write on a pipe read end")
}

// Read blocks (sleep-and-retry, spec.md §4.6's pipe contract) until at
// least one byte is available or every writer has closed, then transfers
// exactly one byte regardless of how much room dst has — a pipe read
// always returns at most one byte per call, unlike an inode read, which
// returns as much as it can.
func (r *pipeReader) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	p := r.p
	p.Lock()
	for len(p.buf) == 0 && p.nwriters > 0 {
		p.Unlock()
		p.dataready.Wait()
		p.Lock()
	}
	if len(p.buf) == 0 {
		p.Unlock()
		return 0, 0
	}
	one := p.buf[:1]
	n, err := dst.Uiowrite(one)
	p.buf = p.buf[n:]
	p.Unlock()
	return n, err
}

func (w *pipeWriter) Reopen() defs.Err_t {
	w.p.Lock()
	w.p.nwriters++
	w.p.Unlock()
	return 0
}

func (w *pipeWriter) Close() defs.Err_t {
	w.p.Lock()
	w.p.nwriters--
	wake := w.p.nwriters == 0
	w.p.Unlock()
	if wake {
		w.p.dataready.Notify()
	}
	return 0
}

func (w *pipeWriter) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	panic("read on a pipe write end")
}

// Write appends exactly one byte of src to the buffer unconditionally
// (spec.md: no write-side blocking) and wakes any sleeping reader,
// grounded directly on the original's sys_write pipe arm
// (`lock.push_back(*base); return 1`), which pushes a single byte per
// call regardless of how much the caller asked to write.
func (w *pipeWriter) Write(src fdops.Userio_i) (int, defs.Err_t) {
	p := w.p
	var tmp [1]uint8
	n, err := src.Uioread(tmp[:])
	if err != 0 {
		return 0, err
	}
	if n == 0 {
		return 0, 0
	}
	p.Lock()
	p.buf = append(p.buf, tmp[0])
	p.Unlock()
	p.dataready.Notify()
	return n, 0
}
