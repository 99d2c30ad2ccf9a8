// Package circbuf is a single-page circular byte buffer, used by the
// console as fd 0's stdin queue (readers sleep-and-retry on empty; pipes
// use their own growable byte slice instead). Adapted from biscuit's circbuf
// package: the original lazily allocates its backing page and supports a
// zero-copy Rawread/Rawwrite pair for network-stack callers (TCP
// retransmit buffers). Neither applies to a pipe between two kernel
// threads on one hart, so this version allocates its page eagerly at
// construction and drops Rawread/Rawwrite along with the refcounted
// Cb_init_phys variant they required.
package circbuf

import (
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
	"github.com/rv39core/kernel/mem"
)

// Circbuf_t is a fixed-capacity ring buffer backed by one physical page.
// It is not safe for concurrent use by itself; the console supplies the
// mutex and condition variable around it.
type Circbuf_t struct {
	buf   []uint8
	bufsz int
	head  int
	tail  int
	p_pg  mem.Pa_t
}

// Init allocates the backing page and readies the buffer for use. sz must
// not exceed the page size.
func (cb *Circbuf_t) Init(sz int, phys mem.Page_i) defs.Err_t {
	if sz <= 0 || sz > mem.PGSIZE {
		panic("bad circbuf size")
	}
	pg, p_pg, ok := phys.Refpg_new()
	if !ok {
		return -defs.ENOMEM
	}
	cb.buf = pg[:sz]
	cb.bufsz = sz
	cb.p_pg = p_pg
	cb.head, cb.tail = 0, 0
	return 0
}

// Full reports whether the buffer has no room left.
func (cb *Circbuf_t) Full() bool { return cb.head-cb.tail == cb.bufsz }

// Empty reports whether the buffer holds no data.
func (cb *Circbuf_t) Empty() bool { return cb.head == cb.tail }

// Left returns the remaining write capacity in bytes.
func (cb *Circbuf_t) Left() int { return cb.bufsz - (cb.head - cb.tail) }

// Used returns the number of unread bytes currently buffered.
func (cb *Circbuf_t) Used() int { return cb.head - cb.tail }

// Copyin reads from src into the buffer, stopping early if the buffer
// fills. It returns 0, nil if the buffer was already full.
func (cb *Circbuf_t) Copyin(src fdops.Userio_i) (int, defs.Err_t) {
	if cb.Full() {
		return 0, 0
	}
	hi := cb.head % cb.bufsz
	ti := cb.tail % cb.bufsz
	c := 0
	if ti <= hi {
		dst := cb.buf[hi:]
		wrote, err := src.Uioread(dst)
		if err != 0 {
			return 0, err
		}
		if wrote != len(dst) {
			cb.head += wrote
			return wrote, 0
		}
		c += wrote
		hi = (cb.head + wrote) % cb.bufsz
	}
	if hi > ti {
		panic("circbuf invariant broken")
	}
	dst := cb.buf[hi:ti]
	wrote, err := src.Uioread(dst)
	c += wrote
	if err != 0 {
		return c, err
	}
	cb.head += c
	return c, 0
}

// Copyout writes the entire buffered contents to dst, stopping early if
// the buffer empties. It returns 0, nil if the buffer was already empty.
func (cb *Circbuf_t) Copyout(dst fdops.Userio_i) (int, defs.Err_t) {
	if cb.Empty() {
		return 0, 0
	}
	hi := cb.head % cb.bufsz
	ti := cb.tail % cb.bufsz
	c := 0
	if hi <= ti {
		src := cb.buf[ti:]
		wrote, err := dst.Uiowrite(src)
		if err != 0 {
			return 0, err
		}
		if wrote != len(src) {
			cb.tail += wrote
			return wrote, 0
		}
		c += wrote
		ti = (cb.tail + wrote) % cb.bufsz
	}
	if ti > hi {
		panic("circbuf invariant broken")
	}
	src := cb.buf[ti:hi]
	wrote, err := dst.Uiowrite(src)
	if err != 0 {
		return c, err
	}
	c += wrote
	cb.tail += c
	return c, 0
}
