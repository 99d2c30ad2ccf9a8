// Package fd is the open-file-descriptor layer: Fd_t itself, the
// fixed-size per-thread descriptor table, and the in-memory Pipe type
// pipe(2) creates. Grounded on biscuit's fd package (Fd_t wraps an
// fdops.Fdops_i rather than spec.md's {type, inode, pipe} union — dynamic
// dispatch through the interface already distinguishes "this fd reads an
// inode" from "this fd reads a pipe end" without a discriminant field)
// and on limits.NOFILE for the table's fixed capacity.
package fd

import (
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
	"github.com/rv39core/kernel/limits"
)

// Fd_t is one open file descriptor: dispatch for read/write/close plus
// the permission bits open(2) was called with.
type Fd_t struct {
	Fops     fdops.Fdops_i
	Readable bool
	Writable bool
}

// Copy duplicates fd by reopening its underlying fops, used when a
// descriptor table is copied across fork.
func Copy(f *Fd_t) (*Fd_t, defs.Err_t) {
	nf := &Fd_t{}
	*nf = *f
	if err := nf.Fops.Reopen(); err != 0 {
		return nil, err
	}
	return nf, 0
}

// Table_t is a thread's fixed-size open-file-descriptor table (spec.md's
// per-thread "ofile" table).
type Table_t struct {
	slots [limits.NOFILE]*Fd_t
}

// Get returns the Fd_t at fdn, or nil if the slot is empty or out of
// range.
func (t *Table_t) Get(fdn int) *Fd_t {
	if fdn < 0 || fdn >= limits.NOFILE {
		return nil
	}
	return t.slots[fdn]
}

// Install places f into the lowest-numbered free slot and returns its
// descriptor number, or -EMFILE if the table is full (spec.md §7: a full
// descriptor table is a user-recoverable condition, not a panic).
func (t *Table_t) Install(f *Fd_t) (int, defs.Err_t) {
	for i := range t.slots {
		if t.slots[i] == nil {
			t.slots[i] = f
			return i, 0
		}
	}
	return 0, -defs.EMFILE
}

// InstallAt places f at exactly fdn, evicting whatever was there without
// closing it (the caller is responsible for closing a displaced fd), for
// a caller that needs a specific slot number rather than the lowest free
// one.
func (t *Table_t) InstallAt(fdn int, f *Fd_t) defs.Err_t {
	if fdn < 0 || fdn >= limits.NOFILE {
		return -defs.EINVAL
	}
	t.slots[fdn] = f
	return 0
}

// Remove clears fdn and returns whatever Fd_t was installed there, or nil
// if the slot was already empty.
func (t *Table_t) Remove(fdn int) *Fd_t {
	if fdn < 0 || fdn >= limits.NOFILE {
		return nil
	}
	f := t.slots[fdn]
	t.slots[fdn] = nil
	return f
}

// Clone deep-copies every installed descriptor by reopening its fops, for
// fork's "child inherits a copy of the parent's descriptor table"
// semantics.
func (t *Table_t) Clone() (*Table_t, defs.Err_t) {
	nt := &Table_t{}
	for i, f := range t.slots {
		if f == nil {
			continue
		}
		nf, err := Copy(f)
		if err != 0 {
			return nil, err
		}
		nt.slots[i] = nf
	}
	return nt, 0
}
