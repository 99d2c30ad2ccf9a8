package fs

import (
	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
)

// inodeFd_t is the fdops.Fdops_i open(2) installs for a regular file: a
// read cursor over an Inode_t's bytes. The backing filesystem is
// read-only (spec.md), so Write always fails.
type inodeFd_t struct {
	inode  *Inode_t
	offset int
}

// OpenRead builds a read-only descriptor over path, the only kind of
// open(2) this filesystem supports.
func OpenRead(root *Root_t, path []byte) (fdops.Fdops_i, defs.Err_t) {
	inode, err := root.Lookup(path)
	if err != 0 {
		return nil, err
	}
	return &inodeFd_t{inode: inode}, 0
}

func (f *inodeFd_t) Close() defs.Err_t  { return 0 }
func (f *inodeFd_t) Reopen() defs.Err_t { return 0 }

func (f *inodeFd_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	n, err := f.inode.ReadAt(f.offset, dst)
	if err != 0 {
		return 0, err
	}
	f.offset += n
	return n, 0
}

// Write always returns -EROFS: this filesystem is mounted read-only
// (spec.md's root filesystem has no write path at all).
func (f *inodeFd_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	return 0, -defs.EROFS
}
