// Package fs is the bundled, read-only, in-memory root filesystem
// spec.md describes: every file a fixed byte blob baked into the kernel
// binary, looked up by flat path name (no directory traversal — a name
// like "rust/user_shell" is one hashtable key, not two path segments to
// walk). Grounded on biscuit's mkfs.go/ufs.go asset-bundling idiom (a
// host-side step populates the filesystem image from a directory tree)
// adapted to Go's native equivalent, go:embed, since this kernel has no
// disk to boot a separate image from and spec.md excludes filesystem
// persistence entirely; directory-entry lookup reuses the hashtable
// package already built for exactly this purpose.
package fs

import (
	"embed"
	"io/fs"

	"github.com/rv39core/kernel/defs"
	"github.com/rv39core/kernel/fdops"
	"github.com/rv39core/kernel/hashtable"
	"github.com/rv39core/kernel/ustr"
)

//go:embed rootfs
var bundled embed.FS

const bundledRoot = "rootfs"

// Inode_t is one bundled file: an immutable byte blob plus nothing else
// (no mtime, no uid, no link count — spec.md's Non-goals exclude
// permissions and this kernel's filesystem is read-only and
// non-persistent, so none of that bookkeeping has anywhere to go).
type Inode_t struct {
	data []byte
}

// Size returns the inode's content length.
func (i *Inode_t) Size() int { return len(i.data) }

// ReadAsVec returns the inode's entire content, the operation exec(2)
// uses to pull a user binary's bytes out of the filesystem before
// handing them to the ELF loader (spec.md: "read_as_vec").
func (i *Inode_t) ReadAsVec() []byte { return i.data }

// ReadAt copies up to len into dst starting at off, returning the number
// of bytes copied (spec.md's "read_at").
func (i *Inode_t) ReadAt(off int, dst fdops.Userio_i) (int, defs.Err_t) {
	if off < 0 || off > len(i.data) {
		return 0, -defs.EINVAL
	}
	return dst.Uiowrite(i.data[off:])
}

// Root_t is the mounted root filesystem: a flat name -> Inode_t table.
type Root_t struct {
	entries *hashtable.Hashtable_t
}

// mounted is the kernel-wide root filesystem instance, populated by Mount
// during boot.
var mounted *Root_t

// Mount walks the embedded rootfs tree and builds the flat name index.
// It panics on any embed.FS error: the bundled tree is baked into the
// binary at build time, so a failure here means the binary itself is
// broken, not a runtime condition a caller could recover from.
func Mount() *Root_t {
	r := &Root_t{entries: hashtable.MkHash(64)}
	err := fs.WalkDir(bundled, bundledRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := bundled.ReadFile(p)
		if err != nil {
			return err
		}
		rel := p[len(bundledRoot)+1:]
		r.entries.Set(ustr.Ustr(rel), &Inode_t{data: data})
		return nil
	})
	if err != nil {
		panic("corrupt bundled root filesystem: " + err.Error())
	}
	mounted = r
	return r
}

// Lookup resolves path to its Inode_t, or -ENOENT if no bundled file has
// that exact name.
func (r *Root_t) Lookup(p ustr.Ustr) (*Inode_t, defs.Err_t) {
	v, ok := r.entries.Get(p)
	if !ok {
		return nil, -defs.ENOENT
	}
	return v.(*Inode_t), 0
}

// Root returns the kernel-wide mounted filesystem (Mount must have been
// called first, during boot).
func Root() *Root_t { return mounted }
