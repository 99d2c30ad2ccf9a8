// Package ustr provides the path/string type used by the root filesystem
// and by open(2)'s path argument once it has been copied out of user memory.
package ustr

// Ustr is an immutable path used by the kernel. It is a byte slice rather
// than a string so it can be built directly out of a NUL-terminated user
// buffer without an extra allocation-and-validate pass.
type Ustr []uint8

// Eq compares two Ustr values for equality.
func (us Ustr) Eq(s Ustr) bool {
	if len(us) != len(s) {
		return false
	}
	for i, v := range us {
		if v != s[i] {
			return false
		}
	}
	return true
}

// MkUstrSlice converts a NUL-terminated byte slice to a Ustr, truncating at
// the first NUL.
func MkUstrSlice(buf []uint8) Ustr {
	for i := 0; i < len(buf); i++ {
		if buf[i] == 0 {
			return buf[:i]
		}
	}
	return buf
}

// IsAbsolute reports whether the path begins with '/'.
func (us Ustr) IsAbsolute() bool {
	return len(us) > 0 && us[0] == '/'
}

// String converts the Ustr to a Go string.
func (us Ustr) String() string {
	return string(us)
}
