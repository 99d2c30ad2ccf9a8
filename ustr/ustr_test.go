package ustr

import "testing"

func TestEq(t *testing.T) {
	if !Ustr("abc").Eq(Ustr("abc")) {
		t.Fatal("Eq should match identical byte slices")
	}
	if Ustr("abc").Eq(Ustr("abd")) {
		t.Fatal("Eq should not match differing byte slices")
	}
	if Ustr("ab").Eq(Ustr("abc")) {
		t.Fatal("Eq should not match slices of differing length")
	}
}

func TestMkUstrSliceTruncatesAtNUL(t *testing.T) {
	got := MkUstrSlice([]byte("abc\x00trailing"))
	if got.String() != "abc" {
		t.Fatalf("MkUstrSlice = %q, want %q", got.String(), "abc")
	}
}

func TestMkUstrSliceNoNUL(t *testing.T) {
	got := MkUstrSlice([]byte("abc"))
	if got.String() != "abc" {
		t.Fatalf("MkUstrSlice with no NUL = %q, want %q", got.String(), "abc")
	}
}

func TestIsAbsolute(t *testing.T) {
	if !Ustr("/bin/sh").IsAbsolute() {
		t.Fatal("IsAbsolute should be true for a leading slash")
	}
	if Ustr("bin/sh").IsAbsolute() {
		t.Fatal("IsAbsolute should be false without a leading slash")
	}
	if Ustr("").IsAbsolute() {
		t.Fatal("IsAbsolute should be false for an empty path")
	}
}
