package hashtable

import (
	"testing"

	"github.com/rv39core/kernel/ustr"
)

func TestSetThenGet(t *testing.T) {
	ht := MkHash(8)
	v, inserted := ht.Set(ustr.Ustr("a"), 1)
	if !inserted || v != 1 {
		t.Fatalf("Set = (%v, %v), want (1, true)", v, inserted)
	}
	got, ok := ht.Get(ustr.Ustr("a"))
	if !ok || got != 1 {
		t.Fatalf("Get = (%v, %v), want (1, true)", got, ok)
	}
}

func TestSetNoOverwrite(t *testing.T) {
	ht := MkHash(8)
	ht.Set(ustr.Ustr("a"), 1)
	v, inserted := ht.Set(ustr.Ustr("a"), 2)
	if inserted {
		t.Fatal("Set on an existing key should report inserted=false")
	}
	if v != 1 {
		t.Fatalf("Set on existing key returned %v, want the original stored value 1", v)
	}
	got, _ := ht.Get(ustr.Ustr("a"))
	if got != 1 {
		t.Fatalf("Get after duplicate Set = %v, want 1 (no overwrite)", got)
	}
}

func TestGetMissing(t *testing.T) {
	ht := MkHash(8)
	if _, ok := ht.Get(ustr.Ustr("missing")); ok {
		t.Fatal("Get on a missing key should report false")
	}
}

func TestDelRemovesKey(t *testing.T) {
	ht := MkHash(8)
	ht.Set(ustr.Ustr("a"), 1)
	ht.Del(ustr.Ustr("a"))
	if _, ok := ht.Get(ustr.Ustr("a")); ok {
		t.Fatal("Get should fail after Del")
	}
}

func TestDelMissingPanics(t *testing.T) {
	ht := MkHash(8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic deleting a key that was never inserted")
		}
	}()
	ht.Del(ustr.Ustr("nope"))
}

func TestSizeCountsAllBuckets(t *testing.T) {
	ht := MkHash(4)
	names := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	for i, n := range names {
		ht.Set(ustr.Ustr(n), i)
	}
	if got := ht.Size(); got != len(names) {
		t.Fatalf("Size() = %d, want %d", got, len(names))
	}
}

func TestStringKeys(t *testing.T) {
	ht := MkHash(8)
	ht.Set("plain-string-key", 42)
	got, ok := ht.Get("plain-string-key")
	if !ok || got != 42 {
		t.Fatalf("Get(string key) = (%v, %v), want (42, true)", got, ok)
	}
}
