// Package elf is the ELF loader spec.md's §1 calls out as an external
// collaborator: it turns a file blob into an initial MemorySet and an
// entry address, the two things NewUserThread needs to build a runnable
// trap frame. Grounded on biscuit's kernel/chentry.go, the teacher's only
// use of debug/elf/encoding/binary, generalized here from "patch one
// field of an entry on disk" to "load every PT_LOAD segment into a fresh
// address space."
package elf

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/rv39core/kernel/mem"
	"github.com/rv39core/kernel/vm"
)

// UserStackPages is the number of pages reserved for a new user thread's
// initial stack.
const UserStackPages = 4

// UserStackTop is the virtual address one past the top of every user
// thread's stack, fixed so the loader and NewUserThread agree on it
// without threading it through a return value.
const UserStackTop = 0x0000003f00000000

// Image is the result of loading one ELF binary: an address space ready
// to run and the virtual address its first instruction lives at.
type Image struct {
	Vm      *vm.Vm_t
	Entry   uint64
	StackSp uint64
}

// Load parses data as a 64-bit little-endian RISC-V executable, maps
// each PT_LOAD segment into a fresh MemorySet with the segment's own
// permissions, adds a user stack area below UserStackTop, and returns
// the resulting Image. A malformed or unsupported binary is a
// user-recoverable exec(2) failure, never a panic, so every error path
// returns a plain error rather than panicking.
func Load(data []byte) (*Image, error) {
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an elf: %w", err)
	}
	if err := check(ef); err != nil {
		return nil, err
	}

	ms := vm.NewMemorySet()
	as := vm.NewVm(ms)
	for _, prog := range ef.Progs {
		if prog.Type != elf.PT_LOAD || prog.Memsz == 0 {
			continue
		}
		if err := loadSegment(as, prog); err != nil {
			return nil, err
		}
	}

	sp, err := pushStack(ms)
	if err != nil {
		return nil, err
	}

	return &Image{Vm: as, Entry: ef.Entry, StackSp: sp}, nil
}

// check validates the ELF header fields a loader for this kernel cares
// about, mirroring chentry.go's chkELF but for RISC-V rather than
// x86-64.
func check(ef *elf.File) error {
	if ef.Class != elf.ELFCLASS64 {
		return fmt.Errorf("not a 64-bit elf")
	}
	if ef.Data != elf.ELFDATA2LSB {
		return fmt.Errorf("not little-endian")
	}
	if ef.Type != elf.ET_EXEC {
		return fmt.Errorf("not an executable elf")
	}
	if ef.Machine != elf.EM_RISCV {
		return fmt.Errorf("not a risc-v elf")
	}
	return nil
}

// loadSegment maps prog's page-aligned virtual range as a ByFrameHandler
// area with the segment's own permissions, then copies its file bytes in
// (the tail of Memsz beyond Filesz, i.e. .bss, stays zeroed — Physmem's
// free-list frames come back zeroed already).
func loadSegment(as *vm.Vm_t, prog *elf.Prog) error {
	start := alignDown(uintptr(prog.Vaddr))
	end := alignUp(uintptr(prog.Vaddr) + uintptr(prog.Memsz))
	attr := vm.MemoryAttr{
		User:     true,
		Readonly: prog.Flags&elf.PF_W == 0,
		Execute:  prog.Flags&elf.PF_X != 0,
	}
	area := &vm.MemoryArea{Start: start, End: end, Attr: attr, Handler: vm.NewByFrameHandler()}
	as.Ms.Push(area)

	buf := make([]byte, prog.Filesz)
	if _, err := prog.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("reading segment: %w", err)
	}
	// copy through the page table rather than K2user, which refuses
	// read-only areas such as a text segment.
	for off := 0; off < len(buf); {
		va := uintptr(prog.Vaddr) + uintptr(off)
		pa, ok := as.Ms.PageTable.Lookup(va)
		if !ok {
			return fmt.Errorf("mapping segment contents: %#x not mapped", va)
		}
		pg := mem.Physmem.Dmap(pa)
		off += copy(pg[va&vm.PGOFFSET:], buf[off:])
	}
	return nil
}

// pushStack maps the fixed-size user stack area just below UserStackTop
// and returns the initial stack pointer (the top of the area, RV64's
// calling convention keeps sp 16-byte aligned, which a full-page top
// already is).
func pushStack(ms *vm.MemorySet) (uint64, error) {
	top := uintptr(UserStackTop)
	bottom := top - uintptr(UserStackPages*vm.PGSIZE)
	area := &vm.MemoryArea{
		Start:   bottom,
		End:     top,
		Attr:    vm.MemoryAttr{User: true},
		Handler: vm.NewByFrameHandler(),
	}
	ms.Push(area)
	return uint64(top), nil
}

func alignDown(va uintptr) uintptr { return va &^ vm.PGOFFSET }
func alignUp(va uintptr) uintptr   { return (va + vm.PGOFFSET) &^ vm.PGOFFSET }
