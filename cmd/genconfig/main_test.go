package main

import (
	"strings"
	"testing"

	"github.com/rv39core/kernel/config"
)

func TestRenderProducesCompilableConstants(t *testing.T) {
	m := &config.Manifest{
		NPROC:             100,
		NOFILE:            32,
		RRQuantumTicks:    5,
		StrideDefaultPass: 65536,
		Timebase:          100000,
		SchedulerPolicy:   "rr",
		RootfsEntries:     []string{"rust/user_shell"},
	}
	src := render(m)
	if !strings.HasPrefix(src, header) {
		t.Fatal("render output should start with the generated-code header")
	}
	if !strings.Contains(src, "const NPROC = 100\n") {
		t.Fatalf("render output missing NPROC constant: %q", src)
	}
	if !strings.Contains(src, `const SchedulerPolicy = "rr"`) {
		t.Fatalf("render output missing quoted SchedulerPolicy: %q", src)
	}
	if !strings.Contains(src, `"rust/user_shell"`) {
		t.Fatalf("render output missing rootfs entry: %q", src)
	}
}

func TestRenderSortsRootfsEntries(t *testing.T) {
	m := &config.Manifest{RootfsEntries: []string{"z", "a", "m"}}
	src := render(m)
	ia := strings.Index(src, `"a"`)
	im := strings.Index(src, `"m"`)
	iz := strings.Index(src, `"z"`)
	if !(ia < im && im < iz) {
		t.Fatalf("render should emit RootfsEntries sorted: got order a=%d m=%d z=%d", ia, im, iz)
	}
}
