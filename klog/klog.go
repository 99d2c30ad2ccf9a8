// Package klog is the kernel's console logger: a thin fmt.Fprintf wrapper
// over the SBI console writer. Grounded on the teacher's own logging
// texture — chentry.go reaches for bare fmt.Printf rather than a
// structured logging library, and the original rust_main boot sequence
// (init.rs) is a flat list of staged init calls with no per-stage log
// statement of its own, so each stage getting one banner line here is an
// addition in the teacher's spirit rather than a literal translation.
package klog

import (
	"fmt"

	"github.com/rv39core/kernel/sbi"
)

// console adapts sbi.Console to io.Writer for fmt.Fprintf; kept
// unexported since nothing outside this package should write to the
// kernel console directly.
var console = sbi.Console{}

// Printf writes a formatted line to the console, without a trailing
// newline unless format supplies one.
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(console, format, args...)
}

// Banner prints a stage-boundary line during boot, e.g.
// klog.Banner("process") prints "++++ setup process! ++++\n".
func Banner(stage string) {
	fmt.Fprintf(console, "++++ setup %s! ++++\n", stage)
}

// Fatal prints msg and halts the hart by panicking; used for boot-time
// conditions that have no user to report a negative errno to (spec.md
// §7's panic side of the taxonomy, at a point before any thread exists).
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(console, "FATAL: "+format+"\n", args...)
	panic(fmt.Sprintf(format, args...))
}
